package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/roomfit/internal/model"
)

// ErrNothingPlaced is returned by exporters that need at least one placement.
var ErrNothingPlaced = errors.New("no items placed")

// LabelInfo holds the data encoded into each install label's QR code.
type LabelInfo struct {
	RunID    string  `json:"run"`
	Scenario string  `json:"scenario,omitempty"`
	Item     string  `json:"item"`
	Category string  `json:"category"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation int     `json:"rotation"`
	Sequence int     `json:"seq"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos lists one label per placement in commit order.
func CollectLabelInfos(scenario model.Scenario, result model.Result, runID string) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Placements))
	for i, p := range result.Placements {
		labels = append(labels, LabelInfo{
			RunID:    runID,
			Scenario: scenario.Name,
			Item:     p.Item.Name,
			Category: p.Item.Category.String(),
			Length:   p.Item.Length,
			Width:    p.Item.Width,
			X:        p.Center[0],
			Y:        p.Center[1],
			Rotation: int(p.Rotation),
			Sequence: i + 1,
		})
	}
	return labels
}

// ExportLabels writes a PDF sheet of QR-coded install labels, one per placed
// item, so installers can match each appliance to its position on the plan.
// An empty runID gets a fresh one.
func ExportLabels(path string, scenario model.Scenario, result model.Result, runID string) error {
	result, err := bindResult(scenario, result)
	if err != nil {
		return err
	}
	if len(result.Placements) == 0 {
		return ErrNothingPlaced
	}
	if runID == "" {
		runID = model.NewRunID()
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetSubject("Install labels run "+runID, false)

	for i, label := range CollectLabelInfos(scenario, result, runID) {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Item, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.RunID, info.Sequence)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	name := info.Item
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.0f x %.0f %s", info.Length, info.Width, info.Category), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("#%d @ (%.0f, %.0f)", info.Sequence, info.X, info.Y), "", 1, "L", false, 0, "")

	if info.Rotation == int(model.Rotation90) {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetXY(textX, y+labelHeight-labelPadding-3)
	pdf.SetFont("Helvetica", "", 5)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(textW, 3, "run "+info.RunID, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
