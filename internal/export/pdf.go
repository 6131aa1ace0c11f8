// Package export renders placement results: PDF floor plans and install
// labels, GeoJSON, Excel reports and HTML charts.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/model"
)

// ErrNoRoom is returned when a scenario has no usable boundary to draw.
var ErrNoRoom = errors.New("scenario has no room boundary")

// rgb is a fill or stroke color.
type rgb struct {
	R, G, B int
}

// categoryColors gives each appliance category a fixed color so plans read
// the same across scenarios.
var categoryColors = map[model.Category]rgb{
	model.CategoryFridge:    {R: 33, G: 150, B: 243},  // blue
	model.CategoryIceMaker:  {R: 0, G: 188, B: 212},   // cyan
	model.CategoryShelf:     {R: 76, G: 175, B: 80},   // green
	model.CategoryOverShelf: {R: 255, G: 152, B: 0},   // orange
	model.CategoryUnknown:   {R: 158, G: 158, B: 158}, // grey
}

var zoneColors = map[model.ZoneKind]rgb{
	model.ZoneDoor:   {R: 244, G: 67, B: 54},
	model.ZoneFridge: {R: 156, G: 39, B: 176},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// planTransform maps room coordinates (y up) to page coordinates (y down).
type planTransform struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
}

func newPlanTransform(b orb.Bound, x, y, w, h float64) planTransform {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = math.Min(w/dx, h/dy)
	case dx > 0:
		scale = w / dx
	case dy > 0:
		scale = h / dy
	}
	return planTransform{
		minX:  b.Min[0],
		maxY:  b.Max[1],
		scale: scale,
		offX:  x + (w-dx*scale)/2,
		offY:  y,
	}
}

func (t planTransform) point(p orb.Point) fpdf.PointType {
	return fpdf.PointType{
		X: t.offX + (p[0]-t.minX)*t.scale,
		Y: t.offY + (t.maxY-p[1])*t.scale,
	}
}

func (t planTransform) ring(r orb.Ring) []fpdf.PointType {
	pts := make([]fpdf.PointType, 0, len(r))
	for _, p := range r {
		pts = append(pts, t.point(p))
	}
	return pts
}

// bindResult restores item dimensions on placements decoded from JSON.
func bindResult(scenario model.Scenario, result model.Result) (model.Result, error) {
	if len(scenario.Room.Boundary) < 3 {
		return model.Result{}, ErrNoRoom
	}
	bound, err := result.Bind(scenario.Items)
	if err != nil {
		return model.Result{}, fmt.Errorf("binding result to catalog: %w", err)
	}
	return bound, nil
}

// ExportPDF writes a floor plan of the result to path: one plan page with
// the room, door and fridge clearance zones, and placed items, followed by
// a summary page.
func ExportPDF(path string, scenario model.Scenario, result model.Result, settings model.Settings) error {
	pdf, err := buildPlanPDF(scenario, result, settings)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF renders the same document as ExportPDF to w.
func WritePDF(w io.Writer, scenario model.Scenario, result model.Result, settings model.Settings) error {
	pdf, err := buildPlanPDF(scenario, result, settings)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildPlanPDF(scenario model.Scenario, result model.Result, settings model.Settings) (*fpdf.Fpdf, error) {
	result, err := bindResult(scenario, result)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(planTitle(scenario), false)
	pdf.SetCreator("RoomFit", false)

	pdf.AddPage()
	renderPlanPage(pdf, scenario, result, settings)

	pdf.AddPage()
	renderSummaryPage(pdf, scenario, result, settings)

	if pdf.Err() {
		return nil, fmt.Errorf("rendering PDF: %w", pdf.Error())
	}
	return pdf, nil
}

func planTitle(scenario model.Scenario) string {
	if scenario.Name == "" {
		return "Floor plan"
	}
	return "Floor plan: " + scenario.Name
}

// renderPlanPage draws the room and everything placed in it.
func renderPlanPage(pdf *fpdf.Fpdf, scenario model.Scenario, result model.Result, settings model.Settings) {
	room := scenario.Room
	ring := room.Ring()
	bounds := ring.Bound()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%.0f x %.0f)", planTitle(scenario), bounds.Max[0]-bounds.Min[0], bounds.Max[1]-bounds.Min[1])
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	status := fmt.Sprintf("Placed: %d of %d | Placed area: %.0f | Room area: %.0f | Coverage: %.1f%%",
		len(result.Placements), len(scenario.Items), result.PlacedArea(), room.Area(), coverage(room, result))
	if !result.Feasible {
		pdf.SetTextColor(200, 0, 0)
		status = "INFEASIBLE: " + result.Message + " | " + status
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, status, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - drawAreaTop - marginBottom - legendHeight
	tf := newPlanTransform(bounds, marginLeft, drawAreaTop, drawW, drawH)

	// Room floor
	pdf.SetFillColor(245, 240, 230)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.6)
	pdf.Polygon(tf.ring(ring), "FD")

	for _, zone := range engine.Zones(room, result.Placements, settings) {
		drawZone(pdf, tf, zone)
	}

	if door, ok := room.DoorSegment(); ok {
		a, b := tf.point(door.A), tf.point(door.B)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(1.2)
		pdf.Line(a.X, a.Y, b.X, b.Y)
	}

	for _, p := range result.Placements {
		drawPlacement(pdf, tf, p)
	}

	canvasH := (bounds.Max[1] - bounds.Min[1]) * tf.scale
	canvasW := (bounds.Max[0] - bounds.Min[0]) * tf.scale
	drawDimensionAnnotations(pdf, bounds, tf.offX, tf.offY, canvasW, canvasH)
	drawLegend(pdf, result, tf.offY+canvasH+6)
}

// drawZone renders a forbidden zone as a translucent hatched polygon.
func drawZone(pdf *fpdf.Fpdf, tf planTransform, zone model.ForbiddenZone) {
	col := zoneColors[zone.Kind]
	pts := tf.ring(zone.Polygon)

	pdf.SetAlpha(0.25, "Normal")
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.Polygon(pts, "F")
	pdf.SetAlpha(1, "Normal")

	pdf.SetDrawColor(col.R, col.G, col.B)
	pdf.SetLineWidth(0.3)
	pdf.SetDashPattern([]float64{1.5, 1}, 0)
	pdf.Polygon(pts, "D")
	pdf.SetDashPattern([]float64{}, 0)

	label := "DOOR"
	if zone.Kind == model.ZoneFridge {
		label = "CLEARANCE"
	}
	c := tf.point(zoneCenter(zone.Polygon))
	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetTextColor(col.R, col.G, col.B)
	w := pdf.GetStringWidth(label)
	pdf.SetXY(c.X-w/2, c.Y-2)
	pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func zoneCenter(r orb.Ring) orb.Point {
	return r.Bound().Center()
}

// drawPlacement draws one placed item with its name and size.
func drawPlacement(pdf *fpdf.Fpdf, tf planTransform, p model.Placement) {
	col := categoryColors[p.Item.Category]
	pts := tf.ring(p.Rect())

	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Polygon(pts, "FD")

	x, y := p.Extent()
	pw, ph := x*tf.scale, y*tf.scale
	if pw <= 12 || ph <= 6 {
		return
	}

	c := tf.point(p.Center)
	pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
	pdf.SetTextColor(0, 0, 0)

	name := p.Item.Name
	if w := pdf.GetStringWidth(name); w < pw-2 {
		pdf.SetXY(c.X-w/2, c.Y-4)
		pdf.CellFormat(w, 4, name, "", 0, "C", false, 0, "")
	}
	dims := fmt.Sprintf("%.0fx%.0f", p.Item.Length, p.Item.Width)
	if p.Rotation == model.Rotation90 {
		dims += " R"
	}
	if w := pdf.GetStringWidth(dims); ph > 12 && w < pw-2 {
		pdf.SetXY(c.X-w/2, c.Y)
		pdf.CellFormat(w, 4, dims, "", 0, "C", false, 0, "")
	}
}

// drawDimensionAnnotations labels the room width below the plan and its
// depth to the left of it.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, b orb.Bound, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f", b.Max[0]-b.Min[0])
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f", b.Max[1]-b.Min[1])
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend lists the placed items below the plan, wrapping as needed.
func drawLegend(pdf *fpdf.Fpdf, result model.Result, startY float64) {
	if len(result.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, p := range result.Placements {
		col := categoryColors[p.Item.Category]
		label := fmt.Sprintf("%s (%.0fx%.0f)", p.Item.Name, p.Item.Length, p.Item.Width)
		if p.Rotation == model.Rotation90 {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage lists every placement and the settings used.
func renderSummaryPage(pdf *fpdf.Fpdf, scenario model.Scenario, result model.Result, settings model.Settings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Placement Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	feasible := "yes"
	if !result.Feasible {
		feasible = "no"
	}
	summaryItems := []struct {
		label string
		value string
	}{
		{"Feasible", feasible},
		{"Items Placed", fmt.Sprintf("%d of %d", len(result.Placements), len(scenario.Items))},
		{"Placed Area", fmt.Sprintf("%.0f", result.PlacedArea())},
		{"Room Coverage", fmt.Sprintf("%.1f%%", coverage(scenario.Room, result))},
	}
	if result.FailedItem != "" {
		summaryItems = append(summaryItems, struct {
			label string
			value string
		}{"First Failure", result.FailedItem})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	y += 5

	colWidths := []float64{15, 55, 35, 45, 60, 30}
	headers := []string{"#", "Item", "Category", "Size", "Center", "Rotation"}
	drawTableHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6
		pdf.SetFont("Helvetica", "", 9)
	}
	drawTableHeader()

	for i, p := range result.Placements {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
			drawTableHeader()
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			p.Item.Name,
			p.Item.Category.String(),
			fmt.Sprintf("%.0f x %.0f", p.Item.Length, p.Item.Width),
			fmt.Sprintf("(%.1f, %.1f)", p.Center[0], p.Center[1]),
			fmt.Sprintf("%d", p.Rotation),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos := marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if y > pageHeight-marginBottom-45 {
		pdf.AddPage()
		y = marginTop
	}
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Wall Sample Step", fmt.Sprintf("%.0f", settings.WallSampleStep)},
		{"Grid Step", fmt.Sprintf("%.0f", settings.GridStep)},
		{"Touch Tolerance", fmt.Sprintf("%.0f", settings.TouchTolerance)},
		{"Outward Door Clearance", fmt.Sprintf("%.0f", settings.OutwardDoorClearance)},
		{"Fridge Clearance", fmt.Sprintf("%.2f x width", settings.FridgeClearance)},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by RoomFit - appliance placement planner", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns a font size that fits a rectangle of w x h mm.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// coverage returns the placed area as a percentage of the room area.
func coverage(room model.Room, result model.Result) float64 {
	area := room.Area()
	if area == 0 {
		return 0
	}
	return result.PlacedArea() / area * 100
}
