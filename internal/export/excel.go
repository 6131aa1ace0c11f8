package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/model"
)

// Sheet names of the placement report.
const (
	SheetPlacements = "Placements"
	SheetSummary    = "Summary"
	SheetZones      = "Zones"
)

var placementHeaders = []interface{}{"#", "Item", "Category", "Length", "Width", "Center X", "Center Y", "Rotation", "Extent X", "Extent Y"}

// ExportExcel writes the placement report workbook to path.
func ExportExcel(path string, scenario model.Scenario, result model.Result, settings model.Settings) error {
	f, err := buildWorkbook(scenario, result, settings)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// WriteExcel writes the placement report workbook to w.
func WriteExcel(w io.Writer, scenario model.Scenario, result model.Result, settings model.Settings) error {
	f, err := buildWorkbook(scenario, result, settings)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func buildWorkbook(scenario model.Scenario, result model.Result, settings model.Settings) (*excelize.File, error) {
	result, err := bindResult(scenario, result)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetPlacements); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetZones); err != nil {
		f.Close()
		return nil, err
	}

	rows := [][]interface{}{placementHeaders}
	for i, p := range result.Placements {
		x, y := p.Extent()
		rows = append(rows, []interface{}{
			i + 1, p.Item.Name, p.Item.Category.String(), p.Item.Length, p.Item.Width,
			p.Center[0], p.Center[1], int(p.Rotation), x, y,
		})
	}
	if err := writeRows(f, SheetPlacements, rows); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeRows(f, SheetSummary, summaryRows(scenario, result, settings)); err != nil {
		f.Close()
		return nil, err
	}

	zoneRows := [][]interface{}{{"Kind", "Source", "Min X", "Min Y", "Max X", "Max Y"}}
	for _, z := range engine.Zones(scenario.Room, result.Placements, settings) {
		b := z.Polygon.Bound()
		zoneRows = append(zoneRows, []interface{}{string(z.Kind), z.Source, b.Min[0], b.Min[1], b.Max[0], b.Max[1]})
	}
	if err := writeRows(f, SheetZones, zoneRows); err != nil {
		f.Close()
		return nil, err
	}

	if err := styleHeader(f, SheetPlacements, len(placementHeaders)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func summaryRows(scenario model.Scenario, result model.Result, settings model.Settings) [][]interface{} {
	rows := [][]interface{}{
		{"Scenario", scenario.Name},
		{"Feasible", result.Feasible},
		{"Items", len(scenario.Items)},
		{"Placed", len(result.Placements)},
		{"Room Area", scenario.Room.Area()},
		{"Placed Area", result.PlacedArea()},
		{"Coverage %", coverage(scenario.Room, result)},
		{"Door Opens Inward", scenario.Room.OpenInward},
		{"Fridge Clearance", settings.FridgeClearance},
		{"Grid Step", settings.GridStep},
	}
	if !result.Feasible {
		rows = append(rows, []interface{}{"Message", result.Message}, []interface{}{"Failed Item", result.FailedItem})
	}
	return rows
}

// writeRows writes rows starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
