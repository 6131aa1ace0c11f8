package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/roomfit/internal/model"
)

// Render formats accepted by Render.
const (
	FormatPDF     = "pdf"
	FormatLabels  = "labels"
	FormatGeoJSON = "geojson"
	FormatExcel   = "xlsx"
	FormatHTML    = "html"
)

// Formats lists every render format in a stable order.
var Formats = []string{FormatPDF, FormatLabels, FormatGeoJSON, FormatExcel, FormatHTML}

var formatSuffix = map[string]string{
	FormatPDF:     ".pdf",
	FormatLabels:  ".labels.pdf",
	FormatGeoJSON: ".geojson",
	FormatExcel:   ".xlsx",
	FormatHTML:    ".html",
}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if _, ok := formatSuffix[f]; !ok {
		return "", fmt.Errorf("unknown render format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
	return f, nil
}

// OutputPath returns the render file for a scenario in dir:
// kitchen.json rendered as labels becomes dir/kitchen.labels.pdf.
func OutputPath(scenarioPath, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	if dir == "" {
		dir = filepath.Dir(scenarioPath)
	}
	return filepath.Join(dir, base+formatSuffix[format])
}

// Render writes the result in the given format to path. runID is stamped on
// install labels; empty gets a fresh one.
func Render(format, path string, scenario model.Scenario, result model.Result, settings model.Settings, runID string) error {
	switch format {
	case FormatPDF:
		return ExportPDF(path, scenario, result, settings)
	case FormatLabels:
		return ExportLabels(path, scenario, result, runID)
	case FormatExcel:
		return ExportExcel(path, scenario, result, settings)
	case FormatGeoJSON, FormatHTML:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if format == FormatGeoJSON {
			err = WriteGeoJSON(f, scenario, result, settings)
		} else {
			err = WriteUsageChart(f, scenario, result)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	default:
		return fmt.Errorf("unknown render format %q", format)
	}
}
