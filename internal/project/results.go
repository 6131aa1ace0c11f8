package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/roomfit/internal/model"
)

// ResultSuffix marks solver output next to its scenario file.
const ResultSuffix = ".result.json"

// ResultPath returns the result file for a scenario: kitchen.json becomes
// kitchen.result.json, placed in outDir when it is not empty.
func ResultPath(scenarioPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	dir := filepath.Dir(scenarioPath)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base+ResultSuffix)
}

// IsResultFile reports whether path is solver output rather than a scenario.
func IsResultFile(path string) bool {
	return strings.HasSuffix(path, ResultSuffix)
}

// MarshalResult encodes a result as indented JSON.
func MarshalResult(result model.Result) ([]byte, error) {
	if result.Placements == nil {
		result.Placements = []model.Placement{}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SaveResult writes a result file, creating parent directories.
func SaveResult(path string, result model.Result) error {
	data, err := MarshalResult(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating result directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// LoadResult reads a result file. Placements carry item names only; bind
// them to the scenario catalog with Result.Bind before using dimensions.
func LoadResult(path string) (model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Result{}, fmt.Errorf("reading result: %w", err)
	}
	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Result{}, fmt.Errorf("parsing result %s: %w", filepath.Base(path), err)
	}
	if result.Placements == nil {
		result.Placements = []model.Placement{}
	}
	return result, nil
}
