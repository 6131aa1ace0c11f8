package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/roomfit/internal/model"
)

// BundleVersion is written into every bundle.
const BundleVersion = "1.0.0"

// Bundle is a self-contained record of one solve: the scenario, the settings
// it ran with and the result, enough to reproduce or re-render the run.
type Bundle struct {
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	RunID     string         `json:"run_id"`
	Settings  model.Settings `json:"settings"`
	Scenario  model.Scenario `json:"scenario"`
	Result    model.Result   `json:"result"`
}

// NewBundle stamps a bundle with the current time. An empty runID gets a
// fresh one.
func NewBundle(runID string, settings model.Settings, scenario model.Scenario, result model.Result) Bundle {
	if runID == "" {
		runID = model.NewRunID()
	}
	return Bundle{
		Version:   BundleVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:     runID,
		Settings:  settings,
		Scenario:  scenario,
		Result:    result,
	}
}

// ExportBundle writes a bundle as JSON, creating parent directories.
func ExportBundle(path string, bundle Bundle) error {
	if bundle.Result.Placements == nil {
		bundle.Result.Placements = []model.Placement{}
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle file: %w", err)
	}
	return nil
}

// ImportBundle reads a bundle and binds its result placements back to the
// scenario catalog.
func ImportBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read bundle file: %w", err)
	}
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return Bundle{}, fmt.Errorf("failed to parse bundle file: %w", err)
	}
	if bundle.Version == "" {
		return Bundle{}, fmt.Errorf("invalid bundle file: missing version field")
	}
	bound, err := bundle.Result.Bind(bundle.Scenario.Items)
	if err != nil {
		return Bundle{}, fmt.Errorf("invalid bundle file: %w", err)
	}
	bundle.Result = bound
	bundle.Settings = bundle.Settings.Normalize()
	return bundle, nil
}
