package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/roomfit/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := model.DefaultAppConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	cfg.Settings.GridStep = 100
	cfg.Settings.TieBreak = model.TieBreakLexicographic
	cfg.RenderFormats = []string{"pdf", "geojson"}
	cfg.RecentScenarios = []string{"/tmp/a.json", "/tmp/b.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.LogLevel != "debug" || loaded.LogFormat != "json" {
		t.Errorf("logging not restored: %s/%s", loaded.LogLevel, loaded.LogFormat)
	}
	if loaded.Settings != cfg.Settings {
		t.Errorf("settings not restored:\n got %+v\nwant %+v", loaded.Settings, cfg.Settings)
	}
	if len(loaded.RenderFormats) != 2 || len(loaded.RecentScenarios) != 2 {
		t.Errorf("lists not restored: %+v", loaded)
	}
}

func TestSaveAppConfigWritesYAMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"grid_step: 200", "fridge_clearance: 1", "log_level: info", "recent_scenarios: []"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %q in:\n%s", key, data)
		}
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "nonexistent", "config.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Settings != model.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", cfg.Settings)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ListenAddr)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log_level: warn\nsettings:\n  grid_step: 50\n  workers: 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("unexpected logging %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Settings.GridStep != 50 {
		t.Errorf("expected grid step 50, got %f", cfg.Settings.GridStep)
	}
	if cfg.Settings.WallWeight != 10000 || cfg.Settings.FridgeClearance != 1.0 {
		t.Errorf("unset settings should keep defaults: %+v", cfg.Settings)
	}
	if cfg.Settings.Workers != 1 {
		t.Errorf("workers should be normalized to 1, got %d", cfg.Settings.Workers)
	}
	if cfg.RecentScenarios == nil {
		t.Error("RecentScenarios should not be nil")
	}
}

func TestLoadAppConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("settings: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if filepath.Base(p) != "config.yaml" || filepath.Base(filepath.Dir(p)) != ".roomfit" {
		t.Errorf("unexpected default path %s", p)
	}
}
