package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.Settings != DefaultSettings() {
		t.Errorf("settings mismatch: config=%+v defaults=%+v", cfg.Settings, DefaultSettings())
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected logging defaults %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ListenAddr)
	}
	if cfg.RecentScenarios == nil {
		t.Error("RecentScenarios should not be nil")
	}
}

func TestAddRecent(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecent("a.json", 3)
	cfg.AddRecent("b.json", 3)
	cfg.AddRecent("c.json", 3)
	cfg.AddRecent("a.json", 3)
	cfg.AddRecent("d.json", 3)

	want := []string{"d.json", "a.json", "c.json"}
	if len(cfg.RecentScenarios) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.RecentScenarios)
	}
	for i := range want {
		if cfg.RecentScenarios[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], cfg.RecentScenarios[i])
		}
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{GridStep: 50, TieBreak: "random", Workers: -2}.Normalize()

	if s.GridStep != 50 {
		t.Errorf("explicit grid step should be kept, got %f", s.GridStep)
	}
	if s.WallSampleStep != 100 || s.WallSamplesPerWall != 20 || s.MinWallSampleStep != 1 {
		t.Errorf("wall sampling defaults not applied: %+v", s)
	}
	if s.TieBreak != TieBreakFirst {
		t.Errorf("unknown tie-break should fall back to first, got %s", s.TieBreak)
	}
	if s.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", s.Workers)
	}
	if s.TouchTolerance != 10 || s.WallWeight != 10000 {
		t.Errorf("scoring defaults not applied: %+v", s)
	}
}

func TestSettingsNormalizeKeepsZeroClearance(t *testing.T) {
	s := DefaultSettings()
	s.OutwardDoorClearance = 0
	s.FridgeClearance = 0

	n := s.Normalize()
	if n.OutwardDoorClearance != 0 || n.FridgeClearance != 0 {
		t.Errorf("zero clearances are valid and must be kept: %+v", n)
	}
}
