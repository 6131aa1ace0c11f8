package model

// AppConfig holds application-wide preferences and the default engine
// settings used by the CLI and server.
type AppConfig struct {
	Settings Settings `json:"settings" yaml:"settings"`

	// Logging: level is one of debug, info, warn, error; format is text or json.
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// OutputDir is where batch results are written; empty means next to
	// the input. RenderFormats are run by batch for feasible results.
	OutputDir       string   `json:"output_dir" yaml:"output_dir"`
	RenderFormats   []string `json:"render_formats" yaml:"render_formats"`
	RecentScenarios []string `json:"recent_scenarios" yaml:"recent_scenarios"`

	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultAppConfig returns an AppConfig populated with defaults matching
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Settings:        DefaultSettings(),
		LogLevel:        "info",
		LogFormat:       "text",
		OutputDir:       "",
		RenderFormats:   []string{"pdf"},
		RecentScenarios: []string{},
		ListenAddr:      ":8080",
	}
}

// AddRecent records a scenario path at the front of the recent list,
// dropping duplicates and keeping at most max entries.
func (c *AppConfig) AddRecent(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentScenarios {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentScenarios = recent
}
