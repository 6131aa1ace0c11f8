// Package batch solves every scenario file in a directory, writing result
// files and renders next to them, and can keep doing so as files change.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/importer"
	"github.com/piwi3910/roomfit/internal/model"
	"github.com/piwi3910/roomfit/internal/project"
)

// FileReport is the outcome of one scenario file.
type FileReport struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Feasible bool          `json:"feasible"`
	Placed   int           `json:"placed"`
	Total    int           `json:"total"`
	Message  string        `json:"message,omitempty"`
	Renders  []string      `json:"renders,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report summarises one pass over a directory.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	Files      []FileReport `json:"files"`
	Feasible   int          `json:"feasible"`
	Infeasible int          `json:"infeasible"`
	Failed     int          `json:"failed"`
}

// Runner solves scenario files with shared settings.
type Runner struct {
	Settings  model.Settings
	OutputDir string   // Empty writes next to each input
	Formats   []string // Rendered for feasible results only
	Logger    *slog.Logger
}

// NewRunner creates a runner with normalized settings and the default logger.
func NewRunner(settings model.Settings, outputDir string, formats []string) *Runner {
	return &Runner{
		Settings:  settings.Normalize(),
		OutputDir: outputDir,
		Formats:   formats,
		Logger:    slog.Default(),
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// ScenarioFiles lists the *.json scenario files directly inside dir in
// name order, skipping result files.
func ScenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !isScenarioName(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func isScenarioName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json") && !project.IsResultFile(name)
}

// RunDir solves every scenario file in dir. A file that fails to load or
// render is recorded in the report and does not stop the pass; only a
// cancelled context does.
func (r *Runner) RunDir(ctx context.Context, dir string) (Report, error) {
	files, err := ScenarioFiles(dir)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:     model.NewRunID(),
		StartedAt: time.Now().UTC(),
		Files:     make([]FileReport, 0, len(files)),
	}
	log := r.logger().With("run", report.RunID)
	log.Info("Batch started", "dir", dir, "files", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fr := r.runFile(ctx, path, report.RunID)
		switch {
		case fr.Error != "":
			report.Failed++
		case fr.Feasible:
			report.Feasible++
		default:
			report.Infeasible++
		}
		report.Files = append(report.Files, fr)
	}

	log.Info("Batch finished",
		"feasible", report.Feasible,
		"infeasible", report.Infeasible,
		"failed", report.Failed,
	)
	return report, nil
}

// RunFile solves one scenario file and writes its result and renders. A
// panic while handling the file is reported as its error.
func (r *Runner) RunFile(ctx context.Context, path string) FileReport {
	return r.runFile(ctx, path, "")
}

// runFile is RunFile with the run ID stamped on install labels; empty gets
// a fresh one per file.
func (r *Runner) runFile(ctx context.Context, path, runID string) (fr FileReport) {
	start := time.Now()
	fr = FileReport{Input: path}
	log := r.logger().With("file", filepath.Base(path))

	fail := func(err error) FileReport {
		fr.Error = err.Error()
		fr.Duration = time.Since(start)
		log.Error("Scenario failed", "error", err)
		return fr
	}
	defer func() {
		if p := recover(); p != nil {
			fr = fail(fmt.Errorf("panic: %v", p))
		}
	}()

	sc, err := importer.LoadScenario(path)
	if err != nil {
		return fail(err)
	}
	fr.Total = len(sc.Items)

	result, err := engine.New(r.Settings).WithLogger(log).Solve(ctx, sc)
	if err != nil {
		return fail(err)
	}
	fr.Feasible = result.Feasible
	fr.Placed = len(result.Placements)
	fr.Message = result.Message

	fr.Output = project.ResultPath(path, r.OutputDir)
	if err := project.SaveResult(fr.Output, result); err != nil {
		return fail(err)
	}

	if result.Feasible {
		for _, format := range r.Formats {
			out := export.OutputPath(path, r.OutputDir, format)
			if err := export.Render(format, out, sc, result, r.Settings, runID); err != nil {
				return fail(fmt.Errorf("rendering %s: %w", format, err))
			}
			fr.Renders = append(fr.Renders, out)
		}
	} else if len(r.Formats) > 0 {
		log.Info("Skipping renders for infeasible scenario", "message", result.Message)
	}

	fr.Duration = time.Since(start)
	log.Info("Scenario solved",
		"feasible", fr.Feasible,
		"placed", fr.Placed,
		"total", fr.Total,
		"duration_ms", fr.Duration.Milliseconds(),
	)
	return fr
}
