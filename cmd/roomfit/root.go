package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/model"
	"github.com/piwi3910/roomfit/internal/project"
)

// app carries state shared by every subcommand once the root has loaded
// the configuration.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string
	workers   int
	tieBreak  string

	config       model.AppConfig
	configExists bool
	logger       *slog.Logger
}

// settings returns the engine settings after flag overrides.
func (a *app) settings() model.Settings {
	return a.config.Settings.Normalize()
}

// remember records a scenario in the recent list when a config file is in use.
func (a *app) remember(path string) {
	if !a.configExists {
		return
	}
	a.config.AddRecent(path, 10)
	if err := project.SaveAppConfig(a.cfgFile, a.config); err != nil {
		a.logger.Warn("Could not update recent scenarios", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "roomfit",
		Short: "RoomFit - appliance placement planner",
		Long: `RoomFit places fridges, ice makers and shelving into a polygonal room.

Items are placed one at a time in priority order: fridges, ice makers,
shelves, then over-shelves. Each item goes to the valid position that
touches the most walls and sits closest to them. The door swing and the
space in front of every fridge door are kept free.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", project.DefaultConfigPath(), "config file path")
	flags.StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "override log format (text, json)")
	flags.IntVar(&a.workers, "workers", 0, "override scoring goroutines per item")
	flags.StringVar(&a.tieBreak, "tie-break", "", "override tie break (first, lexicographic)")

	root.AddCommand(
		newSolveCmd(a),
		newRenderCmd(a),
		newBatchCmd(a),
		newCompareCmd(a),
		newImportCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the config file, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := project.LoadAppConfig(a.cfgFile)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(a.cfgFile)
	a.configExists = statErr == nil

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.workers > 0 {
		cfg.Settings.Workers = a.workers
	}
	if a.tieBreak != "" {
		tb := model.TieBreak(a.tieBreak)
		if tb != model.TieBreakFirst && tb != model.TieBreakLexicographic {
			return fmt.Errorf("unknown tie break %q (want first or lexicographic)", a.tieBreak)
		}
		cfg.Settings.TieBreak = tb
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.config = cfg
	a.logger = logger
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

// Execute runs the root command until it finishes or the process receives
// an interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		if errors.Is(err, errInfeasible) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
