package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	var flags struct {
		formats []string
		outDir  string
		report  string
		watch   bool
	}

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Solve every scenario file in a directory",
		Long: `Solve every *.json scenario in a directory, writing <name>.result.json
files and, for feasible results, the requested renders.

A file that fails to load does not stop the run. With --watch the
directory is re-solved as scenario files are written, until interrupted.

Examples:
  roomfit batch ./rooms
  roomfit batch ./rooms --out-dir ./out --format pdf,geojson
  roomfit batch ./rooms --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			names := flags.formats
			if !cmd.Flags().Changed("format") {
				names = a.config.RenderFormats
			}
			formats, err := parseFormats(names)
			if err != nil {
				return err
			}
			outDir := flags.outDir
			if outDir == "" {
				outDir = a.config.OutputDir
			}

			runner := batch.NewRunner(a.settings(), outDir, formats)
			runner.Logger = a.logger

			if flags.watch {
				return runner.Watch(cmd.Context(), dir)
			}

			report, err := runner.RunDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if flags.report != "" {
				if err := writeReport(flags.report, report); err != nil {
					return err
				}
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", report.Failed, len(report.Files))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", nil, "render formats for feasible results (default from config)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "output directory (default from config, else next to each scenario)")
	cmd.Flags().StringVar(&flags.report, "report", "", "write the run report as JSON")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "keep re-solving scenarios as they change")
	return cmd
}

func printReport(w io.Writer, report batch.Report) {
	for _, f := range report.Files {
		name := filepath.Base(f.Input)
		switch {
		case f.Error != "":
			fmt.Fprintf(w, "FAIL  %s: %s\n", name, f.Error)
		case f.Feasible:
			fmt.Fprintf(w, "OK    %s: %d/%d placed\n", name, f.Placed, f.Total)
		default:
			fmt.Fprintf(w, "NOFIT %s: %s, %d/%d placed\n", name, f.Message, f.Placed, f.Total)
		}
	}
	fmt.Fprintf(w, "run %s: %d feasible, %d infeasible, %d failed\n",
		report.RunID, report.Feasible, report.Infeasible, report.Failed)
}

func writeReport(path string, report batch.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
