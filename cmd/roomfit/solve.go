package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/importer"
	"github.com/piwi3910/roomfit/internal/model"
	"github.com/piwi3910/roomfit/internal/project"
)

// errInfeasible is returned by --strict runs that could not place every item.
var errInfeasible = errors.New("scenario is infeasible")

func newSolveCmd(a *app) *cobra.Command {
	var flags struct {
		output  string
		bundle  string
		formats []string
		outDir  string
		strict  bool
	}

	cmd := &cobra.Command{
		Use:   "solve <scenario.json>",
		Short: "Place the items of one scenario",
		Long: `Solve one scenario and write the result next to it as <name>.result.json.

An infeasible scenario still writes its partial result; with --strict the
command then exits with status 2.

Examples:
  roomfit solve kitchen.json
  roomfit solve kitchen.json -o out/kitchen.json --format pdf,geojson
  roomfit solve kitchen.json --bundle kitchen.roomfit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			settings := a.settings()

			formats, err := parseFormats(flags.formats)
			if err != nil {
				return err
			}

			sc, err := importer.LoadScenario(path)
			if err != nil {
				return err
			}

			runID := model.NewRunID()
			log := a.logger.With("run", runID)
			result, err := engine.New(settings).WithLogger(log).Solve(cmd.Context(), sc)
			if err != nil {
				return err
			}

			out := flags.output
			if out == "" {
				out = project.ResultPath(path, flags.outDir)
			}
			if err := project.SaveResult(out, result); err != nil {
				return err
			}
			log.Info("Result written", "path", out)

			if flags.bundle != "" {
				if err := project.ExportBundle(flags.bundle, project.NewBundle(runID, settings, sc, result)); err != nil {
					return err
				}
				log.Info("Bundle written", "path", flags.bundle)
			}

			if result.Feasible {
				for _, f := range formats {
					target := export.OutputPath(path, flags.outDir, f)
					if err := export.Render(f, target, sc, result, settings, runID); err != nil {
						return fmt.Errorf("rendering %s: %w", f, err)
					}
					log.Info("Rendered", "format", f, "path", target)
				}
			} else if len(formats) > 0 {
				log.Warn("Skipping renders for infeasible scenario")
			}

			a.remember(path)
			printSummary(cmd.OutOrStdout(), sc, result)

			if flags.strict && !result.Feasible {
				return errInfeasible
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "result file (default <scenario>.result.json)")
	cmd.Flags().StringVar(&flags.bundle, "bundle", "", "also write a bundle with settings, scenario and result")
	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", nil, "render formats for a feasible result (pdf, labels, geojson, xlsx, html)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "directory for result and renders (default next to the scenario)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with status 2 when the scenario is infeasible")
	return cmd
}

// parseFormats validates render format names, keeping their order.
func parseFormats(names []string) ([]string, error) {
	formats := make([]string, 0, len(names))
	for _, n := range names {
		f, err := export.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func printSummary(w io.Writer, sc model.Scenario, result model.Result) {
	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	if result.Feasible {
		fmt.Fprintf(w, "%s: feasible, %d/%d items placed\n", name, len(result.Placements), len(sc.Items))
		return
	}
	fmt.Fprintf(w, "%s: infeasible (%s), %d/%d items placed\n", name, result.Message, len(result.Placements), len(sc.Items))
}
