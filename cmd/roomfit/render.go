package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/importer"
	"github.com/piwi3910/roomfit/internal/model"
	"github.com/piwi3910/roomfit/internal/project"
)

func newRenderCmd(a *app) *cobra.Command {
	var flags struct {
		formats []string
		outDir  string
		bundle  string
	}

	cmd := &cobra.Command{
		Use:   "render [scenario.json [result.json]]",
		Short: "Render a solved scenario as PDF, labels, GeoJSON, Excel or HTML",
		Long: `Render a scenario together with its result.

The result defaults to <scenario>.result.json; when that file does not
exist the scenario is solved first. A result file does not record the
settings it was solved with, so it is drawn with the current settings
(fridge clearance, door clearance). A bundle carries its own scenario,
result, settings and run ID; use --bundle to reproduce a render exactly.

Infeasible results are rendered too, marked as such on the plan.

Examples:
  roomfit render kitchen.json
  roomfit render kitchen.json kitchen.result.json --format pdf,xlsx
  roomfit render --bundle kitchen.roomfit --format geojson`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := flags.formats
			if len(names) == 0 {
				names = a.config.RenderFormats
			}
			formats, err := parseFormats(names)
			if err != nil {
				return err
			}
			if len(formats) == 0 {
				return errors.New("no render format given")
			}

			var (
				basePath string
				runID    string
				sc       model.Scenario
				result   model.Result
				settings = a.settings()
			)
			switch {
			case flags.bundle != "":
				if len(args) > 0 {
					return errors.New("--bundle cannot be combined with scenario arguments")
				}
				b, err := project.ImportBundle(flags.bundle)
				if err != nil {
					return err
				}
				basePath = flags.bundle
				sc, result, settings, runID = b.Scenario, b.Result, b.Settings, b.RunID
			case len(args) > 0:
				basePath = args[0]
				if sc, err = importer.LoadScenario(basePath); err != nil {
					return err
				}
				resultPath := project.ResultPath(basePath, "")
				if len(args) == 2 {
					resultPath = args[1]
				}
				if result, err = loadOrSolve(cmd, a, sc, resultPath, len(args) == 2); err != nil {
					return err
				}
			default:
				return errors.New("give a scenario file or --bundle")
			}

			for _, f := range formats {
				target := export.OutputPath(basePath, flags.outDir, f)
				if err := export.Render(f, target, sc, result, settings, runID); err != nil {
					return fmt.Errorf("rendering %s: %w", f, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), target)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", nil, "render formats (default from config)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "output directory (default next to the input)")
	cmd.Flags().StringVar(&flags.bundle, "bundle", "", "render from a bundle file")
	return cmd
}

// loadOrSolve reads the result at path. A missing default result is solved
// on the spot; a missing result named explicitly is an error.
func loadOrSolve(cmd *cobra.Command, a *app, sc model.Scenario, path string, explicit bool) (model.Result, error) {
	result, err := project.LoadResult(path)
	if err == nil {
		a.logger.Debug("Rendering result file with current settings", "path", path)
		return result.Bind(sc.Items)
	}
	if explicit || !errors.Is(err, os.ErrNotExist) {
		return model.Result{}, err
	}
	a.logger.Info("No result file, solving", "scenario", sc.Name)
	return engine.New(a.settings()).WithLogger(a.logger).Solve(cmd.Context(), sc)
}
