package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/importer"
)

func newCompareCmd(a *app) *cobra.Command {
	var htmlPath string

	cmd := &cobra.Command{
		Use:   "compare <scenario.json>",
		Short: "Solve a scenario under what-if variants",
		Long: `Solve a scenario with the current settings, the opposite door swing,
a larger fridge clearance and a denser interior grid, and print how many
items each variant places.

Examples:
  roomfit compare kitchen.json
  roomfit compare kitchen.json --html compare.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := importer.LoadScenario(args[0])
			if err != nil {
				return err
			}

			results, err := engine.CompareScenarios(cmd.Context(), engine.BuildDefaultScenarios(a.settings()), sc)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VARIANT\tFEASIBLE\tPLACED\tAREA %\tNOTE")
			for _, r := range results {
				note := r.Scenario.Annotation
				if !r.Result.Feasible {
					note = r.Result.Message
				}
				fmt.Fprintf(tw, "%s\t%t\t%d/%d\t%.1f\t%s\n",
					r.Scenario.Name, r.Result.Feasible, r.PlacedCount, len(sc.Items), r.AreaPercent, note)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if htmlPath == "" {
				return nil
			}
			f, err := os.Create(htmlPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", htmlPath, err)
			}
			err = export.WriteComparisonChart(f, results)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "also write a comparison chart as HTML")
	return cmd
}
