package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/geometry"
	"github.com/piwi3910/roomfit/internal/importer"
	"github.com/piwi3910/roomfit/internal/model"
)

func newImportCmd(a *app) *cobra.Command {
	var flags struct {
		room    string
		catalog string
		door    string
		inward  bool
		name    string
		output  string
	}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a scenario from a DXF floor plan and an item catalog",
		Long: `Build a scenario file from a floor plan drawing and a catalog.

The room is the largest closed outline in the DXF file. The catalog is a
CSV or Excel sheet with name, length, width and an optional quantity
column; a quantity of n expands to items name_1 .. name_n.

Examples:
  roomfit import --room plan.dxf --catalog items.csv -o kitchen.json
  roomfit import --room plan.dxf --catalog items.xlsx --door 1500,0,2300,0 --inward -o kitchen.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var door []orb.Point
			if flags.door != "" {
				d, err := parseDoor(flags.door)
				if err != nil {
					return err
				}
				door = d
			}

			room := importer.ImportRoomDXF(flags.room)
			reportMessages(cmd.ErrOrStderr(), filepath.Base(flags.room), room.Warnings, room.Errors)
			if len(room.Errors) > 0 {
				return fmt.Errorf("cannot read room from %s", flags.room)
			}

			items := []model.Item{}
			if flags.catalog != "" {
				cat := importer.ImportCatalog(flags.catalog)
				reportMessages(cmd.ErrOrStderr(), filepath.Base(flags.catalog), cat.Warnings, cat.Errors)
				if len(cat.Errors) > 0 {
					return fmt.Errorf("cannot read catalog from %s", flags.catalog)
				}
				items = cat.Items
			}

			sc := model.Scenario{
				Name: flags.name,
				Room: model.Room{
					Boundary:   room.Boundary,
					Door:       door,
					OpenInward: flags.inward,
				},
				Items: items,
			}
			for _, w := range doorWarnings(sc.Room) {
				a.logger.Warn(w)
			}

			if err := importer.SaveScenario(flags.output, sc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d vertices, %d items\n", flags.output, len(sc.Room.Boundary), len(sc.Items))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.room, "room", "", "DXF floor plan")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "item catalog (.csv or .xlsx)")
	cmd.Flags().StringVar(&flags.door, "door", "", "door segment as x1,y1,x2,y2")
	cmd.Flags().BoolVar(&flags.inward, "inward", false, "door opens into the room")
	cmd.Flags().StringVar(&flags.name, "name", "", "scenario name")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "scenario file to write")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// parseDoor reads "x1,y1,x2,y2".
func parseDoor(s string) ([]orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("door must be x1,y1,x2,y2, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("door coordinate %d: %w", i+1, err)
		}
		v[i] = f
	}
	door := []orb.Point{{v[0], v[1]}, {v[2], v[3]}}
	if door[0].Equal(door[1]) {
		return nil, errors.New("door endpoints must differ")
	}
	return door, nil
}

// doorWarnings flags door endpoints that do not lie on the room boundary.
func doorWarnings(room model.Room) []string {
	if len(room.Door) == 0 {
		return nil
	}
	ring := room.Ring()
	var warnings []string
	for i, p := range room.Door {
		if !geometry.OnBoundary(ring, p) {
			warnings = append(warnings, fmt.Sprintf("door point %d %v is not on the room boundary", i+1, p))
		}
	}
	return warnings
}

func reportMessages(w io.Writer, source string, warnings, errs []string) {
	for _, m := range warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", source, m)
	}
	for _, m := range errs {
		fmt.Fprintf(w, "%s: error: %s\n", source, m)
	}
}
