package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/roomfit/internal/model"
)

// ComparisonScenario defines a named variant to compare: settings plus an
// optional override of the door swing.
type ComparisonScenario struct {
	Name       string
	Settings   model.Settings
	FlipSwing  bool
	Annotation string
}

// ComparisonResult holds the solve result and summary statistics for a
// single variant.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.Result
	PlacedCount   int
	UnplacedCount int
	PlacedArea    float64
	AreaPercent   float64 // Placed area as a percentage of the room area
}

// CompareScenarios solves the scenario once per variant and returns the
// results in variant order. It stops early only if ctx is cancelled.
func CompareScenarios(ctx context.Context, variants []ComparisonScenario, scenario model.Scenario) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(variants))
	roomArea := scenario.Room.Area()

	for _, v := range variants {
		sc := scenario
		if v.FlipSwing {
			sc.Room.OpenInward = !sc.Room.OpenInward
		}
		result, err := New(v.Settings).Solve(ctx, sc)
		if err != nil {
			return results, fmt.Errorf("variant %q: %w", v.Name, err)
		}

		placedArea := result.PlacedArea()
		pct := 0.0
		if roomArea > 0 {
			pct = placedArea / roomArea * 100
		}
		results = append(results, ComparisonResult{
			Scenario:      v,
			Result:        result,
			PlacedCount:   len(result.Placements),
			UnplacedCount: len(scenario.Items) - len(result.Placements),
			PlacedArea:    placedArea,
			AreaPercent:   pct,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if variants around the given
// settings: the opposite door swing, a roomier fridge clearance and a
// denser interior grid.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	base = base.Normalize()
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
		{
			Name:       "Opposite Door Swing",
			Settings:   base,
			FlipSwing:  true,
			Annotation: "door opens the other way",
		},
	}

	// Scenario: 1.2x fridge clearance, the envelope some floor plans draw
	roomy := base
	roomy.FridgeClearance = base.FridgeClearance * 1.2
	scenarios = append(scenarios, ComparisonScenario{
		Name:       fmt.Sprintf("Fridge Clearance %.1fx", roomy.FridgeClearance),
		Settings:   roomy,
		Annotation: "engine-only what-if; drawings keep the solved value",
	})

	// Scenario: Half the grid step
	if base.GridStep > 50 {
		dense := base
		dense.GridStep = base.GridStep / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Grid %.0f (dense)", dense.GridStep),
			Settings: dense,
		})
	}

	return scenarios
}
