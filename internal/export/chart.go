package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/model"
)

var chartCategories = []model.Category{
	model.CategoryFridge,
	model.CategoryIceMaker,
	model.CategoryShelf,
	model.CategoryOverShelf,
	model.CategoryUnknown,
}

// UsageChart builds a bar chart comparing catalog and placed item counts
// and areas per category.
func UsageChart(scenario model.Scenario, result model.Result) *charts.Bar {
	catalogCount := make(map[model.Category]int)
	catalogArea := make(map[model.Category]float64)
	for _, it := range scenario.Items {
		catalogCount[it.Category]++
		catalogArea[it.Category] += it.Area()
	}
	placedCount := make(map[model.Category]int)
	placedArea := make(map[model.Category]float64)
	for _, p := range result.Placements {
		placedCount[p.Item.Category]++
		placedArea[p.Item.Category] += p.Item.Area()
	}

	var labels []string
	var wanted, placed []opts.BarData
	var wantedArea, gotArea []opts.BarData
	for _, c := range chartCategories {
		if catalogCount[c] == 0 {
			continue
		}
		labels = append(labels, c.String())
		wanted = append(wanted, opts.BarData{Value: catalogCount[c]})
		placed = append(placed, opts.BarData{Value: placedCount[c]})
		wantedArea = append(wantedArea, opts.BarData{Value: catalogArea[c] / 1e6})
		gotArea = append(gotArea, opts.BarData{Value: placedArea[c] / 1e6})
	}

	subtitle := fmt.Sprintf("%d of %d items placed, %.1f%% of the floor", len(result.Placements), len(scenario.Items), coverage(scenario.Room, result))
	if !result.Feasible {
		subtitle = result.Message + " | " + subtitle
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "RoomFit usage"}),
		charts.WithTitleOpts(opts.Title{Title: chartTitle(scenario), Subtitle: subtitle}),
	)
	bar.SetXAxis(labels).
		AddSeries("Catalog items", wanted).
		AddSeries("Placed items", placed).
		AddSeries("Catalog area (m²)", wantedArea).
		AddSeries("Placed area (m²)", gotArea)
	return bar
}

func chartTitle(scenario model.Scenario) string {
	if scenario.Name == "" {
		return "Placement by category"
	}
	return "Placement by category: " + scenario.Name
}

// WriteUsageChart renders UsageChart as a standalone HTML page.
func WriteUsageChart(w io.Writer, scenario model.Scenario, result model.Result) error {
	result, err := bindResult(scenario, result)
	if err != nil {
		return err
	}
	if err := UsageChart(scenario, result).Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// ComparisonChart builds a bar chart of placed counts and placed area share
// per what-if variant.
func ComparisonChart(results []engine.ComparisonResult) *charts.Bar {
	names := make([]string, 0, len(results))
	placed := make([]opts.BarData, 0, len(results))
	share := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		name := r.Scenario.Name
		if !r.Result.Feasible {
			name += " (infeasible)"
		}
		names = append(names, name)
		placed = append(placed, opts.BarData{Value: r.PlacedCount})
		share = append(share, opts.BarData{Value: r.AreaPercent})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "RoomFit comparison"}),
		charts.WithTitleOpts(opts.Title{Title: "What-if comparison"}),
	)
	bar.SetXAxis(names).
		AddSeries("Placed items", placed).
		AddSeries("Placed area %", share)
	return bar
}

// WriteComparisonChart renders ComparisonChart as a standalone HTML page.
func WriteComparisonChart(w io.Writer, results []engine.ComparisonResult) error {
	if err := ComparisonChart(results).Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
