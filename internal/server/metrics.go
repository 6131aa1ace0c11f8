package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Solve outcomes used as the "result" label.
const (
	outcomeFeasible   = "feasible"
	outcomeInfeasible = "infeasible"
	outcomeInvalid    = "invalid"
	outcomeCancelled  = "cancelled"
)

// Metrics contains Prometheus metrics for the placement service.
type Metrics struct {
	solves        *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
	itemsPlaced   prometheus.Counter
	itemsFailed   *prometheus.CounterVec
}

// NewMetrics registers the service collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		solves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomfit_solves_total",
				Help: "Total number of solve requests by outcome",
			},
			[]string{"endpoint", "result"},
		),

		solveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roomfit_solve_duration_seconds",
				Help:    "Duration of placement solves in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
			[]string{"endpoint"},
		),

		itemsPlaced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "roomfit_items_placed_total",
				Help: "Total number of items committed across all solves",
			},
		),

		itemsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomfit_items_unplaceable_total",
				Help: "Items that ended a solve with no valid position, by category",
			},
			[]string{"category"},
		),
	}
}

// RecordSolve records the outcome and duration of one solve.
func (m *Metrics) RecordSolve(endpoint, outcome string, duration time.Duration) {
	m.solves.WithLabelValues(endpoint, outcome).Inc()
	if outcome == outcomeFeasible || outcome == outcomeInfeasible {
		m.solveDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// RecordPlacements adds committed placements to the running total.
func (m *Metrics) RecordPlacements(n int) {
	m.itemsPlaced.Add(float64(n))
}

// RecordUnplaceable records the category of the item that stopped a solve.
func (m *Metrics) RecordUnplaceable(category string) {
	m.itemsFailed.WithLabelValues(category).Inc()
}
