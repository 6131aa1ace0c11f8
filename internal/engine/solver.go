package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/piwi3910/roomfit/internal/model"
)

// Solver runs the greedy placement algorithm.
type Solver struct {
	Settings model.Settings
	Logger   *slog.Logger
}

func New(settings model.Settings) *Solver {
	return &Solver{Settings: settings.Normalize(), Logger: slog.Default()}
}

// WithLogger returns a copy of the solver that logs to l.
func (s *Solver) WithLogger(l *slog.Logger) *Solver {
	c := *s
	c.Logger = l
	return &c
}

// SortItems returns the items in placement order: ascending category
// priority, then larger area first. Equal keys keep catalog order.
func SortItems(items []model.Item) []model.Item {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Category.Priority(), sorted[j].Category.Priority()
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Area() > sorted[j].Area()
	})
	return sorted
}

// Solve places every item of the scenario one at a time, committing each to
// its best-scoring valid pose. The run stops at the first item with no valid
// pose and returns an infeasible result holding the placements made so far.
// Infeasibility is a result, not an error. Errors are ctx's and
// ErrRoomTooLarge.
func (s *Solver) Solve(ctx context.Context, scenario model.Scenario) (model.Result, error) {
	log := s.logger()
	settings := s.Settings.Normalize()
	if err := CheckCandidateBudget(scenario.Room, settings); err != nil {
		return model.Result{}, err
	}
	state := newSession(scenario.Room, settings)

	for _, item := range SortItems(scenario.Items) {
		if err := ctx.Err(); err != nil {
			return model.Result{}, err
		}

		var placed bool
		state, placed = s.step(state, scenario.Room, item)
		if !placed {
			log.Info("no valid position", "item", item.Name, "placed", len(state.placements))
			return model.Result{
				Feasible:   false,
				Placements: resultPlacements(state),
				Message:    fmt.Sprintf("cannot place item: %s", item.Name),
				FailedItem: item.Name,
			}, nil
		}
	}

	log.Debug("scenario solved", "scenario", scenario.Name, "placed", len(state.placements))
	return model.Result{Feasible: true, Placements: resultPlacements(state)}, nil
}

// step tries to place one item and returns the resulting state.
func (s *Solver) step(state session, room model.Room, item model.Item) (session, bool) {
	candidates := GenerateCandidates(room, item, state.settings)
	scores := s.scoreAll(state, item, candidates)

	best := -1
	for i, sc := range scores {
		if !sc.valid {
			continue
		}
		if best < 0 || sc.score > scores[best].score ||
			(sc.score == scores[best].score && state.settings.TieBreak == model.TieBreakLexicographic &&
				lessCandidate(candidates[i], candidates[best])) {
			best = i
		}
	}
	if best < 0 {
		return state, false
	}

	c := candidates[best]
	p := model.Placement{Item: item, Center: c.Center, Rotation: c.Rotation}
	s.logger().Debug("placed item",
		"item", item.Name,
		"center", c.Center,
		"rotation", int(c.Rotation),
		"score", scores[best].score,
		"candidates", len(candidates))
	return state.commit(p), true
}

type scored struct {
	valid bool
	score float64
}

// scoreAll validates and scores every candidate. With more than one worker
// the candidates are split into contiguous chunks; each result lands in the
// slot of its candidate index so selection order is unaffected.
func (s *Solver) scoreAll(state session, item model.Item, candidates []Candidate) []scored {
	out := make([]scored, len(candidates))
	eval := func(i int) {
		p := model.Placement{Item: item, Center: candidates[i].Center, Rotation: candidates[i].Rotation}
		rect := p.Rect()
		if state.isValid(rect) {
			out[i] = scored{valid: true, score: state.score(rect)}
		}
	}

	workers := state.settings.Workers
	if workers <= 1 || len(candidates) < 2*workers {
		for i := range candidates {
			eval(i)
		}
		return out
	}

	chunk := (len(candidates) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				eval(i)
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// lessCandidate orders candidates by x, then y, then rotation.
func lessCandidate(a, b Candidate) bool {
	if a.Center[0] != b.Center[0] {
		return a.Center[0] < b.Center[0]
	}
	if a.Center[1] != b.Center[1] {
		return a.Center[1] < b.Center[1]
	}
	return a.Rotation < b.Rotation
}

func resultPlacements(state session) []model.Placement {
	out := make([]model.Placement, len(state.placements))
	copy(out, state.placements)
	return out
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
