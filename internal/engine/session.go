package engine

import (
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/geometry"
	"github.com/piwi3910/roomfit/internal/model"
)

// session is the state of one solve: the room plus everything committed so
// far. It is never modified in place; commit returns a new session.
type session struct {
	settings model.Settings
	room     orb.Ring
	walls    []geometry.Segment
	door     *model.ForbiddenZone

	placements []model.Placement
	occupied   []orb.Ring
	fridges    []model.ForbiddenZone
}

func newSession(room model.Room, settings model.Settings) session {
	s := session{
		settings: settings,
		room:     room.Ring(),
		walls:    room.Walls(),
	}
	if z, ok := DoorZone(room, settings); ok {
		s.door = &z
	}
	return s
}

// isValid reports whether the rectangle can be committed: inside the room,
// clear of the door zone, every committed rectangle and every fridge zone.
func (s session) isValid(rect orb.Ring) bool {
	if !geometry.Contains(s.room, rect) {
		return false
	}
	if s.door != nil && geometry.Intersects(rect, s.door.Polygon) {
		return false
	}
	for _, r := range s.occupied {
		if geometry.Intersects(rect, r) {
			return false
		}
	}
	for _, z := range s.fridges {
		if geometry.Intersects(rect, z.Polygon) {
			return false
		}
	}
	return true
}

// measure returns how many walls lie within TouchTolerance of rect and
// the distance to the nearest wall.
func (s session) measure(rect orb.Ring) (touching int, minDist float64) {
	minDist = math.Inf(1)
	for _, w := range s.walls {
		d := geometry.Distance(rect, w)
		if d < s.settings.TouchTolerance {
			touching++
		}
		minDist = math.Min(minDist, d)
	}
	if math.IsInf(minDist, 1) {
		minDist = 0
	}
	return touching, minDist
}

// score rewards touching many walls first and being close to the nearest
// wall second. WallWeight dominates any realistic distance.
func (s session) score(rect orb.Ring) float64 {
	touching, minDist := s.measure(rect)
	return float64(touching)*s.settings.WallWeight - minDist
}

// commit returns a session that additionally holds p and, for a fridge,
// its clearance zone.
func (s session) commit(p model.Placement) session {
	next := s
	next.placements = append(slices.Clip(s.placements), p)
	next.occupied = append(slices.Clip(s.occupied), p.Rect())
	if z, ok := FridgeZone(p, s.settings); ok {
		next.fridges = append(slices.Clip(s.fridges), z)
	}
	return next
}
