package engine

import (
	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/geometry"
	"github.com/piwi3910/roomfit/internal/model"
)

// inwardSign returns +1 when the left-hand normal of the room's edges points
// into the room (counter-clockwise boundary) and -1 otherwise.
func inwardSign(room model.Room) float64 {
	ring := room.Ring()
	if len(ring) >= 4 && ring.Orientation() == orb.CW {
		return -1
	}
	return 1
}

// inwardNormal returns the unit normal of s pointing into the room.
func inwardNormal(s geometry.Segment, sign float64) orb.Point {
	n := s.Normal()
	return orb.Point{n[0] * sign, n[1] * sign}
}

// doorNormal returns the unit normal of the door that points into the room.
// The door may be listed in either direction, so the side is probed just
// off the door's midpoint; when neither side is clearly inside, the
// left-hand normal is used.
func doorNormal(room model.Room, door geometry.Segment) orb.Point {
	n := door.Normal()
	ring := room.Ring()
	mid := door.PointAt(0.5)
	d := door.Length() * 1e-3
	left := geometry.ContainsPoint(ring, orb.Point{mid[0] + n[0]*d, mid[1] + n[1]*d})
	right := geometry.ContainsPoint(ring, orb.Point{mid[0] - n[0]*d, mid[1] - n[1]*d})
	if right && !left {
		return orb.Point{-n[0], -n[1]}
	}
	return n
}

// DoorZone returns the region kept clear in front of the door. It reports
// false when the room has no usable door.
//
// An inward-opening door reserves the square swept by the leaf: the door
// segment offset into the room by its own width. An outward-opening door
// reserves an approach corridor: the door segment buffered by
// OutwardDoorClearance.
func DoorZone(room model.Room, settings model.Settings) (model.ForbiddenZone, bool) {
	door, ok := room.DoorSegment()
	if !ok {
		return model.ForbiddenZone{}, false
	}
	settings = settings.Normalize()

	var poly orb.Ring
	if room.OpenInward {
		w := door.Length()
		n := doorNormal(room, door)
		off := orb.Point{n[0] * w, n[1] * w}
		poly = orb.Ring{
			door.A,
			door.B,
			{door.B[0] + off[0], door.B[1] + off[1]},
			{door.A[0] + off[0], door.A[1] + off[1]},
			door.A,
		}
	} else {
		poly = geometry.BufferSegment(door, settings.OutwardDoorClearance, settings.BufferQuadSegments)
	}
	return model.ForbiddenZone{Kind: model.ZoneDoor, Polygon: poly}, true
}

// FridgeZone returns the door-swing clearance of a placed fridge. Other
// categories have no zone.
//
// The zone lies against the fridge edge that is as long as its
// width. At rotation 0 that is the right edge. At rotation 90 the zone
// follows the rotated body and sits on the top edge, spanning the body's
// x-extent (the width), not the unrotated length. Its depth is
// FridgeClearance times the fridge width.
func FridgeZone(p model.Placement, settings model.Settings) (model.ForbiddenZone, bool) {
	if p.Item.Category != model.CategoryFridge {
		return model.ForbiddenZone{}, false
	}
	settings = settings.Normalize()

	depth := settings.FridgeClearance * p.Item.Width
	if depth <= 0 {
		return model.ForbiddenZone{}, false
	}
	cx, cy := p.Center[0], p.Center[1]
	xExt, yExt := p.Extent()

	var b orb.Bound
	switch p.Rotation {
	case model.Rotation90:
		b = orb.Bound{
			Min: orb.Point{cx - xExt/2, cy + yExt/2},
			Max: orb.Point{cx + xExt/2, cy + yExt/2 + depth},
		}
	default:
		b = orb.Bound{
			Min: orb.Point{cx + xExt/2, cy - yExt/2},
			Max: orb.Point{cx + xExt/2 + depth, cy + yExt/2},
		}
	}
	return model.ForbiddenZone{
		Kind:    model.ZoneFridge,
		Source:  p.Item.Name,
		Polygon: geometry.BoundRing(b),
	}, true
}

// Zones returns every forbidden zone implied by a scenario and its result:
// the door zone first, then one zone per placed fridge in commit order.
// Renderers use it so drawings match what the solver enforced.
func Zones(room model.Room, placements []model.Placement, settings model.Settings) []model.ForbiddenZone {
	var zones []model.ForbiddenZone
	if z, ok := DoorZone(room, settings); ok {
		zones = append(zones, z)
	}
	for _, p := range placements {
		if z, ok := FridgeZone(p, settings); ok {
			zones = append(zones, z)
		}
	}
	return zones
}
