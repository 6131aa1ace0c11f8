package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/geometry"
	"github.com/piwi3910/roomfit/internal/model"
)

// MaxCandidates caps the candidate pool a single item may generate.
const MaxCandidates = 1_000_000

// ErrRoomTooLarge is returned when a room would produce more than
// MaxCandidates poses per item at the configured sampling steps.
var ErrRoomTooLarge = errors.New("room too large for sampling steps")

// Candidate is a proposed pose for an item, not yet validated.
type Candidate struct {
	Center   orb.Point
	Rotation model.Rotation
}

// wallStep returns the along-wall sampling step for a wall of length l.
func wallStep(l float64, s model.Settings) float64 {
	return math.Max(math.Min(s.WallSampleStep, l/s.WallSamplesPerWall), s.MinWallSampleStep)
}

// samples returns start, start+step, ... strictly below stop. A run longer
// than MaxCandidates yields nil.
func samples(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := math.Ceil((stop - start) / step)
	if !(n <= MaxCandidates) {
		return nil
	}
	out := make([]float64, int(n))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// projectedExtent returns the width of an axis-aligned rectangle measured
// along the unit direction u.
func projectedExtent(xExt, yExt float64, u orb.Point) float64 {
	return xExt*math.Abs(u[0]) + yExt*math.Abs(u[1])
}

// WallCandidates returns poses flush against each wall of the room. Walls
// are visited in boundary order and sampled independently; samples whose
// footprint would run past either end of the wall are skipped. The center
// sits half the footprint depth inside the wall, so the rectangle touches
// the wall line.
func WallCandidates(room model.Room, item model.Item, settings model.Settings) []Candidate {
	settings = settings.Normalize()
	sign := inwardSign(room)

	var out []Candidate
	for _, wall := range room.Walls() {
		l := wall.Length()
		if l == 0 {
			continue
		}
		n := inwardNormal(wall, sign)
		u := orb.Point{(wall.B[0] - wall.A[0]) / l, (wall.B[1] - wall.A[1]) / l}
		for _, d := range samples(0, l, wallStep(l, settings)) {
			p := wall.PointAt(d / l)
			for _, rot := range model.Rotations {
				xExt, yExt := rot.Extent(item)
				along := projectedExtent(xExt, yExt, u)
				depth := projectedExtent(xExt, yExt, n)
				if d+along/2 > l || d-along/2 < 0 {
					continue
				}
				out = append(out, Candidate{
					Center:   orb.Point{p[0] + n[0]*depth/2, p[1] + n[1]*depth/2},
					Rotation: rot,
				})
			}
		}
	}
	return out
}

// InteriorCandidates returns poses centered on a regular grid over the
// room's bounding box, keeping grid points strictly inside the room.
func InteriorCandidates(room model.Room, settings model.Settings) []Candidate {
	settings = settings.Normalize()
	ring := room.Ring()
	if len(ring) < 4 {
		return nil
	}
	b := ring.Bound()

	var out []Candidate
	for _, x := range samples(b.Min[0], b.Max[0], settings.GridStep) {
		for _, y := range samples(b.Min[1], b.Max[1], settings.GridStep) {
			pt := orb.Point{x, y}
			if !geometry.ContainsPoint(ring, pt) {
				continue
			}
			for _, rot := range model.Rotations {
				out = append(out, Candidate{Center: pt, Rotation: rot})
			}
		}
	}
	return out
}

// CheckCandidateBudget returns ErrRoomTooLarge when the room's wall samples
// and interior grid together exceed MaxCandidates poses.
func CheckCandidateBudget(room model.Room, settings model.Settings) error {
	settings = settings.Normalize()
	rotations := float64(len(model.Rotations))

	var total float64
	for _, wall := range room.Walls() {
		if l := wall.Length(); l > 0 {
			total += math.Ceil(l/wallStep(l, settings)) * rotations
		}
	}
	if ring := room.Ring(); len(ring) >= 4 {
		b := ring.Bound()
		nx := math.Ceil((b.Max[0] - b.Min[0]) / settings.GridStep)
		ny := math.Ceil((b.Max[1] - b.Min[1]) / settings.GridStep)
		total += nx * ny * rotations
	}
	if !(total <= MaxCandidates) {
		return fmt.Errorf("%w: %.3g poses per item, limit %d", ErrRoomTooLarge, total, MaxCandidates)
	}
	return nil
}

// GenerateCandidates pools wall candidates followed by interior candidates.
func GenerateCandidates(room model.Room, item model.Item, settings model.Settings) []Candidate {
	wall := WallCandidates(room, item, settings)
	interior := InteriorCandidates(room, settings)
	out := make([]Candidate, 0, len(wall)+len(interior))
	out = append(out, wall...)
	return append(out, interior...)
}
