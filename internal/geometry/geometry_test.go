package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

// L-shaped room with the top-right quadrant cut out.
var lShape = orb.Ring{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}, {0, 0}}

func TestSegment(t *testing.T) {
	s := Segment{A: orb.Point{0, 0}, B: orb.Point{3, 4}}

	assert.Equal(t, 5.0, s.Length())
	assert.Equal(t, orb.Point{1.5, 2}, s.PointAt(0.5))
	n := s.Normal()
	assert.InDelta(t, -0.8, n[0], 1e-12)
	assert.InDelta(t, 0.6, n[1], 1e-12)
	assert.Equal(t, orb.Point{}, Segment{A: orb.Point{1, 1}, B: orb.Point{1, 1}}.Normal())
}

func TestCloseAndEdges(t *testing.T) {
	open := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	closed := Close(open)
	assert.Len(t, closed, 5)
	assert.Len(t, open, 4, "input is not modified")
	assert.Len(t, Close(closed), 5, "closed rings stay as they are")

	assert.Len(t, Edges(open), 4)
	assert.Len(t, Edges(closed), 4)
	assert.Len(t, Edges(orb.Ring{{0, 0}, {0, 0}, {5, 0}, {5, 5}}), 3, "degenerate edge skipped")
}

func TestRectRing(t *testing.T) {
	r := RectRing(orb.Point{5, 5}, 4, 2)

	require.Len(t, r, 5)
	assert.True(t, r.Closed())
	assert.Equal(t, orb.CCW, r.Orientation())
	assert.Equal(t, orb.Bound{Min: orb.Point{3, 4}, Max: orb.Point{7, 6}}, r.Bound())
	assert.Equal(t, orb.Point{5, 5}, Centroid(r))
	assert.InDelta(t, 8, Area(r), 1e-12)
}

func TestContainsPoint(t *testing.T) {
	assert.True(t, ContainsPoint(square, orb.Point{5, 5}))
	assert.False(t, ContainsPoint(square, orb.Point{0, 5}), "boundary is not interior")
	assert.False(t, ContainsPoint(square, orb.Point{10, 10}), "vertex is not interior")
	assert.False(t, ContainsPoint(square, orb.Point{11, 5}))
	assert.False(t, ContainsPoint(lShape, orb.Point{7, 7}))

	assert.True(t, CoversPoint(square, orb.Point{0, 5}))
	assert.False(t, CoversPoint(square, orb.Point{-1, 5}))
}

func TestContains(t *testing.T) {
	tests := []struct {
		name  string
		outer orb.Ring
		inner orb.Ring
		want  bool
	}{
		{"inside", square, RectRing(orb.Point{5, 5}, 2, 2), true},
		{"flush against corner", square, RectRing(orb.Point{2.5, 1.5}, 5, 3), true},
		{"equal to room", square, square, true},
		{"past a wall", square, RectRing(orb.Point{9, 5}, 4, 2), false},
		{"fully outside", square, RectRing(orb.Point{20, 20}, 2, 2), false},
		{"L: lower arm", lShape, RectRing(orb.Point{7.5, 2.5}, 5, 5), true},
		{"L: across the notch corner", lShape, RectRing(orb.Point{5, 5}, 2, 2), false},
		{"L: inside the notch", lShape, RectRing(orb.Point{6, 6}, 2, 2), false},
		{"L: flush in inner corner", lShape, RectRing(orb.Point{4, 4}, 2, 2), true},
		{"clockwise inner", square, orb.Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.outer, tt.inner))
		})
	}
}

func TestIntersects(t *testing.T) {
	a := RectRing(orb.Point{2, 2}, 4, 4)

	assert.True(t, Intersects(a, RectRing(orb.Point{3, 3}, 4, 4)), "overlap")
	assert.True(t, Intersects(a, RectRing(orb.Point{6, 2}, 4, 4)), "shared edge")
	assert.True(t, Intersects(a, RectRing(orb.Point{6, 6}, 4, 4)), "shared corner")
	assert.True(t, Intersects(a, RectRing(orb.Point{2, 2}, 1, 1)), "nested")
	assert.True(t, Intersects(RectRing(orb.Point{2, 2}, 1, 1), a), "nested, reversed")
	assert.False(t, Intersects(a, RectRing(orb.Point{7, 2}, 4, 4)), "gap of one")
	assert.False(t, Intersects(a, RectRing(orb.Point{4.5, 4.5}, 0.5, 0.5)), "diagonal gap")
}

func TestDistance(t *testing.T) {
	r := RectRing(orb.Point{0.5, 0.5}, 1, 1)

	assert.InDelta(t, 2, Distance(r, Segment{A: orb.Point{3, 0}, B: orb.Point{3, 5}}), 1e-12)
	assert.InDelta(t, 0, Distance(r, Segment{A: orb.Point{1, -5}, B: orb.Point{1, 5}}), 1e-12, "touching")
	assert.InDelta(t, 0, Distance(r, Segment{A: orb.Point{-5, 0.5}, B: orb.Point{5, 0.5}}), 1e-12, "crossing")
	assert.InDelta(t, 0, Distance(r, Segment{A: orb.Point{0.2, 0.2}, B: orb.Point{0.4, 0.4}}), 1e-12, "inside")
	assert.InDelta(t, math.Sqrt2, Distance(r, Segment{A: orb.Point{2, 2}, B: orb.Point{2, 2}}), 1e-12, "corner to point")
}

func TestSegmentsIntersect(t *testing.T) {
	seg := func(ax, ay, bx, by float64) Segment {
		return Segment{A: orb.Point{ax, ay}, B: orb.Point{bx, by}}
	}

	assert.True(t, SegmentsIntersect(seg(0, 0, 10, 10), seg(0, 10, 10, 0)), "cross")
	assert.True(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(10, 0, 10, 5)), "endpoint")
	assert.True(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(5, 0, 15, 0)), "collinear overlap")
	assert.True(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(5, 0, 5, 5)), "T junction")
	assert.False(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(11, 0, 15, 0)), "collinear apart")
	assert.False(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(0, 1, 10, 1)), "parallel")
	assert.False(t, SegmentsIntersect(seg(0, 0, 10, 0), seg(5, 1, 5, 5)), "short of the line")
}

func TestBufferSegment(t *testing.T) {
	s := Segment{A: orb.Point{0, 0}, B: orb.Point{10, 0}}

	ring := BufferSegment(s, 1, 16)

	require.True(t, ring.Closed())
	b := ring.Bound()
	assert.InDelta(t, -1, b.Min[0], 1e-9)
	assert.InDelta(t, 11, b.Max[0], 1e-9)
	assert.InDelta(t, -1, b.Min[1], 1e-9)
	assert.InDelta(t, 1, b.Max[1], 1e-9)
	assert.InDelta(t, 20+math.Pi, Area(ring), 0.01)

	assert.True(t, ContainsPoint(ring, orb.Point{5, 0.9}))
	assert.True(t, ContainsPoint(ring, orb.Point{-0.5, 0}))
	assert.False(t, ContainsPoint(ring, orb.Point{-0.9, 0.9}), "outside the rounded cap")
	assert.False(t, ContainsPoint(ring, orb.Point{5, 1.1}))
}

func TestBufferSegment_ZeroLengthIsCircle(t *testing.T) {
	ring := BufferSegment(Segment{A: orb.Point{3, 3}, B: orb.Point{3, 3}}, 2, 8)

	assert.InDelta(t, 4*math.Pi, Area(ring), 0.1)
	for _, p := range ring {
		assert.InDelta(t, 2, math.Hypot(p[0]-3, p[1]-3), 1e-9)
	}
}
