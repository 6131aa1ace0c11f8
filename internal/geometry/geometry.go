// Package geometry provides the planar primitives used by the placement
// engine: rectangle construction, polygon containment, intersection, distance
// and segment buffering. Polygons are simple orb rings without holes.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Epsilon is the absolute tolerance (in model units) used by the
// orientation and on-segment tests.
const Epsilon = 1e-7

// Segment is a straight line between two points.
type Segment struct {
	A orb.Point `json:"a"`
	B orb.Point `json:"b"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return planar.Distance(s.A, s.B)
}

// LineString converts the segment to an orb line string.
func (s Segment) LineString() orb.LineString {
	return orb.LineString{s.A, s.B}
}

// PointAt returns the point at parameter t along the segment (0 = A, 1 = B).
func (s Segment) PointAt(t float64) orb.Point {
	return orb.Point{
		s.A[0] + t*(s.B[0]-s.A[0]),
		s.A[1] + t*(s.B[1]-s.A[1]),
	}
}

// Normal returns the unit vector obtained by rotating the segment direction
// 90 degrees counter-clockwise. For a zero-length segment it returns (0, 0).
func (s Segment) Normal() orb.Point {
	l := s.Length()
	if l == 0 {
		return orb.Point{}
	}
	dx := s.B[0] - s.A[0]
	dy := s.B[1] - s.A[1]
	return orb.Point{-dy / l, dx / l}
}

// Close returns a copy of the ring with the first point repeated at the end.
// Rings that are already closed are copied unchanged.
func Close(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r), len(r)+1)
	copy(out, r)
	if len(out) > 0 && !out.Closed() {
		out = append(out, out[0])
	}
	return out
}

// Edges returns the edges of the ring, including the closing edge when the
// ring is not explicitly closed. Degenerate edges are skipped.
func Edges(r orb.Ring) []Segment {
	n := len(r)
	if n < 2 {
		return nil
	}
	last := n
	if r.Closed() {
		last = n - 1
	}
	edges := make([]Segment, 0, last)
	for i := 0; i < last; i++ {
		a := r[i]
		b := r[(i+1)%n]
		if a.Equal(b) {
			continue
		}
		edges = append(edges, Segment{A: a, B: b})
	}
	return edges
}

// RectRing returns an axis-aligned, counter-clockwise, closed rectangle
// centered on c with the given x and y extents.
func RectRing(c orb.Point, xExtent, yExtent float64) orb.Ring {
	hx, hy := xExtent/2, yExtent/2
	return orb.Ring{
		{c[0] - hx, c[1] - hy},
		{c[0] + hx, c[1] - hy},
		{c[0] + hx, c[1] + hy},
		{c[0] - hx, c[1] + hy},
		{c[0] - hx, c[1] - hy},
	}
}

// BoundRing returns the closed counter-clockwise ring of a bound.
func BoundRing(b orb.Bound) orb.Ring {
	return RectRing(b.Center(), b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
}

// Centroid returns the vertex average of the ring. For convex rings this is
// an interior point.
func Centroid(r orb.Ring) orb.Point {
	pts := r
	if r.Closed() {
		pts = r[:len(r)-1]
	}
	if len(pts) == 0 {
		return orb.Point{}
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p[0]
		cy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{cx / n, cy / n}
}

// Area returns the unsigned area enclosed by the ring.
func Area(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	return math.Abs(planar.Area(r))
}

// OnBoundary reports whether p lies on any edge of the ring.
func OnBoundary(r orb.Ring, p orb.Point) bool {
	for _, e := range Edges(r) {
		if planar.DistanceFromSegment(e.A, e.B, p) <= Epsilon {
			return true
		}
	}
	return false
}

// ContainsPoint reports whether p lies strictly inside the ring. Points on
// the boundary are not contained.
func ContainsPoint(r orb.Ring, p orb.Point) bool {
	if len(r) < 3 {
		return false
	}
	if !planar.RingContains(r, p) {
		return false
	}
	return !OnBoundary(r, p)
}

// CoversPoint reports whether p lies inside the ring or on its boundary.
func CoversPoint(r orb.Ring, p orb.Point) bool {
	if len(r) < 3 {
		return false
	}
	return planar.RingContains(r, p) || OnBoundary(r, p)
}

// Contains reports whether the convex ring inner lies entirely within outer:
// no point of inner is outside outer, and inner's interior is inside outer.
// Shared boundary is allowed, so a rectangle flush against a wall is
// contained.
func Contains(outer, inner orb.Ring) bool {
	if len(outer) < 3 || len(inner) < 3 {
		return false
	}
	if !boundExpand(outer.Bound(), Epsilon).Contains(inner.Bound().Min) ||
		!boundExpand(outer.Bound(), Epsilon).Contains(inner.Bound().Max) {
		return false
	}
	for _, e := range Edges(outer) {
		if crossesInterior(inner, e) {
			return false
		}
	}
	// No boundary of outer passes through inner's interior, so the interior
	// is either entirely inside or entirely outside.
	return ContainsPoint(outer, Centroid(inner))
}

// Intersects reports whether two rings share at least one point. Touching
// boundaries count as intersecting.
func Intersects(a, b orb.Ring) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !boundExpand(a.Bound(), Epsilon).Intersects(b.Bound()) {
		return false
	}
	ea, eb := Edges(a), Edges(b)
	for _, s := range ea {
		for _, t := range eb {
			if SegmentsIntersect(s, t) {
				return true
			}
		}
	}
	// No boundary contact: either one ring is nested in the other or they
	// are disjoint.
	return planar.RingContains(b, a[0]) || planar.RingContains(a, b[0])
}

// Distance returns the minimum distance between the ring (as a filled
// region) and the segment. It is zero when they touch or overlap.
func Distance(r orb.Ring, s Segment) float64 {
	if len(r) == 0 {
		return math.Inf(1)
	}
	if len(r) >= 3 && (CoversPoint(r, s.A) || CoversPoint(r, s.B)) {
		return 0
	}
	best := math.Inf(1)
	for _, e := range Edges(r) {
		d := SegmentDistance(e, s)
		if d < best {
			best = d
		}
		if best == 0 {
			break
		}
	}
	return best
}

// SegmentDistance returns the minimum distance between two segments.
func SegmentDistance(s, t Segment) float64 {
	if SegmentsIntersect(s, t) {
		return 0
	}
	return math.Min(
		math.Min(planar.DistanceFromSegment(t.A, t.B, s.A), planar.DistanceFromSegment(t.A, t.B, s.B)),
		math.Min(planar.DistanceFromSegment(s.A, s.B, t.A), planar.DistanceFromSegment(s.A, s.B, t.B)),
	)
}

// SegmentsIntersect reports whether two closed segments share a point,
// including endpoint contact and collinear overlap.
func SegmentsIntersect(s, t Segment) bool {
	d1 := orient(t.A, t.B, s.A)
	d2 := orient(t.A, t.B, s.B)
	d3 := orient(s.A, s.B, t.A)
	d4 := orient(s.A, s.B, t.B)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && withinBox(t, s.A)) ||
		(d2 == 0 && withinBox(t, s.B)) ||
		(d3 == 0 && withinBox(s, t.A)) ||
		(d4 == 0 && withinBox(s, t.B))
}

// BufferSegment returns the region within distance d of the segment: a
// capsule whose semicircular caps are approximated with quadSegs segments
// per quarter circle. A zero-length segment yields a circle.
func BufferSegment(s Segment, d float64, quadSegs int) orb.Ring {
	if quadSegs < 1 {
		quadSegs = 1
	}
	steps := 2 * quadSegs
	ring := make(orb.Ring, 0, 2*(steps+1)+1)

	l := s.Length()
	var theta float64
	if l > 0 {
		n := s.Normal()
		theta = math.Atan2(n[1], n[0])
	}

	// Cap around A sweeps from +normal through -direction to -normal; the
	// cap around B continues from -normal through +direction back to +normal.
	for i := 0; i <= steps; i++ {
		a := theta + math.Pi*float64(i)/float64(steps)
		ring = append(ring, orb.Point{s.A[0] + d*math.Cos(a), s.A[1] + d*math.Sin(a)})
	}
	for i := 0; i <= steps; i++ {
		a := theta + math.Pi + math.Pi*float64(i)/float64(steps)
		ring = append(ring, orb.Point{s.B[0] + d*math.Cos(a), s.B[1] + d*math.Sin(a)})
	}
	return Close(dedupe(ring))
}

// crossesInterior reports whether part of segment e with positive length
// lies strictly inside the convex ring.
func crossesInterior(convex orb.Ring, e Segment) bool {
	edges := Edges(convex)
	if len(edges) < 3 {
		return false
	}
	sign := 1.0
	if convex.Orientation() == orb.CW {
		sign = -1.0
	}

	tEnter, tExit := 0.0, 1.0
	dir := orb.Point{e.B[0] - e.A[0], e.B[1] - e.A[1]}
	for _, edge := range edges {
		n := inwardNormal(edge, sign)
		num := dot(n, sub(e.A, edge.A))
		den := dot(n, dir)
		if den == 0 {
			if num < 0 {
				return false
			}
			continue
		}
		t := -num / den
		if den > 0 {
			tEnter = math.Max(tEnter, t)
		} else {
			tExit = math.Min(tExit, t)
		}
		if tEnter > tExit {
			return false
		}
	}
	if (tExit-tEnter)*e.Length() <= Epsilon {
		return false
	}

	mid := e.PointAt((tEnter + tExit) / 2)
	for _, edge := range edges {
		if dot(inwardNormal(edge, sign), sub(mid, edge.A)) <= Epsilon {
			return false
		}
	}
	return true
}

func inwardNormal(e Segment, sign float64) orb.Point {
	n := e.Normal()
	return orb.Point{n[0] * sign, n[1] * sign}
}

// orient returns the signed distance of p from the line through a and b,
// snapped to zero inside Epsilon.
func orient(a, b, p orb.Point) float64 {
	l := planar.Distance(a, b)
	if l == 0 {
		return planar.Distance(a, p)
	}
	v := ((b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])) / l
	if math.Abs(v) <= Epsilon {
		return 0
	}
	return v
}

func withinBox(s Segment, p orb.Point) bool {
	return p[0] >= math.Min(s.A[0], s.B[0])-Epsilon && p[0] <= math.Max(s.A[0], s.B[0])+Epsilon &&
		p[1] >= math.Min(s.A[1], s.B[1])-Epsilon && p[1] <= math.Max(s.A[1], s.B[1])+Epsilon
}

func boundExpand(b orb.Bound, d float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] - d, b.Min[1] - d},
		Max: orb.Point{b.Max[0] + d, b.Max[1] + d},
	}
}

func dedupe(r orb.Ring) orb.Ring {
	out := r[:0:0]
	for _, p := range r {
		if len(out) > 0 && planar.Distance(out[len(out)-1], p) <= Epsilon {
			continue
		}
		out = append(out, p)
	}
	return out
}

func dot(a, b orb.Point) float64 { return a[0]*b[0] + a[1]*b[1] }

func sub(a, b orb.Point) orb.Point { return orb.Point{a[0] - b[0], a[1] - b[1]} }
