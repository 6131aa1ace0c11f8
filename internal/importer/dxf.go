package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/roomfit/internal/geometry"
)

// RoomImport holds the room outline read from a floor plan drawing.
type RoomImport struct {
	Boundary []orb.Point
	Errors   []string
	Warnings []string
}

// segment is a loose drawing edge waiting to be chained into an outline.
type segment struct {
	start orb.Point
	end   orb.Point
}

// minRoomArea is the smallest outline, in square drawing units, accepted as
// a room.
const minRoomArea = 1.0

// ImportRoomDXF reads a floor plan and returns its largest closed outline as
// the room boundary. Outlines come from LWPOLYLINE and CIRCLE entities and
// from LINE and ARC entities chained end to end. Coordinates are kept in
// drawing units without translation so a door drawn on the same plan still
// lines up.
func ImportRoomDXF(path string) RoomImport {
	result := RoomImport{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []orb.Ring
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToRing(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, circleToRing(e, 64))

		case *entity.Arc:
			if pts := arcToPoints(e, 32); len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: orb.Point{e.Start[0], e.Start[1]},
				end:   orb.Point{e.End[0], e.End[1]},
			})
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return geometry.Area(geometry.Close(outlines[i])) > geometry.Area(geometry.Close(outlines[j]))
	})

	largest := outlines[0]
	if area := geometry.Area(geometry.Close(largest)); area < minRoomArea {
		result.Errors = append(result.Errors, fmt.Sprintf("Largest outline is degenerate (area %.4f)", area))
		return result
	}
	if len(outlines) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d closed shapes, using the largest as the room", len(outlines)))
	}

	result.Boundary = []orb.Point(largest)
	return result
}

// lwPolylineToRing converts a LWPOLYLINE to an open ring. Vertices with a
// bulge produce interpolated arc points up to the next vertex.
func lwPolylineToRing(lw *entity.LwPolyline) orb.Ring {
	var ring orb.Ring
	for i, v := range lw.Vertices {
		current := orb.Point{v[0], v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			ring = append(ring, current)
			continue
		}

		n := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgeArcPoints(current, orb.Point{n[0], n[1]}, bulge, 32)
		// The next vertex adds itself.
		ring = append(ring, arc[:len(arc)-1]...)
	}
	return ring
}

// bulgeArcPoints interpolates the arc between two vertices. The DXF bulge is
// the tangent of a quarter of the included angle; negative bulges run
// clockwise.
func bulgeArcPoints(p1, p2 orb.Point, bulge float64, numSegments int) []orb.Point {
	dx, dy := p2[0]-p1[0], p2[1]-p1[1]
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []orb.Point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX, perpY := -dy/chord, dx/chord
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	offset := radius - sagitta
	cx := (p1[0]+p2[0])/2 + perpX*offset
	cy := (p1[1]+p2[1])/2 + perpY*offset

	start := math.Atan2(p1[1]-cy, p1[0]-cx)
	end := math.Atan2(p2[1]-cy, p2[0]-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	}
	if bulge > 0 && end < start {
		end += 2 * math.Pi
	}

	pts := make([]orb.Point, numSegments+1)
	for i := range pts {
		a := start + float64(i)/float64(numSegments)*(end-start)
		pts[i] = orb.Point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

// circleToRing approximates a circle as a regular polygon.
func circleToRing(c *entity.Circle, numSegments int) orb.Ring {
	ring := make(orb.Ring, numSegments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = orb.Point{c.Center[0] + c.Radius*math.Cos(a), c.Center[1] + c.Radius*math.Sin(a)}
	}
	return ring
}

// arcToPoints samples an ARC entity. DXF arcs run counter-clockwise from
// Angle[0] to Angle[1] in degrees.
func arcToPoints(a *entity.Arc, numSegments int) []orb.Point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}

	pts := make([]orb.Point, numSegments+1)
	for i := range pts {
		angle := start + float64(i)/float64(numSegments)*(end-start)
		pts[i] = orb.Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []orb.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// closed outlines. Chains that do not close back on their start are
// dropped.
func chainSegments(segs []segment, tolerance float64) []orb.Ring {
	used := make([]bool, len(segs))
	var rings []orb.Ring

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := orb.Ring{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				var next orb.Point
				switch {
				case pointsClose(tail, s.start, tolerance):
					next = s.end
				case pointsClose(tail, s.end, tolerance):
					next = s.start
				default:
					continue
				}
				chain = append(chain, next)
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) < 4 || !pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			continue
		}
		rings = append(rings, chain[:len(chain)-1])
	}
	return rings
}

func pointsClose(a, b orb.Point, tolerance float64) bool {
	return math.Hypot(a[0]-b[0], a[1]-b[1]) <= tolerance
}
