package importer

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// ─── DXF Helper Tests ──────────────────────────────────────

func TestChainSegments_ClosesSquare(t *testing.T) {
	segs := []segment{
		{orb.Point{0, 0}, orb.Point{10, 0}},
		{orb.Point{10, 10}, orb.Point{0, 10}},
		{orb.Point{10, 10.005}, orb.Point{10, 0}},
		{orb.Point{0, 10}, orb.Point{0, 0}},
	}

	rings := chainSegments(segs, 0.01)
	if len(rings) != 1 {
		t.Fatalf("expected 1 outline, got %d", len(rings))
	}
	if len(rings[0]) != 4 {
		t.Errorf("expected 4 vertices without the closing point, got %v", rings[0])
	}
}

func TestChainSegments_DropsOpenChains(t *testing.T) {
	segs := []segment{
		{orb.Point{0, 0}, orb.Point{10, 0}},
		{orb.Point{10, 0}, orb.Point{10, 10}},
	}
	if rings := chainSegments(segs, 0.01); len(rings) != 0 {
		t.Errorf("open chain should be dropped, got %v", rings)
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	// A bulge of 1 is a half circle.
	pts := bulgeArcPoints(orb.Point{0, 0}, orb.Point{10, 0}, 1, 16)

	if len(pts) != 17 {
		t.Fatalf("expected 17 points, got %d", len(pts))
	}
	if !pointsClose(pts[0], orb.Point{0, 0}, 1e-9) || !pointsClose(pts[16], orb.Point{10, 0}, 1e-9) {
		t.Errorf("arc should run between the vertices: %v .. %v", pts[0], pts[16])
	}
	for _, p := range pts {
		if r := math.Hypot(p[0]-5, p[1]); math.Abs(r-5) > 1e-9 {
			t.Errorf("point %v is not on the radius 5 circle", p)
		}
	}
	if mid := pts[8]; math.Abs(math.Abs(mid[1])-5) > 1e-9 {
		t.Errorf("midpoint should be at the apex, got %v", mid)
	}
}

func TestBulgeArcPoints_DegenerateChord(t *testing.T) {
	if pts := bulgeArcPoints(orb.Point{1, 1}, orb.Point{1, 1}, 0.5, 8); len(pts) != 2 {
		t.Errorf("zero chord should yield its endpoints, got %v", pts)
	}
}

func TestImportRoomDXF_FileNotFound(t *testing.T) {
	r := ImportRoomDXF("/nonexistent/plan.dxf")
	if len(r.Errors) == 0 || r.Boundary != nil {
		t.Errorf("expected open error, got %+v", r)
	}
}
