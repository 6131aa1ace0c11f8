package export

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/roomfit/internal/model"
)

func TestBuildFeatureCollection(t *testing.T) {
	sc := buildTestScenario()
	result := solveTestScenario(t, sc)

	fc, err := BuildFeatureCollection(sc, result, model.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	// room + door line + door zone + one fridge zone + four items
	if len(fc.Features) != 8 {
		t.Fatalf("expected 8 features, got %d", len(fc.Features))
	}

	counts := make(map[string]int)
	for _, f := range fc.Features {
		counts[f.Properties.MustString("kind")]++
	}
	if counts[FeatureRoom] != 1 || counts[FeatureDoor] != 1 || counts[FeatureZone] != 2 || counts[FeatureItem] != 4 {
		t.Errorf("unexpected feature kinds %v", counts)
	}

	room := fc.Features[0]
	if _, ok := room.Geometry.(orb.Polygon); !ok {
		t.Errorf("room should be a polygon, got %T", room.Geometry)
	}
	if room.Properties.MustFloat64("area") != 12e6 {
		t.Errorf("unexpected room area %v", room.Properties["area"])
	}

	fridge := fc.Features[4]
	if fridge.ID != "fridge1" || fridge.Properties.MustString("category") != "fridge" {
		t.Errorf("first item should be the fridge, got %v", fridge.Properties)
	}
	if fc.ExtraMembers["feasible"] != true || fc.ExtraMembers["scenario"] != "kitchen" {
		t.Errorf("unexpected collection members %v", fc.ExtraMembers)
	}
}

func TestBuildFeatureCollection_NoDoor(t *testing.T) {
	sc := buildTestScenario()
	sc.Room.Door = nil
	sc.Items = nil

	fc, err := BuildFeatureCollection(sc, model.Result{Feasible: true, Placements: []model.Placement{}}, model.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("expected only the room, got %d features", len(fc.Features))
	}
}

func TestWriteGeoJSON_RoundTrip(t *testing.T) {
	sc := buildTestScenario()
	sc.Items = append(sc.Items, model.NewItem("shelfHuge", 9000, 300))
	result := solveTestScenario(t, sc)

	var buf bytes.Buffer
	if err := WriteGeoJSON(&buf, sc, result, model.DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatalf("output is not valid GeoJSON: %v", err)
	}
	if fc.ExtraMembers["feasible"] != false {
		t.Errorf("expected infeasible marker, got %v", fc.ExtraMembers["feasible"])
	}
	if msg, _ := fc.ExtraMembers["message"].(string); msg != "cannot place item: shelfHuge" {
		t.Errorf("unexpected message %q", msg)
	}
}
