package export

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/model"
)

// Feature kinds written to the "kind" property.
const (
	FeatureRoom = "room"
	FeatureDoor = "door"
	FeatureZone = "zone"
	FeatureItem = "item"
)

// BuildFeatureCollection describes a result as planar GeoJSON in room
// units: the room polygon, the door line, each forbidden zone and each
// placed item.
func BuildFeatureCollection(scenario model.Scenario, result model.Result, settings model.Settings) (*geojson.FeatureCollection, error) {
	result, err := bindResult(scenario, result)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"feasible": result.Feasible,
	}
	if scenario.Name != "" {
		fc.ExtraMembers["scenario"] = scenario.Name
	}
	if !result.Feasible {
		fc.ExtraMembers["message"] = result.Message
	}

	room := geojson.NewFeature(orb.Polygon{scenario.Room.Ring()})
	room.Properties["kind"] = FeatureRoom
	room.Properties["area"] = scenario.Room.Area()
	fc.Append(room)

	if door, ok := scenario.Room.DoorSegment(); ok {
		f := geojson.NewFeature(door.LineString())
		f.Properties["kind"] = FeatureDoor
		f.Properties["openInward"] = scenario.Room.OpenInward
		fc.Append(f)
	}

	for _, z := range engine.Zones(scenario.Room, result.Placements, settings) {
		f := geojson.NewFeature(orb.Polygon{z.Polygon})
		f.Properties["kind"] = FeatureZone
		f.Properties["zone"] = string(z.Kind)
		if z.Source != "" {
			f.Properties["source"] = z.Source
		}
		fc.Append(f)
	}

	for i, p := range result.Placements {
		f := geojson.NewFeature(orb.Polygon{p.Rect()})
		f.ID = p.Item.Name
		f.Properties["kind"] = FeatureItem
		f.Properties["item"] = p.Item.Name
		f.Properties["category"] = p.Item.Category.String()
		f.Properties["length"] = p.Item.Length
		f.Properties["width"] = p.Item.Width
		f.Properties["rotation"] = int(p.Rotation)
		f.Properties["center"] = []float64{p.Center[0], p.Center[1]}
		f.Properties["seq"] = i + 1
		fc.Append(f)
	}
	return fc, nil
}

// WriteGeoJSON writes the feature collection of a result to w.
func WriteGeoJSON(w io.Writer, scenario model.Scenario, result model.Result, settings model.Settings) error {
	fc, err := BuildFeatureCollection(scenario, result, settings)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing GeoJSON: %w", err)
	}
	return nil
}
