package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/model"
)

// ErrInvalidScenario is wrapped by every validation failure of a scenario
// file.
var ErrInvalidScenario = errors.New("invalid scenario")

// MaxExtent is the largest absolute coordinate or item dimension accepted.
const MaxExtent = 1e9

// scenarioFile is the on-disk scenario layout. algoToPlace is decoded
// separately to keep the catalog order of its keys.
type scenarioFile struct {
	Name         string          `json:"name,omitempty"`
	Boundary     [][]float64     `json:"boundary"`
	Door         [][]float64     `json:"door"`
	IsOpenInward bool            `json:"isOpenInward"`
	AlgoToPlace  json.RawMessage `json:"algoToPlace"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}

// LoadScenario reads a scenario JSON file. The scenario name defaults to
// the file name without extension.
func LoadScenario(path string) (model.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return model.Scenario{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// DecodeScenario reads a scenario from r.
func DecodeScenario(r io.Reader) (model.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario JSON. Items keep the order
// in which they appear in algoToPlace.
func ParseScenario(data []byte) (model.Scenario, error) {
	var raw scenarioFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	boundary, err := toPoints(raw.Boundary, "boundary")
	if err != nil {
		return model.Scenario{}, err
	}
	if len(boundary) < 3 {
		return model.Scenario{}, invalid("boundary needs at least 3 vertices, got %d", len(boundary))
	}

	door, err := toPoints(raw.Door, "door")
	if err != nil {
		return model.Scenario{}, err
	}

	items, err := parseItems(raw.AlgoToPlace)
	if err != nil {
		return model.Scenario{}, err
	}

	return model.Scenario{
		Name: raw.Name,
		Room: model.Room{
			Boundary:   boundary,
			Door:       door,
			OpenInward: raw.IsOpenInward,
		},
		Items: items,
	}, nil
}

func toPoints(raw [][]float64, field string) ([]orb.Point, error) {
	pts := make([]orb.Point, 0, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return nil, invalid("%s[%d]: expected [x, y], got %d values", field, i, len(p))
		}
		if !finite(p[0]) || !finite(p[1]) {
			return nil, invalid("%s[%d]: coordinates must be finite", field, i)
		}
		if math.Abs(p[0]) > MaxExtent || math.Abs(p[1]) > MaxExtent {
			return nil, invalid("%s[%d]: coordinates exceed %g", field, i, MaxExtent)
		}
		pts = append(pts, orb.Point{p[0], p[1]})
	}
	return pts, nil
}

// parseItems walks the algoToPlace object token by token so the items keep
// their source order.
func parseItems(raw json.RawMessage) ([]model.Item, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []model.Item{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: algoToPlace: %v", ErrInvalidScenario, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, invalid("algoToPlace must be an object of name: [length, width]")
	}

	items := []model.Item{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: algoToPlace: %v", ErrInvalidScenario, err)
		}
		name, _ := tok.(string)
		if name == "" {
			return nil, invalid("algoToPlace: empty item name")
		}
		if seen[name] {
			return nil, invalid("algoToPlace: duplicate item %q", name)
		}
		seen[name] = true

		var dims []float64
		if err := dec.Decode(&dims); err != nil {
			return nil, fmt.Errorf("%w: item %q: %v", ErrInvalidScenario, name, err)
		}
		if len(dims) != 2 {
			return nil, invalid("item %q: expected [length, width], got %d values", name, len(dims))
		}
		if !finite(dims[0]) || !finite(dims[1]) || dims[0] <= 0 || dims[1] <= 0 {
			return nil, invalid("item %q: dimensions must be positive, got %v x %v", name, dims[0], dims[1])
		}
		if dims[0] > MaxExtent || dims[1] > MaxExtent {
			return nil, invalid("item %q: dimensions exceed %g", name, MaxExtent)
		}
		items = append(items, model.NewItem(name, dims[0], dims[1]))
	}
	return items, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalScenario encodes a scenario in the file layout read by
// ParseScenario, keeping item order.
func MarshalScenario(sc model.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if sc.Name != "" {
		name, err := json.Marshal(sc.Name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, `"name":%s,`, name)
	}

	boundary, err := json.Marshal(pointsOrEmpty(sc.Room.Boundary))
	if err != nil {
		return nil, err
	}
	door, err := json.Marshal(pointsOrEmpty(sc.Room.Door))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, `"boundary":%s,"door":%s,"isOpenInward":%t,"algoToPlace":{`, boundary, door, sc.Room.OpenInward)

	for i, it := range sc.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		dims, err := json.Marshal([2]float64{it.Length, it.Width})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%s:%s", key, dims)
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func pointsOrEmpty(pts []orb.Point) []orb.Point {
	if pts == nil {
		return []orb.Point{}
	}
	return pts
}

// SaveScenario writes a scenario file, creating parent directories.
func SaveScenario(path string, sc model.Scenario) error {
	data, err := MarshalScenario(sc)
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}
