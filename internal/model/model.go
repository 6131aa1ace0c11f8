package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/geometry"
)

// Category classifies an item by the placement rules it is subject to.
type Category int

const (
	CategoryFridge    Category = iota // Has a door-swing clearance zone
	CategoryIceMaker                  // Placed right after fridges
	CategoryShelf                     // Floor shelving
	CategoryOverShelf                 // Shelving mounted over other fixtures
	CategoryUnknown                   // Anything without a recognised prefix
)

func (c Category) String() string {
	switch c {
	case CategoryFridge:
		return "fridge"
	case CategoryIceMaker:
		return "iceMaker"
	case CategoryShelf:
		return "shelf"
	case CategoryOverShelf:
		return "overShelf"
	default:
		return "unknown"
	}
}

// Priority returns the placement rank of the category. Lower ranks are
// placed first.
func (c Category) Priority() int {
	switch c {
	case CategoryFridge:
		return 0
	case CategoryIceMaker:
		return 1
	case CategoryShelf:
		return 2
	case CategoryOverShelf:
		return 3
	default:
		return 4
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name. Unrecognised names map to
// CategoryUnknown.
func (c *Category) UnmarshalText(text []byte) error {
	*c = CategoryFromName(string(text))
	return nil
}

// CategoryFromName derives the category from the item name prefix.
// "overShelf" is checked before "shelf" so it is never shadowed.
func CategoryFromName(name string) Category {
	switch {
	case strings.HasPrefix(name, "fridge"):
		return CategoryFridge
	case strings.HasPrefix(name, "iceMaker"):
		return CategoryIceMaker
	case strings.HasPrefix(name, "overShelf"):
		return CategoryOverShelf
	case strings.HasPrefix(name, "shelf"):
		return CategoryShelf
	default:
		return CategoryUnknown
	}
}

// Item is an appliance to place. Length runs along x at rotation 0.
type Item struct {
	Name     string   `json:"name"`
	Length   float64  `json:"length"`
	Width    float64  `json:"width"`
	Category Category `json:"category"`
}

func NewItem(name string, length, width float64) Item {
	return Item{
		Name:     name,
		Length:   length,
		Width:    width,
		Category: CategoryFromName(name),
	}
}

// Area returns length x width.
func (it Item) Area() float64 {
	return it.Length * it.Width
}

// Rotation is the orientation of a placed item in degrees.
type Rotation int

const (
	Rotation0  Rotation = 0  // Length along x, width along y
	Rotation90 Rotation = 90 // Width along x, length along y
)

// Rotations lists the orientations tried for every candidate position.
var Rotations = []Rotation{Rotation0, Rotation90}

// Extent returns the x and y extents of an item placed with rotation r.
func (r Rotation) Extent(it Item) (x, y float64) {
	if r == Rotation90 {
		return it.Width, it.Length
	}
	return it.Length, it.Width
}

// Room is the polygon items are placed into, with an optional door.
type Room struct {
	Boundary   []orb.Point `json:"boundary"`
	Door       []orb.Point `json:"door"`
	OpenInward bool        `json:"isOpenInward"`
}

// Ring returns the closed boundary ring.
func (r Room) Ring() orb.Ring {
	return geometry.Close(orb.Ring(r.Boundary))
}

// Area returns the floor area enclosed by the boundary.
func (r Room) Area() float64 {
	return geometry.Area(r.Ring())
}

// Walls returns one segment per consecutive vertex pair, including the
// segment from the last vertex back to the first.
func (r Room) Walls() []geometry.Segment {
	n := len(r.Boundary)
	if n < 2 {
		return nil
	}
	walls := make([]geometry.Segment, 0, n)
	for i := 0; i < n; i++ {
		walls = append(walls, geometry.Segment{A: r.Boundary[i], B: r.Boundary[(i+1)%n]})
	}
	return walls
}

// DoorSegment returns the door as a segment from its first two points.
// It reports false when the door is absent or has zero width.
func (r Room) DoorSegment() (geometry.Segment, bool) {
	if len(r.Door) < 2 {
		return geometry.Segment{}, false
	}
	s := geometry.Segment{A: r.Door[0], B: r.Door[1]}
	if s.Length() == 0 {
		return geometry.Segment{}, false
	}
	return s, true
}

// Scenario is a room plus the catalog of items to place into it.
// Items keep the order of the source catalog.
type Scenario struct {
	Name  string `json:"name,omitempty"`
	Room  Room   `json:"room"`
	Items []Item `json:"items"`
}

// Item looks up a catalog item by name.
func (s Scenario) Item(name string) (Item, bool) {
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// ZoneKind identifies where a forbidden zone comes from.
type ZoneKind string

const (
	ZoneDoor   ZoneKind = "door"
	ZoneFridge ZoneKind = "fridge"
)

// ForbiddenZone is a region no newly placed item may touch.
type ForbiddenZone struct {
	Kind    ZoneKind `json:"kind"`
	Source  string   `json:"source,omitempty"` // Item name for fridge zones
	Polygon orb.Ring `json:"polygon"`
}

// Placement is the committed pose of one item.
type Placement struct {
	Item     Item
	Center   orb.Point
	Rotation Rotation
}

// Extent returns the placed x and y extents.
func (p Placement) Extent() (x, y float64) {
	return p.Rotation.Extent(p.Item)
}

// Rect returns the occupied rectangle.
func (p Placement) Rect() orb.Ring {
	x, y := p.Extent()
	return geometry.RectRing(p.Center, x, y)
}

type placementJSON struct {
	Item     string    `json:"item"`
	Center   orb.Point `json:"center"`
	Rotation Rotation  `json:"rotation"`
}

// MarshalJSON encodes the placement as {item, center, rotation} where item
// is the item name.
func (p Placement) MarshalJSON() ([]byte, error) {
	return json.Marshal(placementJSON{Item: p.Item.Name, Center: p.Center, Rotation: p.Rotation})
}

// UnmarshalJSON decodes a placement. Only the item name is recoverable;
// use Result.Bind to restore dimensions from the scenario catalog.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var raw placementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Rotation != Rotation0 && raw.Rotation != Rotation90 {
		return fmt.Errorf("placement %q: unsupported rotation %d", raw.Item, raw.Rotation)
	}
	p.Item = Item{Name: raw.Item, Category: CategoryFromName(raw.Item)}
	p.Center = raw.Center
	p.Rotation = raw.Rotation
	return nil
}

// Result is the outcome of one solve.
type Result struct {
	Feasible   bool        `json:"feasible"`
	Placements []Placement `json:"placements"`
	Message    string      `json:"message,omitempty"`    // Set only when infeasible
	FailedItem string      `json:"failedItem,omitempty"` // First item with no valid position
}

// Bind replaces each placement's item with the full catalog entry of the
// same name. It fails if a placed item is missing from the catalog.
func (r Result) Bind(items []Item) (Result, error) {
	byName := make(map[string]Item, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}
	bound := r
	bound.Placements = make([]Placement, len(r.Placements))
	for i, p := range r.Placements {
		it, ok := byName[p.Item.Name]
		if !ok {
			return Result{}, fmt.Errorf("placement %d: item %q not in catalog", i, p.Item.Name)
		}
		p.Item = it
		bound.Placements[i] = p
	}
	return bound, nil
}

// PlacedArea returns the total footprint area of all placements.
func (r Result) PlacedArea() float64 {
	var total float64
	for _, p := range r.Placements {
		total += p.Item.Area()
	}
	return total
}

// NewRunID returns a short random identifier for a solve run.
func NewRunID() string {
	return uuid.New().String()[:8]
}
