// Package feature models concrete map features: footprint features anchored
// on the grid and path features such as rivers and roads.
package feature

import (
	"strings"

	"github.com/talgya/toroid/internal/world"
)

// Type is the concrete kind of a feature.
type Type string

const (
	City          Type = "City"
	Town          Type = "Town"
	Village       Type = "Village"
	Forest        Type = "Forest"
	Mountain      Type = "Mountain"
	River         Type = "River"
	Lake          Type = "Lake"
	Ocean         Type = "Ocean"
	Desert        Type = "Desert"
	Island        Type = "Island"
	Cave          Type = "Cave"
	Ruin          Type = "Ruin"
	Tower         Type = "Tower"
	Castle        Type = "Castle"
	Mine          Type = "Mine"
	Port          Type = "Port"
	Bridge        Type = "Bridge"
	Road          Type = "Road"
	Temple        Type = "Temple"
	Monastery     Type = "Monastery"
	Oasis         Type = "Oasis"
	Volcano       Type = "Volcano"
	Swamp         Type = "Swamp"
	Plain         Type = "Plain"
	MinorLandmark Type = "Minor Landmark"
	Other         Type = "Other"
)

// Types lists every feature type.
var Types = []Type{
	City, Town, Village, Forest, Mountain, River, Lake, Ocean, Desert, Island,
	Cave, Ruin, Tower, Castle, Mine, Port, Bridge, Road, Temple, Monastery,
	Oasis, Volcano, Swamp, Plain, MinorLandmark, Other,
}

// ParseType maps a name to a Type, ignoring case. Unknown names become Other.
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return Other
}

// IsSettlement reports whether features of this type are inhabited places.
func (t Type) IsSettlement() bool {
	switch t {
	case City, Town, Village, Port:
		return true
	}
	return false
}

// IsRoadEndpoint reports whether roads may connect features of this type.
func (t Type) IsRoadEndpoint() bool {
	return t == City || t == Town
}

// Point is a position in world space, where a cell spans CellWidth×CellHeight.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CellCenter returns the world-space centre of a cell.
func CellCenter(c world.Cell, cellW, cellH float64) Point {
	return Point{
		X: float64(c.Col)*cellW + cellW/2,
		Y: float64(c.Row)*cellH + cellH/2,
	}
}

// Feature is a footprint feature: an N×N block of cells anchored at its
// top-left cell.
type Feature struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        Type       `json:"type"`
	Description string     `json:"description,omitempty"`
	Anchor      world.Cell `json:"anchor"`
	Size        int        `json:"size"`
	BiomeID     string     `json:"biomeId,omitempty"`

	// PlaceholderType is the generic site type the feature was realised from.
	PlaceholderType string `json:"placeholderType,omitempty"`
}

// Footprint returns the wrapped cell indices the feature covers.
func (f Feature) Footprint(g world.Grid) []int {
	return g.Footprint(f.Anchor, f.Size)
}

// Path is a feature with no anchor: an ordered sequence of world-space points.
type Path struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   Type         `json:"type"` // River or Road
	Points []Point      `json:"points"`
	Cells  []world.Cell `json:"cells"`

	// From and To name the features a road connects.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// NewPath converts a cell sequence into a path of cell centres.
func NewPath(id, name string, typ Type, cells []world.Cell, cellW, cellH float64) Path {
	p := Path{
		ID:     id,
		Name:   name,
		Type:   typ,
		Points: make([]Point, len(cells)),
		Cells:  cells,
	}
	for i, c := range cells {
		p.Points[i] = CellCenter(c, cellW, cellH)
	}
	return p
}
