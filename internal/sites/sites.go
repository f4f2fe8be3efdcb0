// Package sites reserves footprints for features that an external naming step
// will later turn into concrete cities, temples, mines and the like.
package sites

import (
	"fmt"
	"strings"

	"github.com/talgya/toroid/internal/world"
)

// Type is a generic site type, chosen before a concrete feature type exists.
type Type uint8

const (
	MajorSettlement Type = iota
	MediumSettlement
	SmallSettlement
	CoastalSettlement
	Fortification
	SacredSite
	ResourceNode
	PointOfInterest
	RiverCrossing
	VolcanicVent
	numTypes
)

type rule int

const (
	landOnly rule = iota
	coastOnly
	volcanicOnly
)

// siteTable holds the footprint size and suitability rule of each site type.
var siteTable = [numTypes]struct {
	name string
	size int
	rule rule
}{
	MajorSettlement:   {"Major Settlement Site", 3, landOnly},
	MediumSettlement:  {"Medium Settlement Site", 2, landOnly},
	SmallSettlement:   {"Small Settlement Site", 1, landOnly},
	CoastalSettlement: {"Coastal Settlement Site", 2, coastOnly},
	Fortification:     {"Fortification Site", 2, landOnly},
	SacredSite:        {"Sacred Site", 1, landOnly},
	ResourceNode:      {"Resource Node Site", 1, landOnly},
	PointOfInterest:   {"Point of Interest Site", 1, landOnly},
	RiverCrossing:     {"River Crossing Site", 1, landOnly},
	VolcanicVent:      {"Volcanic Vent Site", 1, volcanicOnly},
}

func (t Type) String() string {
	if t < numTypes {
		return siteTable[t].name
	}
	return "Unknown Site"
}

// Size returns the footprint edge length in cells.
func (t Type) Size() int {
	if t < numTypes {
		return siteTable[t].size
	}
	return 1
}

// ParseType maps a site type name, ignoring case.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	for t := Type(0); t < numTypes; t++ {
		if strings.EqualFold(s, siteTable[t].name) {
			return t, true
		}
	}
	return 0, false
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(b []byte) error {
	v, ok := ParseType(string(b))
	if !ok {
		return fmt.Errorf("unknown site type %q", b)
	}
	*t = v
	return nil
}

// Suitable reports whether cell i of ter can anchor a site of this type.
func (t Type) Suitable(ter *world.Terrain, i int) bool {
	switch siteTable[t].rule {
	case coastOnly:
		return ter.IsCoastal(i)
	case volcanicOnly:
		// Unreachable unless ClimateConfig.HighLandChill leaves equatorial
		// HighLand at Hot; the default chill caps it at Warm.
		return ter.Temperature[i] == world.Hot && ter.Altitude[i] == world.HighLand
	default:
		return !ter.Water[i]
	}
}

// Context is the environment of a site captured when it was placed.
// It is never re-derived afterwards.
type Context struct {
	Altitude    world.AltitudeCategory    `json:"altitude"`
	Temperature world.TemperatureCategory `json:"temperature"`
	Moisture    world.MoistureCategory    `json:"moisture"`
	InWater     bool                      `json:"inWater"`
	Coastal     bool                      `json:"coastal"`
	BiomeName   string                    `json:"biomeName,omitempty"`
}

// Placeholder is a reserved footprint awaiting a concrete feature.
type Placeholder struct {
	ID      string     `json:"id"`
	Type    Type       `json:"type"`
	Anchor  world.Cell `json:"anchor"`
	Size    int        `json:"size"`
	Context Context    `json:"context"`
}
