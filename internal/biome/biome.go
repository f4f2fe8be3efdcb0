// Package biome models land biomes and partitions a world's land among them.
package biome

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/talgya/toroid/internal/world"
)

// ErrInvalidBiome is wrapped by every structural validation failure.
var ErrInvalidBiome = errors.New("invalid biome")

// Type is the categorical kind of a biome.
type Type string

const (
	Forest    Type = "Forest"
	Desert    Type = "Desert"
	Plains    Type = "Plains"
	Mountains Type = "Mountains"
	Ocean     Type = "Ocean"
	Swamp     Type = "Swamp"
	Tundra    Type = "Tundra"
	Volcanic  Type = "Volcanic"
	Jungle    Type = "Jungle"
	Grassland Type = "Grassland"
	Hills     Type = "Hills"
	Badlands  Type = "Badlands"
	Coastal   Type = "Coastal"
	River     Type = "River"
	Ice       Type = "Ice"
	Taiga     Type = "Taiga"
	Beach     Type = "Beach"
	Other     Type = "Other"
)

// Types lists every biome type.
var Types = []Type{
	Forest, Desert, Plains, Mountains, Ocean, Swamp, Tundra, Volcanic, Jungle,
	Grassland, Hills, Badlands, Coastal, River, Ice, Taiga, Beach, Other,
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

// defaultTemperatures is used when a definition omits its temperature preference.
var defaultTemperatures = map[Type][]world.TemperatureCategory{
	Forest:    {world.Temperate, world.Cold},
	Desert:    {world.Hot, world.Warm},
	Plains:    {world.Temperate},
	Mountains: {world.Cold, world.Temperate},
	Swamp:     {world.Warm, world.Temperate},
	Tundra:    {world.Cold},
	Volcanic:  {world.Hot, world.Warm},
	Jungle:    {world.Hot, world.Warm},
	Grassland: {world.Temperate},
	Hills:     {world.Temperate},
	Badlands:  {world.Warm, world.Hot},
	Coastal:   {world.Temperate, world.Warm},
	Ice:       {world.Freezing},
	Taiga:     {world.Cold},
	Beach:     {world.Warm, world.Temperate},
}

// DefaultTemperatures returns the usual temperature bands of a biome type.
// Nil means any temperature.
func DefaultTemperatures(t Type) []world.TemperatureCategory {
	return defaultTemperatures[t]
}

// AltitudePreference is the altitude band a biome favours.
type AltitudePreference uint8

const (
	AnyAltitude AltitudePreference = iota
	LowAltitude
	MediumAltitude
	HighAltitude
)

var altitudeNames = [...]string{"Any", "Low", "Medium", "High"}

func (p AltitudePreference) String() string {
	if int(p) < len(altitudeNames) {
		return altitudeNames[p]
	}
	return "Unknown"
}

// ParseAltitude maps a preference name, ignoring case.
func ParseAltitude(s string) (AltitudePreference, error) {
	for i, n := range altitudeNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return AltitudePreference(i), nil
		}
	}
	return AnyAltitude, fmt.Errorf("%w: unknown altitude preference %q", ErrInvalidBiome, s)
}

// Matches reports whether a cell band satisfies the preference.
func (p AltitudePreference) Matches(a world.AltitudeCategory) bool {
	switch p {
	case AnyAltitude:
		return true
	case LowAltitude:
		return a == world.LowLand
	case MediumAltitude:
		return a == world.MidLand
	case HighAltitude:
		return a == world.HighLand
	}
	return false
}

// MoisturePreference is the moisture band a biome favours.
type MoisturePreference uint8

const (
	AnyMoisture MoisturePreference = iota
	DryMoisture
	ModerateMoisture
	WetMoisture
)

var moistureNames = [...]string{"Any", "Dry", "Moderate", "Wet"}

func (p MoisturePreference) String() string {
	if int(p) < len(moistureNames) {
		return moistureNames[p]
	}
	return "Unknown"
}

// ParseMoisture maps a preference name, ignoring case.
func ParseMoisture(s string) (MoisturePreference, error) {
	for i, n := range moistureNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return MoisturePreference(i), nil
		}
	}
	return AnyMoisture, fmt.Errorf("%w: unknown moisture preference %q", ErrInvalidBiome, s)
}

// Matches reports whether a cell band satisfies the preference.
func (p MoisturePreference) Matches(m world.MoistureCategory) bool {
	if p == AnyMoisture {
		return true
	}
	return world.MoistureCategory(p-1) == m
}

// ParseTemperatures maps a comma or slash separated list of band names.
// "Any" yields every band. An empty string yields nil, leaving the choice to
// the biome type's defaults.
func ParseTemperatures(s string) ([]world.TemperatureCategory, error) {
	var out []world.TemperatureCategory
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' || r == '|' }) {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "any") {
			return slices.Clone(world.TemperatureBands[:]), nil
		}
		found := false
		for _, t := range world.TemperatureBands {
			if strings.EqualFold(part, t.String()) {
				out = append(out, t)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown temperature %q", ErrInvalidBiome, part)
		}
	}
	return out, nil
}

// Biome is a land type with environmental preferences that claims territory
// during assignment.
type Biome struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Type        Type                        `json:"type"`
	Description string                      `json:"description,omitempty"`
	Altitude    AltitudePreference          `json:"altitude"`
	Moisture    MoisturePreference          `json:"moisture"`
	Temperature []world.TemperatureCategory `json:"temperature,omitempty"` // Empty means the type's defaults
	RegionID    string                      `json:"regionId,omitempty"`

	// Seed is the cell the biome grew from, nil until assignment places it.
	Seed *world.Cell `json:"seed,omitempty"`
}

// Fixed ids of the biomes owned by the generator.
const (
	OceanID = "procedural_ocean_biome"
	RiverID = "procedural_river_biome"
)

// NewOcean returns the implicit biome pre-assigned to every water cell.
func NewOcean() Biome {
	return Biome{
		ID:          OceanID,
		Name:        "The World Ocean",
		Type:        Ocean,
		Description: "Vast and deep, the world's oceans connect all lands.",
		Temperature: []world.TemperatureCategory{world.Cold, world.Temperate, world.Warm},
	}
}

// NewRiver returns the biome carved rivers are marked with.
func NewRiver() Biome {
	return Biome{
		ID:          RiverID,
		Name:        "Rivers and Streams",
		Type:        River,
		Description: "Flowing waterways that carve through the land, bringing life and sustenance.",
		Altitude:    LowAltitude,
		Moisture:    WetMoisture,
		Temperature: []world.TemperatureCategory{world.Cold, world.Temperate, world.Warm, world.Hot},
	}
}

// Validate checks a land biome definition before it is used.
func (b Biome) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidBiome)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: biome %s has no name", ErrInvalidBiome, b.ID)
	}
	if b.ID == OceanID || b.ID == RiverID {
		return fmt.Errorf("%w: id %s is reserved", ErrInvalidBiome, b.ID)
	}
	if b.Altitude > HighAltitude {
		return fmt.Errorf("%w: biome %s altitude preference %d", ErrInvalidBiome, b.Name, b.Altitude)
	}
	if b.Moisture > WetMoisture {
		return fmt.Errorf("%w: biome %s moisture preference %d", ErrInvalidBiome, b.Name, b.Moisture)
	}
	for _, t := range b.Temperature {
		if t > world.Hot {
			return fmt.Errorf("%w: biome %s temperature %d", ErrInvalidBiome, b.Name, t)
		}
	}
	return nil
}

// PrefersTemperature reports whether t is in the preferred set.
func (b Biome) PrefersTemperature(t world.TemperatureCategory) bool {
	if len(b.Temperature) == 0 {
		return true
	}
	for _, p := range b.Temperature {
		if p == t {
			return true
		}
	}
	return false
}
