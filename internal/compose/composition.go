// Package compose is the boundary with the external naming step. It turns a
// composition (political layers, biome definitions and named features for
// placeholder sites) into validated biomes and features.
package compose

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidComposition is wrapped by every parse and validation failure.
var ErrInvalidComposition = errors.New("invalid composition")

// RawAlliance is an alliance as supplied by the composer.
type RawAlliance struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RawCountry is a country, optionally naming its alliance.
type RawCountry struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	SuggestedAllianceName string `json:"suggested_alliance_name,omitempty"`
}

// RawRegion is a cultural region, optionally naming its country.
type RawRegion struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	SuggestedCountryName string `json:"suggested_country_name,omitempty"`
}

// RawZone is a sub-area of a region.
type RawZone struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	SuggestedRegionName string `json:"suggested_region_name"`
}

// RawBiome is a land biome definition with string-typed preferences.
type RawBiome struct {
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	Description           string `json:"description"`
	AltitudePreference    string `json:"altitude_preference"`
	MoisturePreference    string `json:"moisture_preference"`
	TemperaturePreference string `json:"temperature_preference,omitempty"`
	SuggestedRegionName   string `json:"suggested_region_name,omitempty"`
}

// RawFeature names the placeholder site it realises.
type RawFeature struct {
	PlaceholderID    string `json:"placeholder_id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	ShortDescription string `json:"short_description"`
}

// Composition is everything the naming step supplies for one world.
type Composition struct {
	Alliances       []RawAlliance `json:"alliances"`
	Countries       []RawCountry  `json:"countries"`
	Regions         []RawRegion   `json:"regions"`
	Zones           []RawZone     `json:"zones"`
	Biomes          []RawBiome    `json:"biomes"`
	DefinedFeatures []RawFeature  `json:"defined_features"`
}

var (
	fenceRe         = regexp.MustCompile("(?s)^```\\w*\\s*\\n?(.*?)\\n?\\s*```$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse decodes a composition from free text. Markdown code fences, prose
// around the outermost object and trailing commas are tolerated.
func Parse(text []byte) (*Composition, error) {
	s := strings.TrimSpace(string(text))
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidComposition)
	}
	s = s[start : end+1]

	var c Composition
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		repaired := trailingCommaRe.ReplaceAllString(s, "$1")
		if err2 := json.Unmarshal([]byte(repaired), &c); err2 != nil {
			return nil, fmt.Errorf("%w: parse composition: %w", ErrInvalidComposition, err)
		}
	}
	return &c, nil
}

// Validate checks names and preferences. All problems are reported together.
func (c *Composition) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidComposition}, args...)...))
	}

	for i, a := range c.Alliances {
		if blank(a.Name) {
			fail("alliance %d has no name", i)
		}
	}
	for i, ct := range c.Countries {
		if blank(ct.Name) {
			fail("country %d has no name", i)
		}
	}
	for i, r := range c.Regions {
		if blank(r.Name) {
			fail("region %d has no name", i)
		}
	}
	for i, z := range c.Zones {
		if blank(z.Name) {
			fail("zone %d has no name", i)
		}
	}

	seen := make(map[string]bool)
	for i, b := range c.Biomes {
		if blank(b.Name) {
			fail("biome %d has no name", i)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(b.Name))
		if seen[key] {
			fail("duplicate biome name %q", b.Name)
		}
		seen[key] = true
		if _, err := convertBiome(b); err != nil {
			errs = append(errs, fmt.Errorf("%w: biome %q: %w", ErrInvalidComposition, b.Name, err))
		}
	}

	for i, f := range c.DefinedFeatures {
		if blank(f.PlaceholderID) {
			fail("feature %d has no placeholder id", i)
		}
		if blank(f.Name) {
			fail("feature %d has no name", i)
		}
	}
	return errors.Join(errs...)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
