package compose

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/sites"
	"github.com/talgya/toroid/internal/world"
)

// Alliance groups countries.
type Alliance struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Country belongs to at most one alliance.
type Country struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AllianceID  string `json:"allianceId,omitempty"`
}

// Region belongs to at most one country.
type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CountryID   string `json:"countryId,omitempty"`
}

// Zone is a sub-area of a region.
type Zone struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RegionID    string `json:"regionId,omitempty"`
}

// Politics holds the linked political layers of a world.
type Politics struct {
	Alliances []Alliance `json:"alliances"`
	Countries []Country  `json:"countries"`
	Regions   []Region   `json:"regions"`
	Zones     []Zone     `json:"zones"`
}

// Resolved is a validated composition ready for the pipeline.
type Resolved struct {
	Politics Politics
	Biomes   []biome.Biome
	Features []feature.Feature

	// Skipped lists placeholder ids named by the composition that did not
	// match a placeholder, or matched one already realised.
	Skipped []string
}

// Resolve validates c and links it against the world's placeholders.
// Ids are derived from seed so that a composition resolves identically
// every time.
func (c *Composition) Resolve(seed string, placeholders []sites.Placeholder) (*Resolved, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := &Resolved{Politics: c.link(seed)}

	regionByName := make(map[string]string, len(r.Politics.Regions))
	for _, reg := range r.Politics.Regions {
		regionByName[strings.ToLower(reg.Name)] = reg.ID
	}
	for i, rb := range c.Biomes {
		b, err := convertBiome(rb)
		if err != nil {
			return nil, fmt.Errorf("%w: biome %q: %w", ErrInvalidComposition, rb.Name, err)
		}
		b.ID = world.NewID(seed, "biome", i)
		b.RegionID = regionByName[strings.ToLower(strings.TrimSpace(rb.SuggestedRegionName))]
		r.Biomes = append(r.Biomes, b)
	}

	byID := make(map[string]sites.Placeholder, len(placeholders))
	for _, p := range placeholders {
		byID[p.ID] = p
	}
	used := make(map[string]bool)
	for _, rf := range c.DefinedFeatures {
		p, ok := byID[rf.PlaceholderID]
		if !ok || used[rf.PlaceholderID] {
			slog.Warn("feature for unknown placeholder skipped", "placeholder", rf.PlaceholderID, "name", rf.Name)
			r.Skipped = append(r.Skipped, rf.PlaceholderID)
			continue
		}
		used[rf.PlaceholderID] = true
		r.Features = append(r.Features, feature.Feature{
			ID:              world.NewID(seed, "feature", len(r.Features)),
			Name:            strings.TrimSpace(rf.Name),
			Type:            feature.ParseType(rf.Type),
			Description:     rf.ShortDescription,
			Anchor:          p.Anchor,
			Size:            p.Size,
			PlaceholderType: p.Type.String(),
		})
	}
	return r, nil
}

// link assigns ids and resolves suggested parent names. A layer that names
// no parent is spread round-robin over the parent layer.
func (c *Composition) link(seed string) Politics {
	var pol Politics
	for i, a := range c.Alliances {
		pol.Alliances = append(pol.Alliances, Alliance{
			ID:          world.NewID(seed, "alliance", i),
			Name:        strings.TrimSpace(a.Name),
			Description: a.Description,
		})
	}

	allianceIDs := make([]string, len(pol.Alliances))
	allianceNames := make([]string, len(pol.Alliances))
	for i, a := range pol.Alliances {
		allianceIDs[i], allianceNames[i] = a.ID, a.Name
	}
	for i, ct := range c.Countries {
		pol.Countries = append(pol.Countries, Country{
			ID:          world.NewID(seed, "country", i),
			Name:        strings.TrimSpace(ct.Name),
			Description: ct.Description,
			AllianceID:  parentID(ct.SuggestedAllianceName, i, len(c.Countries), allianceNames, allianceIDs),
		})
	}

	countryIDs := make([]string, len(pol.Countries))
	countryNames := make([]string, len(pol.Countries))
	for i, ct := range pol.Countries {
		countryIDs[i], countryNames[i] = ct.ID, ct.Name
	}
	for i, rg := range c.Regions {
		pol.Regions = append(pol.Regions, Region{
			ID:          world.NewID(seed, "region", i),
			Name:        strings.TrimSpace(rg.Name),
			Description: rg.Description,
			CountryID:   parentID(rg.SuggestedCountryName, i, len(c.Regions), countryNames, countryIDs),
		})
	}

	for i, z := range c.Zones {
		zone := Zone{
			ID:          world.NewID(seed, "zone", i),
			Name:        strings.TrimSpace(z.Name),
			Description: z.Description,
		}
		for _, rg := range pol.Regions {
			if strings.EqualFold(rg.Name, strings.TrimSpace(z.SuggestedRegionName)) {
				zone.RegionID = rg.ID
				break
			}
		}
		if zone.RegionID == "" && len(pol.Regions) > 0 {
			zone.RegionID = pol.Regions[0].ID
		}
		pol.Zones = append(pol.Zones, zone)
	}
	return pol
}

// parentID finds the parent named suggested. Without a suggestion, child i of
// n is assigned round-robin when there is more than one child.
func parentID(suggested string, i, n int, names, ids []string) string {
	suggested = strings.TrimSpace(suggested)
	if suggested != "" {
		for k, name := range names {
			if strings.EqualFold(name, suggested) {
				return ids[k]
			}
		}
		return ""
	}
	if len(ids) > 0 && n > 1 {
		return ids[i%len(ids)]
	}
	return ""
}

// convertBiome maps the string fields of a raw biome onto a Biome without id.
func convertBiome(rb RawBiome) (biome.Biome, error) {
	b := biome.Biome{
		Name:        strings.TrimSpace(rb.Name),
		Type:        biome.ParseType(rb.Type),
		Description: rb.Description,
	}
	var err error
	if !blank(rb.AltitudePreference) {
		if b.Altitude, err = biome.ParseAltitude(rb.AltitudePreference); err != nil {
			return b, err
		}
	}
	if !blank(rb.MoisturePreference) {
		if b.Moisture, err = biome.ParseMoisture(rb.MoisturePreference); err != nil {
			return b, err
		}
	}
	if b.Temperature, err = biome.ParseTemperatures(rb.TemperaturePreference); err != nil {
		return b, err
	}
	return b, nil
}
