package compose

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/sites"
	"github.com/talgya/toroid/internal/world"
)

// catalogueEntry is a ready-made biome definition in composition form.
type catalogueEntry struct {
	typ         biome.Type
	altitude    string
	moisture    string
	temperature string
	noun        string
}

// catalogue is ordered by how commonly each biome should appear when the
// placeholders give no hint.
var catalogue = []catalogueEntry{
	{biome.Plains, "Low", "Moderate", "", "Plains"},
	{biome.Forest, "Low", "Wet", "", "Woods"},
	{biome.Hills, "Medium", "Moderate", "", "Hills"},
	{biome.Mountains, "High", "Any", "Cold, Temperate", "Peaks"},
	{biome.Desert, "Low", "Dry", "", "Wastes"},
	{biome.Grassland, "Low", "Moderate", "Warm, Temperate", "Steppe"},
	{biome.Taiga, "Any", "Moderate", "", "Pinewood"},
	{biome.Tundra, "Any", "Dry", "", "Barrens"},
	{biome.Jungle, "Low", "Wet", "", "Jungle"},
	{biome.Swamp, "Low", "Wet", "Warm", "Mire"},
	{biome.Badlands, "Medium", "Dry", "", "Badlands"},
	{biome.Volcanic, "High", "Dry", "Hot", "Ashlands"},
	{biome.Ice, "Any", "Any", "Freezing", "Icefield"},
	{biome.Beach, "Low", "Any", "Any", "Strand"},
}

// featureChoices lists the concrete feature types a site type may become.
var featureChoices = map[sites.Type][]feature.Type{
	sites.MajorSettlement:   {feature.City},
	sites.MediumSettlement:  {feature.Town},
	sites.SmallSettlement:   {feature.Village},
	sites.CoastalSettlement: {feature.Port},
	sites.Fortification:     {feature.Castle, feature.Tower},
	sites.SacredSite:        {feature.Temple, feature.Monastery, feature.Ruin},
	sites.ResourceNode:      {feature.Mine, feature.Oasis},
	sites.PointOfInterest:   {feature.Ruin, feature.Cave, feature.Tower, feature.MinorLandmark},
	sites.RiverCrossing:     {feature.Bridge},
	sites.VolcanicVent:      {feature.Volcano},
}

// Procedural composes a world without an external service. Biomes follow
// the climates the placeholder sites were placed in; names are drawn from
// syllable tables.
type Procedural struct {
	MinBiomes int
	Alliances int
	Countries int
	Regions   int
}

// NewProcedural returns a composer with the default layer sizes.
func NewProcedural() Procedural {
	return Procedural{MinBiomes: 6, Alliances: 2, Countries: 4, Regions: 6}
}

// Compose is deterministic in req.
func (p Procedural) Compose(ctx context.Context, req Request) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := world.NewRand(req.Seed, world.SaltCompose)
	names := newNamer(rng)
	c := &Composition{}

	for range p.Alliances {
		c.Alliances = append(c.Alliances, RawAlliance{
			Name:        "The " + names.next() + " Pact",
			Description: "An old compact of neighbouring realms.",
		})
	}
	for i := range p.Countries {
		ct := RawCountry{Name: "Kingdom of " + names.next()}
		if len(c.Alliances) > 0 {
			ct.SuggestedAllianceName = c.Alliances[i%len(c.Alliances)].Name
		}
		c.Countries = append(c.Countries, ct)
	}
	for i := range p.Regions {
		rg := RawRegion{Name: names.next() + " March"}
		if len(c.Countries) > 0 {
			rg.SuggestedCountryName = c.Countries[i%len(c.Countries)].Name
		}
		c.Regions = append(c.Regions, rg)
		c.Zones = append(c.Zones, RawZone{
			Name:                names.next() + " Reach",
			SuggestedRegionName: rg.Name,
		})
	}

	for i, e := range p.pickBiomes(req.Placeholders) {
		b := RawBiome{
			Name:                  names.next() + " " + e.noun,
			Type:                  string(e.typ),
			Description:           fmt.Sprintf("%s lands.", strings.ToLower(string(e.typ))),
			AltitudePreference:    e.altitude,
			MoisturePreference:    e.moisture,
			TemperaturePreference: e.temperature,
		}
		if len(c.Regions) > 0 {
			b.SuggestedRegionName = c.Regions[i%len(c.Regions)].Name
		}
		c.Biomes = append(c.Biomes, b)
	}

	for _, ph := range req.Placeholders {
		c.DefinedFeatures = append(c.DefinedFeatures, realise(ph, names, rng))
	}
	return c, nil
}

// pickBiomes returns catalogue entries for every biome type guessed at a
// placeholder, most frequent first, topped up from the catalogue to MinBiomes.
func (p Procedural) pickBiomes(placeholders []sites.Placeholder) []catalogueEntry {
	tally := make(map[biome.Type]int)
	for _, ph := range placeholders {
		tally[biome.ParseType(ph.Context.BiomeName)]++
	}
	var guessed []catalogueEntry
	for _, e := range catalogue {
		if tally[e.typ] > 0 {
			guessed = append(guessed, e)
		}
	}
	slices.SortStableFunc(guessed, func(a, b catalogueEntry) int {
		return cmp.Compare(tally[b.typ], tally[a.typ])
	})
	for _, e := range catalogue {
		if len(guessed) >= p.MinBiomes {
			break
		}
		if tally[e.typ] == 0 {
			guessed = append(guessed, e)
		}
	}
	return guessed
}

func realise(ph sites.Placeholder, names *namer, rng *rand.Rand) RawFeature {
	choices := featureChoices[ph.Type]
	typ := feature.Other
	if len(choices) > 0 {
		typ = choices[rng.IntN(len(choices))]
	}
	name := names.next()
	if !typ.IsSettlement() {
		name += " " + string(typ)
	}
	return RawFeature{
		PlaceholderID:    ph.ID,
		Name:             name,
		Type:             string(typ),
		ShortDescription: fmt.Sprintf("A %s in %s country.", strings.ToLower(string(typ)), ph.Context.BiomeName),
	}
}
