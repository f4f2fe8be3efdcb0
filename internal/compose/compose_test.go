package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/sites"
	"github.com/talgya/toroid/internal/world"
)

const sample = `{
  "alliances": [{"name": "Northern Compact", "description": "cold friends"}],
  "countries": [
    {"name": "Vell", "suggested_alliance_name": "northern compact"},
    {"name": "Orm"}
  ],
  "regions": [
    {"name": "Highmoor", "suggested_country_name": "Vell"},
    {"name": "Saltflat", "suggested_country_name": "Nowhere"}
  ],
  "zones": [{"name": "The Gap", "suggested_region_name": "Saltflat"}, {"name": "Lost", "suggested_region_name": "?"}],
  "biomes": [
    {"name": "Greywood", "type": "forest", "altitude_preference": "low", "moisture_preference": "WET",
     "temperature_preference": "", "suggested_region_name": "highmoor"},
    {"name": "Dunes", "type": "sandy", "altitude_preference": "Any", "moisture_preference": "Dry",
     "temperature_preference": "Hot/Warm"}
  ],
  "defined_features": [
    {"placeholder_id": "p1", "name": "Ironford", "type": "town", "short_description": "a town"},
    {"placeholder_id": "missing", "name": "Ghost", "type": "Ruin"},
    {"placeholder_id": "p1", "name": "Twice", "type": "City"},
    {"placeholder_id": "p2", "name": "Odd Thing", "type": "Spaceport"}
  ]
}`

func testPlaceholders() []sites.Placeholder {
	return []sites.Placeholder{
		{ID: "p1", Type: sites.MediumSettlement, Anchor: world.Cell{Row: 3, Col: 4}, Size: 2},
		{ID: "p2", Type: sites.PointOfInterest, Anchor: world.Cell{Row: 9, Col: 1}, Size: 1},
	}
}

func TestParseTolerance(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain", sample},
		{"fenced", "```json\n" + sample + "\n```"},
		{"prose around", "Here is your world:\n" + sample + "\nEnjoy!"},
		{"trailing commas", `{"biomes": [{"name": "A", "type": "Plains",},], "alliances": [],}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.text))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(c.Biomes) == 0 {
				t.Fatal("no biomes decoded")
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, text := range []string{"", "no json here", "{ not json"} {
		if _, err := Parse([]byte(text)); !errors.Is(err, ErrInvalidComposition) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidComposition", text, err)
		}
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	c := &Composition{
		Alliances: []RawAlliance{{Name: " "}},
		Biomes: []RawBiome{
			{Name: "Fen", AltitudePreference: "sideways"},
			{Name: "fen"},
			{Name: "Cold", TemperaturePreference: "Chilly"},
		},
		DefinedFeatures: []RawFeature{{Name: "x"}},
	}
	err := c.Validate()
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("Validate = %v", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 5 {
		t.Fatalf("expected 5 problems, got %v", err)
	}
}

func TestResolveLinksLayers(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.Resolve("seed", testPlaceholders())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	pol := r.Politics

	if pol.Countries[0].AllianceID != pol.Alliances[0].ID {
		t.Error("country did not link to its named alliance")
	}
	if pol.Countries[1].AllianceID != pol.Alliances[0].ID {
		t.Error("country without a suggestion should fall back round-robin")
	}
	if pol.Regions[0].CountryID != pol.Countries[0].ID {
		t.Error("region did not link to its named country")
	}
	if pol.Regions[1].CountryID != "" {
		t.Error("unknown country name should leave the region unlinked")
	}
	if pol.Zones[0].RegionID != pol.Regions[1].ID {
		t.Error("zone did not link to its named region")
	}
	if pol.Zones[1].RegionID != pol.Regions[0].ID {
		t.Error("unmatched zone should fall back to the first region")
	}

	if len(r.Biomes) != 2 {
		t.Fatalf("got %d biomes", len(r.Biomes))
	}
	wood, dunes := r.Biomes[0], r.Biomes[1]
	if wood.Type != biome.Forest || wood.Altitude != biome.LowAltitude || wood.Moisture != biome.WetMoisture {
		t.Errorf("Greywood converted to %+v", wood)
	}
	if wood.RegionID != pol.Regions[0].ID {
		t.Error("biome did not link to its region")
	}
	if wood.Temperature != nil {
		t.Error("empty temperature should be left for type defaults")
	}
	if dunes.Type != biome.Other {
		t.Errorf("unknown type mapped to %s", dunes.Type)
	}
	if !slices.Equal(dunes.Temperature, []world.TemperatureCategory{world.Hot, world.Warm}) {
		t.Errorf("temperatures = %v", dunes.Temperature)
	}
	for _, b := range r.Biomes {
		if err := b.Validate(); err != nil {
			t.Errorf("resolved biome invalid: %v", err)
		}
	}
}

func TestResolveRealisesFeatures(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.Resolve("seed", testPlaceholders())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(r.Features))
	}
	town := r.Features[0]
	if town.Name != "Ironford" || town.Type != feature.Town || town.Size != 2 || town.Anchor != (world.Cell{Row: 3, Col: 4}) {
		t.Errorf("town realised as %+v", town)
	}
	if town.PlaceholderType != sites.MediumSettlement.String() {
		t.Errorf("PlaceholderType = %q", town.PlaceholderType)
	}
	if r.Features[1].Type != feature.Other {
		t.Errorf("unknown feature type mapped to %s", r.Features[1].Type)
	}
	if !slices.Equal(r.Skipped, []string{"missing", "p1"}) {
		t.Errorf("Skipped = %v", r.Skipped)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	c, _ := Parse([]byte(sample))
	a, err := c.Resolve("seed", testPlaceholders())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Resolve("seed", testPlaceholders())
	if a.Biomes[0].ID != b.Biomes[0].ID || a.Features[0].ID != b.Features[0].ID {
		t.Fatal("ids differ between identical resolves")
	}
	other, _ := c.Resolve("other", testPlaceholders())
	if other.Biomes[0].ID == a.Biomes[0].ID {
		t.Fatal("ids do not depend on the seed")
	}
}

func TestRoundRobinLinking(t *testing.T) {
	c := &Composition{
		Alliances: []RawAlliance{{Name: "A"}, {Name: "B"}},
		Countries: []RawCountry{{Name: "C1"}, {Name: "C2"}, {Name: "C3"}},
	}
	r, err := c.Resolve("s", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{r.Politics.Alliances[0].ID, r.Politics.Alliances[1].ID, r.Politics.Alliances[0].ID}
	for i, ct := range r.Politics.Countries {
		if ct.AllianceID != want[i] {
			t.Errorf("country %d alliance = %s, want %s", i, ct.AllianceID, want[i])
		}
	}
}

func TestProceduralComposer(t *testing.T) {
	ph := []sites.Placeholder{
		{ID: "a", Type: sites.MajorSettlement, Size: 3, Context: sites.Context{BiomeName: "Desert"}},
		{ID: "b", Type: sites.SacredSite, Size: 1, Context: sites.Context{BiomeName: "Desert"}},
		{ID: "c", Type: sites.VolcanicVent, Size: 1, Context: sites.Context{BiomeName: "Volcanic"}},
	}
	req := Request{Seed: "proc", Placeholders: ph}
	p := NewProcedural()

	c1, err := p.Compose(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := p.Compose(context.Background(), req)
	if c1.Biomes[0].Name != c2.Biomes[0].Name || c1.DefinedFeatures[2].Name != c2.DefinedFeatures[2].Name {
		t.Fatal("procedural composition is not deterministic")
	}

	if len(c1.Biomes) < p.MinBiomes {
		t.Errorf("got %d biomes, want at least %d", len(c1.Biomes), p.MinBiomes)
	}
	if c1.Biomes[0].Type != string(biome.Desert) {
		t.Errorf("most guessed biome should come first, got %s", c1.Biomes[0].Type)
	}
	if c1.DefinedFeatures[0].Type != string(feature.City) || c1.DefinedFeatures[2].Type != string(feature.Volcano) {
		t.Errorf("feature types = %s, %s", c1.DefinedFeatures[0].Type, c1.DefinedFeatures[2].Type)
	}

	r, err := c1.Resolve(req.Seed, ph)
	if err != nil {
		t.Fatalf("procedural composition does not resolve: %v", err)
	}
	if len(r.Features) != len(ph) || len(r.Skipped) != 0 {
		t.Errorf("realised %d features, skipped %v", len(r.Features), r.Skipped)
	}
}

func TestProceduralHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProcedural().Compose(ctx, Request{Seed: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFileComposer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composition.json")
	if err := os.WriteFile(path, []byte("```\n"+sample+"\n```"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := FileComposer{Path: path}.Compose(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(c.Regions) != 2 {
		t.Errorf("got %d regions", len(c.Regions))
	}
	if _, err := (FileComposer{Path: path + ".missing"}).Compose(context.Background(), Request{}); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNamerUnique(t *testing.T) {
	n := newNamer(world.NewRand("names", world.SaltCompose))
	seen := make(map[string]bool)
	for range 2000 {
		name := n.next()
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
	}
}
