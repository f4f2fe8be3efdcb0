package sites

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/world"
)

func generated(t *testing.T) (world.Config, *world.Terrain) {
	t.Helper()
	cfg := world.SmallTestConfig()
	ter, err := world.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return cfg, ter
}

func TestPlacedFootprintsAreDisjoint(t *testing.T) {
	cfg, ter := generated(t)
	cfg.Sites.Count = 120
	ps, rep := NewPlacer(cfg.Sites, cfg.Seed, ter, nil, nil, world.NewRand(cfg.Seed, world.SaltSites)).Place()
	if rep.Placed != len(ps) {
		t.Fatalf("report placed %d, got %d", rep.Placed, len(ps))
	}
	if rep.Attempts > cfg.Sites.Count*cfg.Sites.AttemptFactor {
		t.Fatalf("attempts %d exceed budget", rep.Attempts)
	}

	seen := make(map[int]string)
	for _, p := range ps {
		for _, c := range ter.Grid.Footprint(p.Anchor, p.Size) {
			if other, dup := seen[c]; dup {
				t.Fatalf("cell %d claimed by %s and %s", c, other, p.ID)
			}
			seen[c] = p.ID
		}
	}
}

func TestPlacementRules(t *testing.T) {
	cfg, ter := generated(t)
	ps, _ := NewPlacer(cfg.Sites, cfg.Seed, ter, nil, nil, world.NewRand(cfg.Seed, world.SaltSites)).Place()
	for _, p := range ps {
		i := ter.Grid.Index(p.Anchor)
		if p.Size != p.Type.Size() {
			t.Fatalf("%s size %d, want %d", p.Type, p.Size, p.Type.Size())
		}
		switch p.Type {
		case CoastalSettlement:
			if ter.Water[i] || !ter.IsCoastal(i) {
				t.Fatalf("coastal site at %v is not on the coast", p.Anchor)
			}
		case VolcanicVent:
			if ter.Temperature[i] != world.Hot || ter.Altitude[i] != world.HighLand {
				t.Fatalf("volcanic vent at %v: %v %v", p.Anchor, ter.Temperature[i], ter.Altitude[i])
			}
		default:
			if ter.Water[i] {
				t.Fatalf("%s anchored in water at %v", p.Type, p.Anchor)
			}
		}
		if p.Context.Altitude != ter.Altitude[i] || p.Context.Temperature != ter.Temperature[i] || p.Context.Moisture != ter.MoistureBand[i] {
			t.Fatalf("context %+v does not match cell %v", p.Context, p.Anchor)
		}
		if p.Context.BiomeName == "" {
			t.Fatalf("site %s has no biome guess", p.ID)
		}
	}
}

func TestVolcanicVentsNeedHotHighLand(t *testing.T) {
	const rows = 40
	hottest := func(cl world.ClimateConfig) world.TemperatureCategory {
		best := world.Freezing
		for r := range rows {
			best = max(best, world.TemperatureAt(r, rows, world.HighLand, cl))
		}
		return best
	}

	cl := world.DefaultConfig().Climate
	if got := hottest(cl); got == world.Hot {
		t.Fatalf("default climate makes HighLand %v", got)
	}
	cl.HighLandChill = 0
	if got := hottest(cl); got != world.Hot {
		t.Fatalf("unchilled equatorial HighLand is %v, want Hot", got)
	}

	g := world.Grid{Rows: 1, Cols: 2}
	ter := &world.Terrain{
		Grid:        g,
		Altitude:    []world.AltitudeCategory{world.HighLand, world.HighLand},
		Water:       []bool{false, false},
		Temperature: []world.TemperatureCategory{world.Warm, world.Hot},
	}
	if VolcanicVent.Suitable(ter, 0) || !VolcanicVent.Suitable(ter, 1) {
		t.Fatal("volcanic vents must sit on Hot HighLand only")
	}
}

func TestPlacementIsDeterministic(t *testing.T) {
	cfg, ter := generated(t)
	a, _ := NewPlacer(cfg.Sites, cfg.Seed, ter, nil, nil, world.NewRand(cfg.Seed, world.SaltSites)).Place()
	b, _ := NewPlacer(cfg.Sites, cfg.Seed, ter, nil, nil, world.NewRand(cfg.Seed, world.SaltSites)).Place()
	if !slices.Equal(a, b) {
		t.Fatal("placements differ between runs")
	}
}

func TestExistingFeaturesBlockSites(t *testing.T) {
	g := world.Grid{Rows: 4, Cols: 4}
	ter := &world.Terrain{
		Grid:         g,
		Altitude:     make([]world.AltitudeCategory, g.Size()),
		Water:        make([]bool, g.Size()),
		Beach:        make([]bool, g.Size()),
		MoistureBand: make([]world.MoistureCategory, g.Size()),
		Temperature:  make([]world.TemperatureCategory, g.Size()),
	}
	idx := feature.NewIndex(g)
	// Leave only row 3 free.
	if err := idx.Add(feature.Feature{ID: "keep", Name: "Keep", Type: feature.Castle, Anchor: world.Cell{Row: 0, Col: 0}, Size: 3}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(feature.Feature{ID: "tower", Name: "Tower", Type: feature.Tower, Anchor: world.Cell{Row: 0, Col: 3}, Size: 1}); err != nil {
		t.Fatal(err)
	}
	for r := 1; r < 3; r++ {
		if err := idx.Add(feature.Feature{ID: "wall", Name: "Wall", Type: feature.Ruin, Anchor: world.Cell{Row: r, Col: 3}, Size: 1}); err != nil {
			t.Fatal(err)
		}
	}

	cfg := world.SiteConfig{Count: 16, AttemptFactor: 50}
	ps, _ := NewPlacer(cfg, "s", ter, nil, idx, rand.New(rand.NewPCG(1, 1))).Place()
	for _, p := range ps {
		for _, c := range g.Footprint(p.Anchor, p.Size) {
			if idx.Occupied(c) {
				t.Fatalf("site %s at %v overlaps a feature", p.Type, p.Anchor)
			}
		}
	}
	if len(ps) > 4 {
		t.Fatalf("placed %d sites on 4 free cells", len(ps))
	}
}

func TestTypeJSON(t *testing.T) {
	b, err := json.Marshal(Placeholder{Type: CoastalSettlement})
	if err != nil {
		t.Fatal(err)
	}
	var p Placeholder
	if err := json.Unmarshal(b, &p); err != nil {
		t.Fatalf("Unmarshal %s: %v", b, err)
	}
	if p.Type != CoastalSettlement {
		t.Fatalf("type = %v", p.Type)
	}
}
