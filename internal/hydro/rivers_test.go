package hydro

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/world"
)

// ridgeTerrain rises from a water band at row 0 to a ridge halfway round.
func ridgeTerrain(rows, cols int) *world.Terrain {
	g := world.Grid{Rows: rows, Cols: cols}
	n := g.Size()
	ter := &world.Terrain{
		Grid:         g,
		Elevation:    make([]float64, n),
		Altitude:     make([]world.AltitudeCategory, n),
		Water:        make([]bool, n),
		Beach:        make([]bool, n),
		Moisture:     make([]float64, n),
		MoistureBand: make([]world.MoistureCategory, n),
		Temperature:  make([]world.TemperatureCategory, n),
		Snow:         make([]bool, n),
	}
	for i := range n {
		d := g.RowDistance(g.CellAt(i).Row, 0)
		switch {
		case d <= 1:
			ter.Altitude[i] = world.ShallowWater
			ter.Water[i] = true
		case d <= 3:
			ter.Altitude[i] = world.LowLand
		case d <= 5:
			ter.Altitude[i] = world.MidLand
		default:
			ter.Altitude[i] = world.HighLand
		}
	}
	return ter
}

func assignAll(t *testing.T, ter *world.Terrain) *biome.Assignment {
	t.Helper()
	a, _, err := biome.Assign(world.DefaultConfig().Biomes, ter,
		[]biome.Biome{{ID: "land", Name: "Land", Type: biome.Plains}},
		rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return a
}

// checkTermination verifies every river cell lies on a path that ends in
// water below sea level.
func checkTermination(t *testing.T, ter *world.Terrain, a *biome.Assignment, paths []feature.Path) {
	t.Helper()
	onPath := make(map[int]bool)
	for _, p := range paths {
		last := p.Cells[len(p.Cells)-1]
		li := ter.Grid.Index(last)
		if !ter.Water[li] || ter.Altitude[li] >= 0 {
			t.Fatalf("river %s ends on %v at %v", p.Name, ter.Altitude[li], last)
		}
		if ter.Water[ter.Grid.Index(p.Cells[0])] {
			t.Fatalf("river %s starts in water", p.Name)
		}
		if len(p.Points) != len(p.Cells) {
			t.Fatalf("river %s has %d points for %d cells", p.Name, len(p.Points), len(p.Cells))
		}
		for _, c := range p.Cells {
			onPath[ter.Grid.Index(c)] = true
		}
	}
	for i, id := range a.Grid {
		if id == biome.RiverID && !onPath[i] {
			t.Fatalf("river cell %v is on no river path", ter.Grid.CellAt(i))
		}
	}
}

func TestCarveRunsDownhillToWater(t *testing.T) {
	ter := ridgeTerrain(16, 12)
	a := assignAll(t, ter)
	cfg := world.SmallTestConfig()
	cfg.Rows, cfg.Cols = 16, 12
	cfg.Rivers.Count = 3
	cfg.Rivers.MaxPathLength = 16 * 12
	cfg.Rivers.SourceBaseChance = 1

	paths, rep := Carve(cfg, ter, a, rand.New(rand.NewPCG(2, 3)))
	if rep.Generated == 0 {
		t.Fatalf("no rivers generated: %+v", rep)
	}
	if rep.Generated != len(paths) || rep.Generated > cfg.Rivers.Count {
		t.Fatalf("report %+v with %d paths", rep, len(paths))
	}
	if _, ok := a.Lookup(biome.RiverID); !ok {
		t.Fatal("river biome not registered")
	}
	checkTermination(t, ter, a, paths)

	for _, p := range paths {
		for k := 1; k < len(p.Cells); k++ {
			prev := ter.Altitude[ter.Grid.Index(p.Cells[k-1])]
			cur := ter.Altitude[ter.Grid.Index(p.Cells[k])]
			if cur > prev {
				t.Fatalf("river %s climbs from %v to %v", p.Name, prev, cur)
			}
		}
	}
}

func TestShortRiversAreDiscarded(t *testing.T) {
	ter := ridgeTerrain(16, 12)
	a := assignAll(t, ter)
	before := slices.Clone(a.Grid)

	cfg := world.SmallTestConfig()
	cfg.Rivers.Count = 5
	cfg.Rivers.MaxPathLength = 16 * 12
	cfg.Rivers.SourceBaseChance = 1
	cfg.Rivers.MinNewCells = 100

	paths, rep := Carve(cfg, ter, a, rand.New(rand.NewPCG(4, 4)))
	if len(paths) != 0 || rep.Generated != 0 {
		t.Fatalf("generated %d rivers below the length floor", rep.Generated)
	}
	if rep.Discarded == 0 {
		t.Fatalf("nothing discarded: %+v", rep)
	}
	if !slices.Equal(before, a.Grid) {
		t.Fatal("discarded rivers modified the biome grid")
	}
}

func TestNoWaterNoRivers(t *testing.T) {
	ter := ridgeTerrain(8, 8)
	for i := range ter.Water {
		ter.Water[i] = false
		ter.Altitude[i] = world.HighLand
	}
	a := assignAll(t, ter)
	paths, rep := Carve(world.SmallTestConfig(), ter, a, rand.New(rand.NewPCG(1, 1)))
	if len(paths) != 0 || rep.Attempted != 0 {
		t.Fatalf("rivers on a waterless world: %+v", rep)
	}
}

func TestCarveOnGeneratedWorld(t *testing.T) {
	cfg := world.SmallTestConfig()
	ter, err := world.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	a := assignAll(t, ter)
	paths, _ := Carve(cfg, ter, a, world.NewRand(cfg.Seed, world.SaltRivers))
	checkTermination(t, ter, a, paths)

	a2 := assignAll(t, ter)
	paths2, _ := Carve(cfg, ter, a2, world.NewRand(cfg.Seed, world.SaltRivers))
	if !slices.Equal(a.Grid, a2.Grid) || len(paths) != len(paths2) {
		t.Fatal("river carving is not deterministic")
	}
}

func TestRiverAtLengthFloorIsKept(t *testing.T) {
	// A single MidLand source four rows above the sea: the only sensible
	// course carves exactly four land cells before reaching water.
	ter := ridgeTerrain(12, 6)
	for i := range ter.Altitude {
		row := ter.Grid.CellAt(i).Row
		ter.Water[i] = row == 0
		ter.Altitude[i] = world.LowLand
		if row == 0 {
			ter.Altitude[i] = world.ShallowWater
		}
	}
	ter.Altitude[ter.Grid.Index(world.Cell{Row: 4, Col: 2})] = world.MidLand
	a := assignAll(t, ter)

	cfg := world.SmallTestConfig()
	cfg.Rows, cfg.Cols = 12, 6
	cfg.Rivers.Count = 1
	cfg.Rivers.MaxPathLength = 12 * 6
	cfg.Rivers.SourceBaseChance = 1
	cfg.Rivers.MinNewCells = 4

	paths, rep := Carve(cfg, ter, a, rand.New(rand.NewPCG(5, 5)))
	if rep.Generated != 1 || len(paths) != 1 {
		t.Fatalf("four-cell river not kept: %+v", rep)
	}
	if rep.Cells != 4 {
		t.Fatalf("carved %d cells, want 4", rep.Cells)
	}
	checkTermination(t, ter, a, paths)

	// One more than the carved length is below the floor.
	a = assignAll(t, ter)
	cfg.Rivers.MinNewCells = 5
	if _, rep := Carve(cfg, ter, a, rand.New(rand.NewPCG(5, 5))); rep.Generated != 0 || rep.Discarded != 1 {
		t.Fatalf("river below the floor kept: %+v", rep)
	}
}
