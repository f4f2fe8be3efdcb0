package biome

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/talgya/toroid/internal/pqueue"
	"github.com/talgya/toroid/internal/world"
)

// Grid maps each cell to the id of the biome that owns it. An empty string
// means unassigned.
type Grid []string

// Counts returns the number of cells owned by each biome id.
func (g Grid) Counts() map[string]int {
	counts := make(map[string]int)
	for _, id := range g {
		if id != "" {
			counts[id]++
		}
	}
	return counts
}

// Assignment is the result of partitioning the land.
type Assignment struct {
	Grid   Grid
	Biomes []Biome // Ocean first, then the land biomes in input order

	byID map[string]int
}

// Lookup returns the biome with the given id.
func (a *Assignment) Lookup(id string) (Biome, bool) {
	i, ok := a.byID[id]
	if !ok {
		return Biome{}, false
	}
	return a.Biomes[i], true
}

// At returns the biome owning cell i, if any.
func (a *Assignment) At(i int) (Biome, bool) {
	return a.Lookup(a.Grid[i])
}

// Add registers an extra biome, replacing any biome with the same id.
func (a *Assignment) Add(b Biome) {
	if i, ok := a.byID[b.ID]; ok {
		a.Biomes[i] = b
		return
	}
	a.byID[b.ID] = len(a.Biomes)
	a.Biomes = append(a.Biomes, b)
}

// OceanOnly returns an assignment in which every water cell belongs to the
// ocean and all land is unassigned.
func OceanOnly(ter *world.Terrain) *Assignment {
	a := &Assignment{
		Grid:   make(Grid, ter.Grid.Size()),
		Biomes: []Biome{NewOcean()},
		byID:   map[string]int{OceanID: 0},
	}
	for i, w := range ter.Water {
		if w {
			a.Grid[i] = OceanID
		}
	}
	return a
}

// Report summarizes a biome assignment.
type Report struct {
	Requested  int      `json:"requested"`
	Seeded     int      `json:"seeded"`
	Unseeded   []string `json:"unseeded,omitempty"` // Names of biomes that found no seed cell
	Assigned   int      `json:"assigned"`           // Land cells with a biome
	Unassigned int      `json:"unassigned"`         // Land cells no biome could reach
}

type frontierEntry struct {
	cell  int
	dist  float64
	owner int // Index into Assignment.Biomes
}

// Assign partitions the land of ter among defs with a multi-source weighted
// flood fill. Every definition is validated first; ids must be unique.
// A definition without a temperature preference uses its type's defaults.
func Assign(cfg world.BiomeConfig, ter *world.Terrain, defs []Biome, rng *rand.Rand) (*Assignment, Report, error) {
	a := OceanOnly(ter)
	rep := Report{Requested: len(defs)}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, rep, fmt.Errorf("assign biomes: %w", err)
		}
		if _, dup := a.byID[d.ID]; dup {
			return nil, rep, fmt.Errorf("assign biomes: %w: duplicate id %s", ErrInvalidBiome, d.ID)
		}
		if len(d.Temperature) == 0 {
			d.Temperature = DefaultTemperatures(d.Type)
		}
		d.Seed = nil
		a.Add(d)
	}

	dist := make([]float64, len(a.Grid))
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	frontier := pqueue.New(func(x, y frontierEntry) bool { return x.dist < y.dist }, len(a.Grid)/4)
	g := ter.Grid
	for bi := 1; bi < len(a.Biomes); bi++ {
		b := &a.Biomes[bi]
		cell, ok := pickSeed(g, ter.Water, a.Grid, cfg.SeedAttempts, rng)
		if !ok {
			slog.Warn("biome seed not placed", "biome", b.Name, "attempts", cfg.SeedAttempts)
			rep.Unseeded = append(rep.Unseeded, b.Name)
			continue
		}
		seed := g.CellAt(cell)
		b.Seed = &seed
		a.Grid[cell] = b.ID
		dist[cell] = 0
		frontier.Push(frontierEntry{cell: cell, owner: bi})
		rep.Seeded++
	}

	for {
		e, ok := frontier.Pop()
		if !ok {
			break
		}
		if e.dist > dist[e.cell] {
			continue
		}
		owner := a.Biomes[e.owner]
		world.Mustf(a.Grid[e.cell] == owner.ID, "cell %d owned by %q but expanded by %q", e.cell, a.Grid[e.cell], owner.ID)

		for _, o := range world.CardinalOffsets {
			n := g.NeighborIndex(e.cell, o)
			if ter.Water[n] {
				continue
			}
			nd := e.dist + stepCost(cfg, owner, ter, n)
			if nd < dist[n] {
				dist[n] = nd
				a.Grid[n] = owner.ID
				frontier.Push(frontierEntry{cell: n, dist: nd, owner: e.owner})
			}
		}
	}

	for i, id := range a.Grid {
		if ter.Water[i] {
			continue
		}
		if id == "" {
			rep.Unassigned++
		} else {
			rep.Assigned++
		}
	}
	slog.Info("biomes assigned",
		"requested", rep.Requested,
		"seeded", rep.Seeded,
		"assigned", rep.Assigned,
		"unassigned", rep.Unassigned,
	)
	return a, rep, nil
}

// pickSeed draws random cells until one is land and not already a seed.
func pickSeed(g world.Grid, water []bool, owners Grid, attempts int, rng *rand.Rand) (int, bool) {
	for i := 0; i < attempts; i++ {
		cell := rng.IntN(g.Size())
		if water[cell] || owners[cell] != "" {
			continue
		}
		return cell, true
	}
	return 0, false
}

// stepCost is the price of growing biome b into cell n.
func stepCost(cfg world.BiomeConfig, b Biome, ter *world.Terrain, n int) float64 {
	cost := 1.0
	if !b.Altitude.Matches(ter.Altitude[n]) {
		cost += cfg.MismatchPenalty
	}
	if !b.Moisture.Matches(ter.MoistureBand[n]) {
		cost += cfg.MismatchPenalty
	}
	if !b.PrefersTemperature(ter.Temperature[n]) {
		cost += cfg.TemperatureMismatchPenalty
	}
	return cost
}
