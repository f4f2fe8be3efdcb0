// Package hydro carves rivers: A* searches that run downhill from upland
// sources to the nearest open water.
package hydro

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/pathfind"
	"github.com/talgya/toroid/internal/world"
)

// Report summarizes a river carving run.
type Report struct {
	Requested  int `json:"requested"`
	Candidates int `json:"candidates"` // Source cells drawn
	Attempted  int `json:"attempted"`  // Searches run
	Generated  int `json:"generated"`
	NotFound   int `json:"notFound"`  // Searches that hit the expansion cap
	Discarded  int `json:"discarded"` // Paths too short to count
	Cells      int `json:"cells"`     // Land cells turned into river
	Expanded   int `json:"expanded"`
}

// Carve runs river searches and marks every successful river's land cells
// with the river biome in biomes. It returns one path per generated river,
// each ending on a water cell.
func Carve(cfg world.Config, ter *world.Terrain, biomes *biome.Assignment, rng *rand.Rand) ([]feature.Path, Report) {
	rc := cfg.Rivers
	rep := Report{Requested: rc.Count}
	if rc.Count == 0 {
		return nil, rep
	}

	p := newRiverProblem(rc, ter, biomes.Grid)
	if len(p.sample) == 0 {
		slog.Warn("no open water to drain rivers into")
		return nil, rep
	}
	biomes.Add(biome.NewRiver())

	sources := pickSources(rc, ter, rng)
	rep.Candidates = len(sources)
	engine := &pathfind.Engine{Grid: ter.Grid, MaxExpansions: rc.MaxPathLength}

	var paths []feature.Path
	for _, src := range sources {
		if rep.Generated >= rc.Count {
			break
		}
		i := ter.Grid.Index(src)
		if ter.Altitude[i] < world.MidLand || ter.Water[i] || biomes.Grid[i] == biome.RiverID {
			continue
		}

		rep.Attempted++
		res := engine.Search(src, p)
		rep.Expanded += res.Expanded
		if !res.Found {
			rep.NotFound++
			continue
		}

		carved := newRiverCells(ter, biomes.Grid, res.Path)
		if len(carved) < rc.MinNewCells {
			rep.Discarded++
			continue
		}
		for _, c := range carved {
			biomes.Grid[c] = biome.RiverID
		}
		rep.Cells += len(carved)

		paths = append(paths, feature.NewPath(
			world.NewID(cfg.Seed, "river", rep.Generated),
			fmt.Sprintf("River %d", rep.Generated+1),
			feature.River,
			res.Path,
			cfg.CellWidth, cfg.CellHeight,
		))
		rep.Generated++
	}

	slog.Info("rivers carved",
		"rivers", rep.Generated,
		"requested", rep.Requested,
		"cells", rep.Cells,
		"attempted", rep.Attempted,
	)
	return paths, rep
}

// pickSources draws upland cells with a chance that grows with altitude,
// shuffles them and keeps SourceMultiplier candidates per requested river.
func pickSources(rc world.RiverConfig, ter *world.Terrain, rng *rand.Rand) []world.Cell {
	var out []world.Cell
	for i, a := range ter.Altitude {
		if a < world.MidLand || ter.Water[i] {
			continue
		}
		if rng.Float64() < rc.SourceBaseChance+float64(a)*rc.SourceAltChance {
			out = append(out, ter.Grid.CellAt(i))
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit := rc.Count * rc.SourceMultiplier; len(out) > limit {
		out = out[:limit]
	}
	return out
}

// newRiverCells returns the land cells of path not already river.
func newRiverCells(ter *world.Terrain, grid biome.Grid, path []world.Cell) []int {
	var out []int
	for _, c := range path {
		i := ter.Grid.Index(c)
		if !ter.Water[i] && grid[i] != biome.RiverID {
			out = append(out, i)
		}
	}
	return out
}

// riverProblem drives a river search toward any open water cell.
type riverProblem struct {
	rc     world.RiverConfig
	ter    *world.Terrain
	grid   biome.Grid
	sample []world.Cell // Water cells on a coarse lattice
	h      []float64    // Heuristic cache, NaN until computed
}

func newRiverProblem(rc world.RiverConfig, ter *world.Terrain, grid biome.Grid) *riverProblem {
	g := ter.Grid
	p := &riverProblem{rc: rc, ter: ter, grid: grid, h: make([]float64, g.Size())}
	for i := range p.h {
		p.h[i] = math.NaN()
	}
	for r := 0; r < g.Rows; r += rc.HeuristicStride {
		for c := 0; c < g.Cols; c += rc.HeuristicStride {
			cell := world.Cell{Row: r, Col: c}
			if i := g.Index(cell); ter.Water[i] && ter.Altitude[i] < 0 {
				p.sample = append(p.sample, cell)
			}
		}
	}
	return p
}

func (p *riverProblem) IsGoal(c world.Cell) bool {
	i := p.ter.Grid.Index(c)
	return p.ter.Water[i] && p.ter.Altitude[i] < 0
}

func (p *riverProblem) Heuristic(c world.Cell) float64 {
	i := p.ter.Grid.Index(c)
	if !math.IsNaN(p.h[i]) {
		return p.h[i]
	}
	nearest := math.MaxInt
	for _, w := range p.sample {
		nearest = min(nearest, p.ter.Grid.Manhattan(c, w))
	}
	h := float64(nearest) + float64(p.ter.Altitude[i]-world.DeepWater)*p.rc.AltitudeIncentive
	if p.ter.Water[i] {
		h -= p.rc.WaterHeuristicBonus
	}
	p.h[i] = h
	return h
}

func (p *riverProblem) Cost(from, to world.Cell, step float64) float64 {
	g := p.ter.Grid
	fi, ti := g.Index(from), g.Index(to)
	cost := p.rc.BaseMoveCost * step

	d := float64(p.ter.Altitude[ti] - p.ter.Altitude[fi])
	switch {
	case d > 0:
		cost += p.rc.UphillPenalty * d
	case d == 0:
		cost += p.rc.SameAltitudePenalty
	default:
		cost += p.rc.DownhillBonus * -d
	}
	if p.ter.Water[ti] && p.ter.Altitude[ti] < 0 {
		cost = p.rc.SinkCost
	}
	if p.grid[ti] == biome.RiverID {
		cost += p.rc.ExistingRiverPenalty
	}
	return cost
}
