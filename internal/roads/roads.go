// Package roads links settlements with least-cost A* paths.
package roads

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/pathfind"
	"github.com/talgya/toroid/internal/world"
)

// Report summarizes a road building run.
type Report struct {
	Requested int `json:"requested"`
	Endpoints int `json:"endpoints"`
	Attempted int `json:"attempted"`
	Built     int `json:"built"`
	NotFound  int `json:"notFound"`
	Expanded  int `json:"expanded"`
}

// Endpoints returns the cities and towns eligible to anchor roads, largest first.
// Equal sizes keep their index order.
func Endpoints(rc world.RoadConfig, features []feature.Feature) []feature.Feature {
	var out []feature.Feature
	for _, f := range features {
		if f.Type.IsRoadEndpoint() && f.Size >= rc.MinEndpointSize {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out
}

// Build connects each settlement to the next few in Endpoints order until
// cfg.Roads.Count roads exist. Roads are returned as paths; the grid and
// biome layers are not modified. biomes may be nil.
func Build(cfg world.Config, ter *world.Terrain, biomes *biome.Assignment, features *feature.Index) ([]feature.Path, Report) {
	rc := cfg.Roads
	ends := Endpoints(rc, features.Features())
	rep := Report{Requested: rc.Count, Endpoints: len(ends)}
	if len(ends) < 2 {
		return nil, rep
	}

	engine := &pathfind.Engine{Grid: ter.Grid, MaxExpansions: rc.MaxPathLength}
	var paths []feature.Path
	for i := 0; i < len(ends)-1 && rep.Built < rc.Count; i++ {
		for j := i + 1; j < min(i+1+rc.NeighborWindow, len(ends)) && rep.Built < rc.Count; j++ {
			from, to := ends[i], ends[j]
			rep.Attempted++

			res := engine.Search(from.Anchor, &roadProblem{
				rc:       rc,
				ter:      ter,
				biomes:   biomes,
				features: features,
				goal:     ter.Grid.Wrap(to.Anchor.Row, to.Anchor.Col),
			})
			rep.Expanded += res.Expanded
			if !res.Found || len(res.Path) < 2 {
				rep.NotFound++
				slog.Debug("no road", "from", from.Name, "to", to.Name, "expanded", res.Expanded)
				continue
			}

			p := feature.NewPath(
				world.NewID(cfg.Seed, "road", rep.Built),
				fmt.Sprintf("Road from %s to %s", from.Name, to.Name),
				feature.Road,
				res.Path,
				cfg.CellWidth, cfg.CellHeight,
			)
			p.From, p.To = from.ID, to.ID
			paths = append(paths, p)
			rep.Built++
		}
	}

	slog.Info("roads built",
		"roads", rep.Built,
		"requested", rep.Requested,
		"endpoints", rep.Endpoints,
		"attempted", rep.Attempted,
	)
	return paths, rep
}

type roadProblem struct {
	rc       world.RoadConfig
	ter      *world.Terrain
	biomes   *biome.Assignment
	features *feature.Index
	goal     world.Cell
}

func (p *roadProblem) IsGoal(c world.Cell) bool { return c == p.goal }

func (p *roadProblem) Heuristic(c world.Cell) float64 {
	return pathfind.Manhattan(p.ter.Grid, c, p.goal)
}

func (p *roadProblem) Cost(from, to world.Cell, step float64) float64 {
	g := p.ter.Grid
	fi, ti := g.Index(from), g.Index(to)
	cost := p.rc.BaseMoveCost * step

	alt := p.ter.Altitude[ti]
	cost += world.Abs(float64(alt-p.ter.Altitude[fi])) * p.rc.AltitudeChangeFactor
	if alt == world.HighLand {
		cost += p.rc.HighLandPenalty
	}

	var typ biome.Type
	if p.biomes != nil {
		if b, ok := p.biomes.At(ti); ok {
			typ = b.Type
		}
	}

	occupant, occupied := p.features.At(ti)
	switch {
	case occupied && occupant.Type == feature.Bridge:
	case typ == biome.River:
		cost += p.rc.RiverCrossingPenalty
	case p.ter.Water[ti]:
		cost += p.rc.WaterPenalty
	}
	// Bridges waive the crossing penalty, not the obstruction.
	if occupied {
		cost += p.rc.FeatureObstructionPenalty
	}
	cost += p.rc.BiomePenalties[string(typ)]
	return cost
}
