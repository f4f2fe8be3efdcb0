package sites

import (
	"log/slog"
	"math/rand/v2"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/world"
)

// Report summarizes a placement run.
type Report struct {
	Requested  int `json:"requested"`
	Attempts   int `json:"attempts"`
	Placed     int `json:"placed"`
	Unsuitable int `json:"unsuitable"`
	Collisions int `json:"collisions"`
}

// Placer samples anchor cells for placeholder sites.
type Placer struct {
	cfg    world.SiteConfig
	seed   string
	ter    *world.Terrain
	biomes *biome.Assignment
	taken  []bool
	rng    *rand.Rand
}

// NewPlacer returns a placer over ter. Cells covered by features in existing
// are unavailable. biomes and existing may be nil.
func NewPlacer(cfg world.SiteConfig, seed string, ter *world.Terrain, biomes *biome.Assignment, existing *feature.Index, rng *rand.Rand) *Placer {
	taken := make([]bool, ter.Grid.Size())
	if existing != nil {
		for i := range taken {
			taken[i] = existing.Occupied(i)
		}
	}
	return &Placer{cfg: cfg, seed: seed, ter: ter, biomes: biomes, taken: taken, rng: rng}
}

// Place draws random anchors and site types until cfg.Count sites are placed
// or the attempt budget runs out. Falling short is not an error.
func (p *Placer) Place() ([]Placeholder, Report) {
	rep := Report{Requested: p.cfg.Count}
	budget := p.cfg.Count * p.cfg.AttemptFactor
	g := p.ter.Grid

	var out []Placeholder
	for rep.Attempts < budget && len(out) < p.cfg.Count {
		rep.Attempts++
		anchor := world.Cell{Row: p.rng.IntN(g.Rows), Col: p.rng.IntN(g.Cols)}
		typ := Type(p.rng.IntN(int(numTypes)))
		i := g.Index(anchor)

		if !typ.Suitable(p.ter, i) {
			rep.Unsuitable++
			continue
		}
		cells := g.Footprint(anchor, typ.Size())
		if p.collides(cells) {
			rep.Collisions++
			continue
		}
		for _, c := range cells {
			p.taken[c] = true
		}

		out = append(out, Placeholder{
			ID:      world.NewID(p.seed, "placeholder", len(out)),
			Type:    typ,
			Anchor:  anchor,
			Size:    typ.Size(),
			Context: p.context(i),
		})
	}
	rep.Placed = len(out)

	slog.Info("sites placed",
		"placed", rep.Placed,
		"requested", rep.Requested,
		"attempts", rep.Attempts,
	)
	return out, rep
}

func (p *Placer) collides(cells []int) bool {
	for _, c := range cells {
		if p.taken[c] {
			return true
		}
	}
	return false
}

func (p *Placer) context(i int) Context {
	ctx := Context{
		Altitude:    p.ter.Altitude[i],
		Temperature: p.ter.Temperature[i],
		Moisture:    p.ter.MoistureBand[i],
		InWater:     p.ter.Water[i],
		Coastal:     p.ter.IsCoastal(i),
	}
	if p.biomes != nil {
		if b, ok := p.biomes.At(i); ok {
			ctx.BiomeName = b.Name
		}
	}
	if ctx.BiomeName == "" {
		ctx.BiomeName = string(biome.GuessAt(p.ter, i))
	}
	return ctx
}
