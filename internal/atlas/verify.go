package atlas

import (
	"errors"
	"fmt"

	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
)

// ErrInvariant is wrapped by every violation Verify reports.
var ErrInvariant = errors.New("world invariant violated")

// Verify checks the structural invariants of the generated layers and
// returns every violation found, joined.
func (w *World) Verify() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}
	g := w.Terrain.Grid

	if w.Biomes != nil {
		if len(w.Biomes.Grid) != g.Size() {
			fail("biome grid has %d cells, want %d", len(w.Biomes.Grid), g.Size())
		} else {
			for i, id := range w.Biomes.Grid {
				if w.Terrain.Water[i] && id != biome.OceanID {
					fail("water cell %v owned by %q", g.CellAt(i), id)
					continue
				}
				if id == "" {
					continue
				}
				if _, ok := w.Biomes.Lookup(id); !ok {
					fail("cell %v owned by unknown biome %q", g.CellAt(i), id)
				}
			}
		}
	}

	for _, r := range w.Rivers {
		if len(r.Cells) < 2 {
			fail("river %s has %d cells", r.Name, len(r.Cells))
			continue
		}
		last := g.Index(r.Cells[len(r.Cells)-1])
		if !w.Terrain.Water[last] {
			fail("river %s ends on land at %v", r.Name, r.Cells[len(r.Cells)-1])
		}
		for _, c := range r.Cells[:len(r.Cells)-1] {
			i := g.Index(c)
			if w.Terrain.Water[i] {
				fail("river %s crosses water at %v", r.Name, c)
				break
			}
			if w.Biomes == nil || w.Biomes.Grid[i] != biome.RiverID {
				fail("river %s cell %v not marked as river", r.Name, c)
				break
			}
		}
		if err := w.checkContiguous(r); err != nil {
			errs = append(errs, err)
		}
	}

	byID := make(map[string]feature.Feature, w.Features.Len())
	for _, f := range w.Features.Features() {
		byID[f.ID] = f
	}
	for _, r := range w.Roads {
		from, okFrom := byID[r.From]
		to, okTo := byID[r.To]
		if !okFrom || !okTo {
			fail("road %s links unknown features %q and %q", r.Name, r.From, r.To)
			continue
		}
		if len(r.Cells) == 0 || r.Cells[0] != from.Anchor || r.Cells[len(r.Cells)-1] != to.Anchor {
			fail("road %s does not run from %s to %s", r.Name, from.Name, to.Name)
		}
		if err := w.checkContiguous(r); err != nil {
			errs = append(errs, err)
		}
	}

	owner := make([]string, g.Size())
	for _, f := range w.Features.Features() {
		for _, c := range f.Footprint(g) {
			if owner[c] != "" {
				fail("features %s and %s overlap at %v", owner[c], f.Name, g.CellAt(c))
			}
			owner[c] = f.Name
		}
	}
	// A placeholder may share cells only with the feature realised from it.
	taken := make([]string, g.Size())
	for _, p := range w.Placeholders {
		for _, c := range g.Footprint(p.Anchor, p.Size) {
			if taken[c] != "" {
				fail("placeholders %s and %s overlap at %v", taken[c], p.ID, g.CellAt(c))
			}
			taken[c] = p.ID
			if f, ok := w.Features.At(c); ok && (f.Anchor != p.Anchor || f.Size != p.Size) {
				fail("placeholder %s overlaps feature %s at %v", p.ID, f.Name, g.CellAt(c))
			}
		}
	}
	return errors.Join(errs...)
}

// checkContiguous reports a path whose consecutive cells are not
// 8-neighbours on the torus.
func (w *World) checkContiguous(p feature.Path) error {
	g := w.Terrain.Grid
	for k := 1; k < len(p.Cells); k++ {
		a, b := p.Cells[k-1], p.Cells[k]
		dr, dc := g.RowDistance(a.Row, b.Row), g.ColDistance(a.Col, b.Col)
		if max(dr, dc) != 1 {
			return fmt.Errorf("%w: %s jumps from %v to %v", ErrInvariant, p.Name, a, b)
		}
	}
	return nil
}
