// Package export writes generated worlds in formats other tools can read.
package export

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/talgya/toroid/internal/atlas"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/world"
)

// GeoJSON returns the world's sites, features and paths as a GeoJSON
// FeatureCollection in world-space coordinates (x east, y south).
func GeoJSON(w *atlas.World) ([]byte, error) {
	return Collection(w).MarshalJSON()
}

// Collection builds the FeatureCollection behind GeoJSON. Every feature
// carries a "layer" property: site, feature, biome, river or road.
func Collection(w *atlas.World) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	cw, ch := w.Config.CellWidth, w.Config.CellHeight
	g := w.Terrain.Grid

	for _, p := range w.Placeholders {
		c := feature.CellCenter(p.Anchor, cw, ch)
		f := geojson.NewPointFeature([]float64{c.X, c.Y})
		f.ID = p.ID
		f.SetProperty("layer", "site")
		f.SetProperty("type", p.Type.String())
		f.SetProperty("size", p.Size)
		f.SetProperty("altitude", p.Context.Altitude.String())
		f.SetProperty("temperature", p.Context.Temperature.String())
		f.SetProperty("moisture", p.Context.Moisture.String())
		f.SetProperty("coastal", p.Context.Coastal)
		f.SetProperty("biome", p.Context.BiomeName)
		fc.AddFeature(f)
	}

	for _, ft := range w.Features.Features() {
		polys := footprintPolygons(g, ft.Anchor, ft.Size, cw, ch)
		var f *geojson.Feature
		if len(polys) == 1 {
			f = geojson.NewPolygonFeature(polys[0])
		} else {
			f = geojson.NewMultiPolygonFeature(polys...)
		}
		f.ID = ft.ID
		f.SetProperty("layer", "feature")
		f.SetProperty("name", ft.Name)
		f.SetProperty("type", string(ft.Type))
		f.SetProperty("size", ft.Size)
		if ft.Description != "" {
			f.SetProperty("description", ft.Description)
		}
		if ft.BiomeID != "" {
			f.SetProperty("biomeId", ft.BiomeID)
		}
		fc.AddFeature(f)
	}

	if w.Biomes != nil {
		counts := w.Biomes.Grid.Counts()
		for _, b := range w.Biomes.Biomes {
			if b.Seed == nil {
				continue
			}
			c := feature.CellCenter(*b.Seed, cw, ch)
			f := geojson.NewPointFeature([]float64{c.X, c.Y})
			f.ID = b.ID
			f.SetProperty("layer", "biome")
			f.SetProperty("name", b.Name)
			f.SetProperty("type", string(b.Type))
			f.SetProperty("cells", counts[b.ID])
			fc.AddFeature(f)
		}
	}

	for _, p := range w.Rivers {
		fc.AddFeature(pathFeature(p, "river"))
	}
	for _, p := range w.Roads {
		f := pathFeature(p, "road")
		f.SetProperty("from", p.From)
		f.SetProperty("to", p.To)
		fc.AddFeature(f)
	}
	return fc
}

// pathFeature emits a path as a LineString, or as a MultiLineString when it
// crosses a seam of the torus.
func pathFeature(p feature.Path, layer string) *geojson.Feature {
	lines := splitAtSeams(p)
	var f *geojson.Feature
	if len(lines) == 1 {
		f = geojson.NewLineStringFeature(lines[0])
	} else {
		f = geojson.NewMultiLineStringFeature(lines...)
	}
	f.ID = p.ID
	f.SetProperty("layer", layer)
	f.SetProperty("name", p.Name)
	f.SetProperty("cells", len(p.Cells))
	return f
}

// splitAtSeams starts a new line wherever consecutive cells are adjacent
// only through the wrap.
func splitAtSeams(p feature.Path) [][][]float64 {
	var lines [][][]float64
	var cur [][]float64
	for i, pt := range p.Points {
		if i > 0 {
			a, b := p.Cells[i-1], p.Cells[i]
			if world.Abs(a.Row-b.Row) > 1 || world.Abs(a.Col-b.Col) > 1 {
				if len(cur) > 1 {
					lines = append(lines, cur)
				}
				cur = nil
			}
		}
		cur = append(cur, []float64{pt.X, pt.Y})
	}
	if len(cur) > 1 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// footprintPolygons returns the rectangles a wrapped N×N footprint covers,
// one per side of each seam it straddles.
func footprintPolygons(g world.Grid, anchor world.Cell, size int, cw, ch float64) [][][][]float64 {
	rowSpans := spans(anchor.Row, size, g.Rows)
	colSpans := spans(anchor.Col, size, g.Cols)
	var polys [][][][]float64
	for _, rs := range rowSpans {
		for _, cs := range colSpans {
			x0, x1 := float64(cs[0])*cw, float64(cs[1])*cw
			y0, y1 := float64(rs[0])*ch, float64(rs[1])*ch
			polys = append(polys, [][][]float64{{
				{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
			}})
		}
	}
	return polys
}

// spans splits [start, start+size) on a ring of n into half-open ranges
// that do not cross the wrap.
func spans(start, size, n int) [][2]int {
	start = world.Wrap(start, n)
	size = min(max(size, 1), n)
	if start+size <= n {
		return [][2]int{{start, start + size}}
	}
	return [][2]int{{start, n}, {0, start + size - n}}
}
