package pathfind

import (
	"math"
	"math/rand/v2"
	"testing"

	goastar "github.com/beefsack/go-astar"

	"github.com/talgya/toroid/internal/world"
)

// weightedGrid prices entering a cell as step × weight.
type weightedGrid struct {
	grid   world.Grid
	weight []float64
	tiles  []*refTile
}

func newWeightedGrid(rows, cols int, rng *rand.Rand) *weightedGrid {
	w := &weightedGrid{grid: world.Grid{Rows: rows, Cols: cols}}
	w.weight = make([]float64, w.grid.Size())
	w.tiles = make([]*refTile, w.grid.Size())
	for i := range w.weight {
		w.weight[i] = 1 + float64(rng.IntN(9))
		w.tiles[i] = &refTile{w: w, cell: w.grid.CellAt(i)}
	}
	return w
}

func (w *weightedGrid) cost(from, to world.Cell, step float64) float64 {
	return step * w.weight[w.grid.Index(to)]
}

// refTile adapts the grid to the reference A* implementation.
type refTile struct {
	w    *weightedGrid
	cell world.Cell
}

func (t *refTile) PathNeighbors() []goastar.Pather {
	out := make([]goastar.Pather, 0, 8)
	for _, o := range world.CompassOffsets {
		out = append(out, t.w.tiles[t.w.grid.Index(t.w.grid.Neighbor(t.cell, o))])
	}
	return out
}

func (t *refTile) PathNeighborCost(to goastar.Pather) float64 {
	dst := to.(*refTile).cell
	step := 1.0
	if t.w.grid.RowDistance(t.cell.Row, dst.Row) != 0 && t.w.grid.ColDistance(t.cell.Col, dst.Col) != 0 {
		step = math.Sqrt2
	}
	return t.w.cost(t.cell, dst, step)
}

func (t *refTile) PathEstimatedCost(goastar.Pather) float64 { return 0 }

func TestSearchMatchesReferenceOptimum(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 17))
	for trial := 0; trial < 25; trial++ {
		w := newWeightedGrid(10, 10, rng)
		start := world.Cell{Row: rng.IntN(10), Col: rng.IntN(10)}
		goal := world.Cell{Row: rng.IntN(10), Col: rng.IntN(10)}

		e := &Engine{Grid: w.grid}
		res := e.Search(start, ToCell{Grid: w.grid, Goal: goal, StepCost: w.cost})
		if !res.Found {
			t.Fatalf("trial %d: no path from %v to %v", trial, start, goal)
		}

		_, want, found := goastar.Path(w.tiles[w.grid.Index(start)], w.tiles[w.grid.Index(goal)])
		if !found {
			t.Fatalf("trial %d: reference found no path", trial)
		}
		if res.Cost > want+1e-9 {
			t.Fatalf("trial %d: cost %g worse than optimum %g", trial, res.Cost, want)
		}

		if res.Path[0] != start || res.Path[len(res.Path)-1] != goal {
			t.Fatalf("trial %d: path runs %v..%v", trial, res.Path[0], res.Path[len(res.Path)-1])
		}
		sum := 0.0
		for i := 1; i < len(res.Path); i++ {
			a, b := res.Path[i-1], res.Path[i]
			dr, dc := w.grid.RowDistance(a.Row, b.Row), w.grid.ColDistance(a.Col, b.Col)
			if dr > 1 || dc > 1 || dr+dc == 0 {
				t.Fatalf("trial %d: non-adjacent step %v -> %v", trial, a, b)
			}
			step := 1.0
			if dr == 1 && dc == 1 {
				step = math.Sqrt2
			}
			sum += w.cost(a, b, step)
		}
		if math.Abs(sum-res.Cost) > 1e-9 {
			t.Fatalf("trial %d: path sums to %g, reported %g", trial, sum, res.Cost)
		}
	}
}

func TestSearchNeverReexpands(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	w := newWeightedGrid(10, 10, rng)
	seen := make(map[world.Cell]bool)
	e := &Engine{Grid: w.grid, Trace: func(c world.Cell) {
		if seen[c] {
			t.Fatalf("cell %v expanded twice", c)
		}
		seen[c] = true
	}}
	// An unreachable goal forces expansion of every cell.
	res := e.Search(world.Cell{}, ToCell{Grid: w.grid, Goal: world.Cell{Row: 99, Col: 99}, StepCost: w.cost})
	if res.Found {
		t.Fatal("found an unreachable goal")
	}
	if res.Expanded != w.grid.Size() || len(seen) != w.grid.Size() {
		t.Fatalf("expanded %d cells, traced %d, want %d", res.Expanded, len(seen), w.grid.Size())
	}
}

func TestSearchWrapsAroundEdges(t *testing.T) {
	g := world.Grid{Rows: 10, Cols: 10}
	e := &Engine{Grid: g}
	res := e.Search(world.Cell{Row: 0, Col: 0}, ToCell{Grid: g, Goal: world.Cell{Row: 9, Col: 9}})
	if !res.Found {
		t.Fatal("no path")
	}
	if len(res.Path) != 2 {
		t.Fatalf("path %v, want a single diagonal step across the seam", res.Path)
	}
}

func TestExpansionCap(t *testing.T) {
	g := world.Grid{Rows: 10, Cols: 10}
	e := &Engine{Grid: g, MaxExpansions: 3}
	res := e.Search(world.Cell{Row: 0, Col: 0}, ToCell{Grid: g, Goal: world.Cell{Row: 5, Col: 5}})
	if res.Found {
		t.Fatal("found a path beyond the expansion cap")
	}
	if res.Expanded != 3 {
		t.Fatalf("expanded %d, want 3", res.Expanded)
	}
}

func TestStartIsGoal(t *testing.T) {
	g := world.Grid{Rows: 4, Cols: 4}
	res := (&Engine{Grid: g}).Search(world.Cell{Row: 5, Col: 1}, ToCell{Grid: g, Goal: world.Cell{Row: 1, Col: 1}})
	if !res.Found || len(res.Path) != 1 || res.Cost != 0 {
		t.Fatalf("result %+v", res)
	}
}

func TestOctile(t *testing.T) {
	g := world.Grid{Rows: 10, Cols: 10}
	got := Octile(g, world.Cell{Row: 0, Col: 0}, world.Cell{Row: 8, Col: 3})
	want := 1 + 2*math.Sqrt2 // 2 rows wrapped, 3 columns
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Octile = %g, want %g", got, want)
	}
}
