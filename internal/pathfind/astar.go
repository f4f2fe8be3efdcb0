// Package pathfind implements A* search over the toroidal grid. Callers
// supply the goal test, heuristic and step costs through a Problem.
package pathfind

import (
	"math"

	"github.com/talgya/toroid/internal/pqueue"
	"github.com/talgya/toroid/internal/world"
)

// Problem parameterizes a search.
type Problem interface {
	// IsGoal is tested when a cell is expanded.
	IsGoal(c world.Cell) bool
	// Heuristic estimates the remaining cost from c.
	Heuristic(c world.Cell) float64
	// Cost prices the move from one cell to an adjacent one. step is 1 for
	// orthogonal moves and √2 for diagonal ones.
	Cost(from, to world.Cell, step float64) float64
}

// Result of a search. A search that hits the expansion cap or exhausts the
// open set returns Found == false; that is not an error.
type Result struct {
	Path     []world.Cell // Start to goal inclusive
	Cost     float64
	Expanded int
	Found    bool
}

// Engine runs searches on one grid. It holds no state between searches.
type Engine struct {
	Grid world.Grid

	// MaxExpansions caps the number of cells expanded per search.
	// Zero means the grid size.
	MaxExpansions int

	// Moves are the permitted steps, CompassOffsets if nil.
	Moves []world.Offset

	// Trace, when set, is called with every expanded cell.
	Trace func(world.Cell)
}

// node lives in a per-search arena; parent is an arena index, -1 at the root.
type node struct {
	cell   int32
	parent int32
	g      float64
}

type openEntry struct {
	node int32
	f    float64
}

// Search runs A* from start.
func (e *Engine) Search(start world.Cell, p Problem) Result {
	g := e.Grid
	limit := e.MaxExpansions
	if limit <= 0 {
		limit = g.Size()
	}
	moves := e.Moves
	if moves == nil {
		moves = world.CompassOffsets[:]
	}

	arena := make([]node, 0, 256)
	closed := make([]bool, g.Size())
	open := pqueue.New(func(a, b openEntry) bool {
		if a.f != b.f {
			return a.f < b.f
		}
		return a.node < b.node
	}, 256)

	start = g.Wrap(start.Row, start.Col)
	arena = append(arena, node{cell: int32(g.Index(start)), parent: -1})
	open.Push(openEntry{node: 0, f: p.Heuristic(start)})

	var res Result
	for res.Expanded < limit {
		top, ok := open.Pop()
		if !ok {
			break
		}
		cur := arena[top.node]
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true
		res.Expanded++

		cell := g.CellAt(int(cur.cell))
		if e.Trace != nil {
			e.Trace(cell)
		}
		if p.IsGoal(cell) {
			res.Found = true
			res.Cost = cur.g
			res.Path = e.reconstruct(arena, top.node)
			return res
		}

		for _, m := range moves {
			next := g.Neighbor(cell, m)
			ni := g.Index(next)
			if closed[ni] {
				continue
			}
			step := 1.0
			if m.Diagonal() {
				step = math.Sqrt2
			}
			ng := cur.g + p.Cost(cell, next, step)
			arena = append(arena, node{cell: int32(ni), parent: top.node, g: ng})
			open.Push(openEntry{node: int32(len(arena) - 1), f: ng + p.Heuristic(next)})
		}
	}
	return res
}

func (e *Engine) reconstruct(arena []node, last int32) []world.Cell {
	var path []world.Cell
	for i := last; i >= 0; i = arena[i].parent {
		path = append(path, e.Grid.CellAt(int(arena[i].cell)))
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}
