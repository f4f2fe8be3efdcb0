// Package world provides the toroidal grid, the generation config, and the
// terrain and climate layers derived from seeded noise.
// Every neighbour lookup wraps both axes.
package world

import "fmt"

// Cell is a grid position. Row 0 is the northern edge, Col 0 the western edge.
type Cell struct {
	Row int `json:"r"`
	Col int `json:"c"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Offset is a relative move between cells.
type Offset struct {
	DR, DC int
}

// Diagonal reports whether the move changes both row and column.
func (o Offset) Diagonal() bool {
	return o.DR != 0 && o.DC != 0
}

// CardinalOffsets are the four edge-sharing moves: N, S, W, E.
var CardinalOffsets = [4]Offset{
	{DR: -1, DC: 0},
	{DR: 1, DC: 0},
	{DR: 0, DC: -1},
	{DR: 0, DC: 1},
}

// CompassOffsets are the eight moves: the cardinals followed by the diagonals.
var CompassOffsets = [8]Offset{
	{DR: -1, DC: 0},
	{DR: 1, DC: 0},
	{DR: 0, DC: -1},
	{DR: 0, DC: 1},
	{DR: -1, DC: -1},
	{DR: -1, DC: 1},
	{DR: 1, DC: -1},
	{DR: 1, DC: 1},
}

// Wrap maps any integer onto [0, n).
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Grid is the fixed toroidal topology shared by every layer.
// Layers are flat row-major slices of length Rows*Cols.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Size returns the number of cells.
func (g Grid) Size() int {
	return g.Rows * g.Cols
}

// Wrap returns the canonical cell for any (row, col) pair.
func (g Grid) Wrap(row, col int) Cell {
	return Cell{Row: Wrap(row, g.Rows), Col: Wrap(col, g.Cols)}
}

// Index returns the flat index of a cell, wrapping it first.
func (g Grid) Index(c Cell) int {
	return Wrap(c.Row, g.Rows)*g.Cols + Wrap(c.Col, g.Cols)
}

// CellAt is the inverse of Index.
func (g Grid) CellAt(i int) Cell {
	return Cell{Row: i / g.Cols, Col: i % g.Cols}
}

// Neighbor returns the wrapped cell one move away.
func (g Grid) Neighbor(c Cell, o Offset) Cell {
	return g.Wrap(c.Row+o.DR, c.Col+o.DC)
}

// NeighborIndex is Neighbor on flat indices.
func (g Grid) NeighborIndex(i int, o Offset) int {
	row := i / g.Cols
	col := i % g.Cols
	return Wrap(row+o.DR, g.Rows)*g.Cols + Wrap(col+o.DC, g.Cols)
}

// RowDistance is the shorter way round between two rows.
func (g Grid) RowDistance(a, b int) int {
	return wrappedDelta(a, b, g.Rows)
}

// ColDistance is the shorter way round between two columns.
func (g Grid) ColDistance(a, b int) int {
	return wrappedDelta(a, b, g.Cols)
}

// Manhattan returns the wrapped Manhattan distance between two cells.
func (g Grid) Manhattan(a, b Cell) int {
	return g.RowDistance(a.Row, b.Row) + g.ColDistance(a.Col, b.Col)
}

// Footprint returns the wrapped cell indices of an N×N block anchored at its top-left cell.
func (g Grid) Footprint(anchor Cell, size int) []int {
	if size < 1 {
		size = 1
	}
	out := make([]int, 0, size*size)
	for dr := 0; dr < size; dr++ {
		for dc := 0; dc < size; dc++ {
			out = append(out, g.Index(Cell{Row: anchor.Row + dr, Col: anchor.Col + dc}))
		}
	}
	return out
}

func wrappedDelta(a, b, n int) int {
	d := Abs(Wrap(a, n) - Wrap(b, n))
	if d > n/2 {
		d = n - d
	}
	return d
}

// String returns a summary of the grid.
func (g Grid) String() string {
	return fmt.Sprintf("Grid(rows=%d, cols=%d, cells=%d)", g.Rows, g.Cols, g.Size())
}
