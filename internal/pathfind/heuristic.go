package pathfind

import (
	"math"

	"github.com/talgya/toroid/internal/world"
)

// Manhattan returns the wrapped Manhattan distance from c to goal.
func Manhattan(g world.Grid, c, goal world.Cell) float64 {
	return float64(g.Manhattan(c, goal))
}

// Octile returns the wrapped octile distance from c to goal, the exact
// unit-cost distance under 8-directional movement.
func Octile(g world.Grid, c, goal world.Cell) float64 {
	dr := float64(g.RowDistance(c.Row, goal.Row))
	dc := float64(g.ColDistance(c.Col, goal.Col))
	lo, hi := math.Min(dr, dc), math.Max(dr, dc)
	return hi - lo + lo*math.Sqrt2
}

// ToCell is a Problem that searches for a fixed goal cell.
type ToCell struct {
	Grid world.Grid
	Goal world.Cell

	// StepCost prices a move; nil means the unit step length.
	StepCost func(from, to world.Cell, step float64) float64
	// Estimate is the heuristic; nil means Octile.
	Estimate func(g world.Grid, c, goal world.Cell) float64
}

func (p ToCell) IsGoal(c world.Cell) bool { return c == p.Goal }

func (p ToCell) Heuristic(c world.Cell) float64 {
	if p.Estimate == nil {
		return Octile(p.Grid, c, p.Goal)
	}
	return p.Estimate(p.Grid, c, p.Goal)
}

func (p ToCell) Cost(from, to world.Cell, step float64) float64 {
	if p.StepCost == nil {
		return step
	}
	return p.StepCost(from, to, step)
}
