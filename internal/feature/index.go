package feature

import (
	"errors"
	"fmt"

	"github.com/talgya/toroid/internal/world"
)

// ErrOverlap is returned when a feature's footprint touches an occupied cell.
var ErrOverlap = errors.New("feature footprint overlaps")

// Index records which footprint feature occupies each cell.
type Index struct {
	grid     world.Grid
	owner    []int32 // -1 for free cells
	features []Feature
}

// NewIndex returns an empty index over g.
func NewIndex(g world.Grid) *Index {
	owner := make([]int32, g.Size())
	for i := range owner {
		owner[i] = -1
	}
	return &Index{grid: g, owner: owner}
}

// Add places f, failing without side effects if any of its cells is taken.
func (x *Index) Add(f Feature) error {
	cells := f.Footprint(x.grid)
	for _, c := range cells {
		if o := x.owner[c]; o >= 0 {
			return fmt.Errorf("%w: %s at %v collides with %s", ErrOverlap, f.Name, f.Anchor, x.features[o].Name)
		}
	}
	id := int32(len(x.features))
	x.features = append(x.features, f)
	for _, c := range cells {
		x.owner[c] = id
	}
	return nil
}

// At returns the feature occupying cell i.
func (x *Index) At(i int) (Feature, bool) {
	o := x.owner[i]
	if o < 0 {
		return Feature{}, false
	}
	return x.features[o], true
}

// Occupied reports whether cell i is covered by any footprint.
func (x *Index) Occupied(i int) bool {
	return x.owner[i] >= 0
}

// Features returns the indexed features in insertion order.
func (x *Index) Features() []Feature {
	return x.features
}

// Len returns the number of indexed features.
func (x *Index) Len() int {
	return len(x.features)
}
