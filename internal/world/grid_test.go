package world

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 0},
		{-1, 5, 4},
		{-6, 5, 4},
		{12, 5, 2},
	}
	for _, tt := range tests {
		if got := Wrap(tt.i, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestNeighborIsToroidal(t *testing.T) {
	g := Grid{Rows: 7, Cols: 11}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			for _, o := range CompassOffsets {
				base := g.Neighbor(Cell{Row: r, Col: c}, o)
				if got := g.Neighbor(Cell{Row: r + g.Rows, Col: c}, o); got != base {
					t.Fatalf("row wrap: neighbor(%d+rows,%d,%v) = %v, want %v", r, c, o, got, base)
				}
				if got := g.Neighbor(Cell{Row: r, Col: c - g.Cols}, o); got != base {
					t.Fatalf("col wrap: neighbor(%d,%d-cols,%v) = %v, want %v", r, c, o, got, base)
				}
				if got := g.CellAt(g.NeighborIndex(g.Index(Cell{Row: r, Col: c}), o)); got != base {
					t.Fatalf("NeighborIndex disagrees with Neighbor at (%d,%d) %v: %v vs %v", r, c, o, got, base)
				}
			}
		}
	}
}

func TestEdgesAreAdjacent(t *testing.T) {
	g := Grid{Rows: 4, Cols: 6}
	if got := g.Neighbor(Cell{Row: 0, Col: 0}, Offset{DR: -1, DC: -1}); got != (Cell{Row: 3, Col: 5}) {
		t.Fatalf("north-west of origin = %v, want (3,5)", got)
	}
	if d := g.Manhattan(Cell{Row: 0, Col: 0}, Cell{Row: 3, Col: 5}); d != 2 {
		t.Fatalf("Manhattan across corner = %d, want 2", d)
	}
}

func TestFootprintWraps(t *testing.T) {
	g := Grid{Rows: 5, Cols: 5}
	got := g.Footprint(Cell{Row: 4, Col: 4}, 2)
	want := []int{
		g.Index(Cell{Row: 4, Col: 4}),
		g.Index(Cell{Row: 4, Col: 0}),
		g.Index(Cell{Row: 0, Col: 4}),
		g.Index(Cell{Row: 0, Col: 0}),
	}
	if len(got) != len(want) {
		t.Fatalf("footprint has %d cells, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("footprint[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
