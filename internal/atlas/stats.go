package atlas

import "github.com/talgya/toroid/internal/world"

// Stats is a summary of a generated world.
type Stats struct {
	Seed         string         `json:"seed"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
	Land         int            `json:"land"`
	Water        int            `json:"water"`
	Beach        int            `json:"beach"`
	Snow         int            `json:"snow"`
	Altitudes    map[string]int `json:"altitudes"`
	Biomes       int            `json:"biomes"`
	Unassigned   int            `json:"unassigned"`
	Placeholders int            `json:"placeholders"`
	Features     int            `json:"features"`
	Rivers       int            `json:"rivers"`
	RiverCells   int            `json:"riverCells"`
	Roads        int            `json:"roads"`
	RoadCells    int            `json:"roadCells"`
}

// Stats computes the current summary.
func (w *World) Stats() Stats {
	ter := w.Terrain
	s := Stats{
		Seed:         w.Config.Seed,
		Rows:         ter.Grid.Rows,
		Cols:         ter.Grid.Cols,
		Land:         ter.LandCount(),
		Altitudes:    make(map[string]int),
		Placeholders: len(w.Placeholders),
		Features:     w.Features.Len(),
		Rivers:       len(w.Rivers),
		Roads:        len(w.Roads),
	}
	s.Water = ter.Grid.Size() - s.Land
	for i := range ter.Beach {
		if ter.Beach[i] {
			s.Beach++
		}
		if ter.Snow[i] {
			s.Snow++
		}
	}
	for alt, n := range world.AltitudeCounts(ter.Altitude) {
		s.Altitudes[alt.String()] = n
	}
	if w.Biomes != nil {
		s.Biomes = len(w.Biomes.Biomes)
		for i, id := range w.Biomes.Grid {
			if id == "" && !ter.Water[i] {
				s.Unassigned++
			}
		}
	} else {
		s.Unassigned = s.Land
	}
	s.RiverCells = w.Reports.Rivers.Cells
	for _, r := range w.Roads {
		s.RoadCells += len(r.Cells)
	}
	return s
}
