package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TemperatureCategory is one of five ordered temperature bands.
type TemperatureCategory uint8

const (
	Freezing TemperatureCategory = iota
	Cold
	Temperate
	Warm
	Hot
)

// TemperatureBands lists every temperature band from coldest to hottest.
var TemperatureBands = [...]TemperatureCategory{Freezing, Cold, Temperate, Warm, Hot}

func (t TemperatureCategory) String() string {
	switch t {
	case Freezing:
		return "Freezing"
	case Cold:
		return "Cold"
	case Temperate:
		return "Temperate"
	case Warm:
		return "Warm"
	case Hot:
		return "Hot"
	default:
		return "Unknown"
	}
}

// MoistureCategory is one of three ordered moisture bands.
type MoistureCategory uint8

const (
	Dry MoistureCategory = iota
	Moderate
	Wet
)

// MoistureBands lists every moisture band from driest to wettest.
var MoistureBands = [...]MoistureCategory{Dry, Moderate, Wet}

func (m MoistureCategory) String() string {
	switch m {
	case Dry:
		return "Dry"
	case Moderate:
		return "Moderate"
	case Wet:
		return "Wet"
	default:
		return "Unknown"
	}
}

// latitude returns the distance of row from the equatorial row, normalized so
// the first row is 1. Rows are pole-to-pole here and deliberately not wrapped.
func latitude(row, rows int) float64 {
	mid := float64(rows) / 2
	return math.Abs(float64(row)-mid) / mid
}

// MoistureField returns per-cell moisture in [0,1]: base noise, drier toward
// the poles, wetter near water, and shaped by highland rain shadows.
func MoistureField(cfg Config, alt []AltitudeCategory, water []bool) []float64 {
	g := cfg.Grid()
	cl := cfg.Climate
	noise := opensimplex.New(DeriveSeed(cfg.Seed, SaltMoisture))

	f := NewNoiseField(g)
	moisture := Normalize(f.Fill(func(r, c int) float64 {
		return f.Sample(noise, r, c, cl.MoistureScale)
	}))

	for i := range moisture {
		cell := g.CellAt(i)
		m := moisture[i]
		m -= latitude(cell.Row, g.Rows) * cl.LatitudeStrength

		if !water[i] && cl.CoastalRadius > 0 {
			if d, ok := nearestWater(g, water, cell, cl.CoastalRadius); ok {
				m += (1 - d/float64(cl.CoastalRadius)) * cl.CoastalStrength
			}
		}

		if alt[i] < HighLand {
			west, east := false, false
			for scan := 1; scan <= cl.RainShadowScan; scan++ {
				if alt[g.Index(Cell{Row: cell.Row, Col: cell.Col - scan})] == HighLand {
					west = true
				}
				if alt[g.Index(Cell{Row: cell.Row, Col: cell.Col + scan})] == HighLand {
					east = true
				}
			}
			switch {
			case west && !east:
				m -= cl.RainShadowPenalty
			case east && !west:
				m += cl.LeewardBonus
			}
		}

		moisture[i] = Clamp(m, 0, 1)
	}
	return moisture
}

// nearestWater returns the wrapped Euclidean distance to the closest water
// cell inside the square of the given radius, if it is within radius.
func nearestWater(g Grid, water []bool, c Cell, radius int) (float64, bool) {
	best := math.Inf(1)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			n := g.Wrap(c.Row+dr, c.Col+dc)
			if !water[g.Index(n)] {
				continue
			}
			dy := float64(g.RowDistance(c.Row, n.Row))
			dx := float64(g.ColDistance(c.Col, n.Col))
			best = math.Min(best, math.Hypot(dx, dy))
		}
	}
	return best, best <= float64(radius)
}

// MoistureBandOf buckets a moisture value.
func MoistureBandOf(v float64, cl ClimateConfig) MoistureCategory {
	switch {
	case v < cl.DryMax:
		return Dry
	case v < cl.ModerateMax:
		return Moderate
	default:
		return Wet
	}
}

// BandMoisture buckets a moisture field.
func BandMoisture(moisture []float64, cl ClimateConfig) []MoistureCategory {
	out := make([]MoistureCategory, len(moisture))
	for i, v := range moisture {
		out[i] = MoistureBandOf(v, cl)
	}
	return out
}

// TemperatureAt scores a cell from its latitude and altitude band.
func TemperatureAt(row, rows int, alt AltitudeCategory, cl ClimateConfig) TemperatureCategory {
	score := float64(Temperate)
	switch d := latitude(row, rows); {
	case d > cl.DeepPolar:
		score -= 2
	case d > cl.Polar:
		score--
	case d < cl.DeepEquatorial:
		score += 2
	case d < cl.Equatorial:
		score++
	}
	switch alt {
	case HighLand:
		score -= cl.HighLandChill
	case MidLand:
		score -= cl.MidLandChill
	}
	return TemperatureCategory(math.Round(Clamp(score, 0, float64(Hot))))
}

// TemperatureField bands every cell by latitude and altitude.
func TemperatureField(g Grid, alt []AltitudeCategory, cl ClimateConfig) []TemperatureCategory {
	out := make([]TemperatureCategory, g.Size())
	for i := range out {
		out[i] = TemperatureAt(i/g.Cols, g.Rows, alt[i], cl)
	}
	return out
}

// SnowMask flags upland cells at or below the snow line.
func SnowMask(alt []AltitudeCategory, temp []TemperatureCategory, line TemperatureCategory) []bool {
	snow := make([]bool, len(alt))
	for i, a := range alt {
		snow[i] = a >= MidLand && temp[i] <= line
	}
	return snow
}
