package world

// AltitudeCategory is a discrete elevation band. Water bands are negative.
type AltitudeCategory int8

const (
	DeepWater    AltitudeCategory = -2
	ShallowWater AltitudeCategory = -1
	LowLand      AltitudeCategory = 0
	MidLand      AltitudeCategory = 1
	HighLand     AltitudeCategory = 2
)

// IsWater reports whether the band is one of the two water bands.
func (a AltitudeCategory) IsWater() bool { return a < LowLand }

func (a AltitudeCategory) String() string {
	switch a {
	case DeepWater:
		return "DeepWater"
	case ShallowWater:
		return "ShallowWater"
	case LowLand:
		return "LowLand"
	case MidLand:
		return "MidLand"
	case HighLand:
		return "HighLand"
	default:
		return "Unknown"
	}
}

// AltitudeBands lists every altitude category from deepest to highest.
var AltitudeBands = [...]AltitudeCategory{DeepWater, ShallowWater, LowLand, MidLand, HighLand}

// ClassifyValue buckets a normalized elevation using the thresholds.
func ClassifyValue(v float64, t Thresholds) AltitudeCategory {
	switch {
	case v < t.DeepWater:
		return DeepWater
	case v < t.ShallowWater:
		return ShallowWater
	case v < t.LandLow:
		return LowLand
	case v < t.LandMedium:
		return MidLand
	default:
		return HighLand
	}
}

// Classify buckets a normalized elevation field and derives the water mask.
func Classify(elevation []float64, t Thresholds) (alt []AltitudeCategory, water []bool) {
	alt = make([]AltitudeCategory, len(elevation))
	water = make([]bool, len(elevation))
	for i, v := range elevation {
		alt[i] = ClassifyValue(v, t)
		water[i] = alt[i].IsWater()
	}
	return alt, water
}

// BeachMask flags LowLand cells next to shallow water whose minimum elevation
// step down to that water is below slope. All eight wrapped neighbours count.
func BeachMask(g Grid, elevation []float64, alt []AltitudeCategory, water []bool, slope float64) []bool {
	beach := make([]bool, g.Size())
	for i := range beach {
		if water[i] || alt[i] != LowLand {
			continue
		}
		coastal := false
		minSlope := 0.0
		for _, o := range CompassOffsets {
			n := g.NeighborIndex(i, o)
			if !water[n] || alt[n] != ShallowWater {
				continue
			}
			s := Abs(elevation[i] - elevation[n])
			if !coastal || s < minSlope {
				minSlope = s
			}
			coastal = true
		}
		beach[i] = coastal && minSlope < slope
	}
	return beach
}

// AltitudeCounts returns how many cells fall in each altitude band.
func AltitudeCounts(alt []AltitudeCategory) map[AltitudeCategory]int {
	counts := make(map[AltitudeCategory]int)
	for _, a := range alt {
		counts[a]++
	}
	return counts
}

// LandCount returns the number of non-water cells.
func (t *Terrain) LandCount() int {
	n := 0
	for _, w := range t.Water {
		if !w {
			n++
		}
	}
	return n
}

// IsCoastal reports whether the land cell i touches water in any of its
// eight wrapped neighbours.
func (t *Terrain) IsCoastal(i int) bool {
	if t.Water[i] {
		return false
	}
	for _, o := range CompassOffsets {
		if t.Water[t.Grid.NeighborIndex(i, o)] {
			return true
		}
	}
	return false
}
