// World generation using layered simplex noise sampled on a torus.
// Generates elevation, then derives altitude bands, water, beaches and climate.
package world

import (
	"math"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain holds the per-cell layers of a generated world, indexed by Grid.Index.
// Every slice has Grid.Size() entries.
type Terrain struct {
	Grid Grid

	Elevation []float64 // Normalized to [0,1]
	Altitude  []AltitudeCategory
	Water     []bool
	Beach     []bool

	Moisture     []float64 // Clamped to [0,1]
	MoistureBand []MoistureCategory
	Temperature  []TemperatureCategory
	Snow         []bool
}

// Generate validates cfg and builds the terrain and climate layers.
func Generate(cfg Config) (*Terrain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := cfg.Grid()
	t := &Terrain{Grid: g}
	t.Elevation = Normalize(ElevationField(cfg))
	t.Altitude, t.Water = Classify(t.Elevation, cfg.Thresholds)
	t.Beach = BeachMask(g, t.Elevation, t.Altitude, t.Water, cfg.Thresholds.BeachSlope)
	t.Moisture = MoistureField(cfg, t.Altitude, t.Water)
	t.MoistureBand = BandMoisture(t.Moisture, cfg.Climate)
	t.Temperature = TemperatureField(g, t.Altitude, cfg.Climate)
	t.Snow = SnowMask(t.Altitude, t.Temperature, cfg.Climate.SnowLine)
	return t, nil
}

// NoiseField maps grid cells onto a torus in 4D noise space so that any
// field sampled through it tiles seamlessly across both edges.
type NoiseField struct {
	grid   Grid
	rx, ry float64
}

// NewNoiseField returns the torus embedding for g.
func NewNoiseField(g Grid) NoiseField {
	return NoiseField{
		grid: g,
		rx:   float64(g.Cols) / (2 * math.Pi),
		ry:   float64(g.Rows) / (2 * math.Pi),
	}
}

// Coords returns the 4D noise-space position of (row, col).
func (f NoiseField) Coords(row, col int) (x, y, z, w float64) {
	u := 2 * math.Pi * float64(Wrap(col, f.grid.Cols)) / float64(f.grid.Cols)
	v := 2 * math.Pi * float64(Wrap(row, f.grid.Rows)) / float64(f.grid.Rows)
	return f.rx * math.Cos(u), f.rx * math.Sin(u), f.ry * math.Cos(v), f.ry * math.Sin(v)
}

// Sample evaluates noise once at (row, col) with the given frequency.
func (f NoiseField) Sample(noise opensimplex.Noise, row, col int, scale float64) float64 {
	x, y, z, w := f.Coords(row, col)
	return noise.Eval4(x*scale, y*scale, z*scale, w*scale)
}

// Octaves sums octaves of noise at (row, col). Amplitude decays by persistence
// and frequency grows by lacunarity each octave.
func (f NoiseField) Octaves(noise opensimplex.Noise, row, col, octaves int, amplitude, scale, persistence, lacunarity float64) float64 {
	x, y, z, w := f.Coords(row, col)
	total := 0.0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		s := freq * scale
		total += noise.Eval4(x*s, y*s, z*s, w*s) * amplitude
		amplitude *= persistence
		freq *= lacunarity
	}
	return total
}

// Fill evaluates fn for every cell, splitting rows across workers.
// fn must only depend on its own cell.
func (f NoiseField) Fill(fn func(row, col int) float64) []float64 {
	out := make([]float64, f.grid.Size())
	chunkRows(f.grid.Rows, func(start, end int) {
		for r := start; r < end; r++ {
			base := r * f.grid.Cols
			for c := 0; c < f.grid.Cols; c++ {
				out[base+c] = fn(r, c)
			}
		}
	})
	return out
}

// ElevationField returns the raw, unnormalized elevation sum of the five layers.
func ElevationField(cfg Config) []float64 {
	n := cfg.Noise
	large := opensimplex.New(DeriveSeed(cfg.Seed, SaltLarge))
	medium := opensimplex.New(DeriveSeed(cfg.Seed, SaltMedium))
	detail := opensimplex.New(DeriveSeed(cfg.Seed, SaltDetail))
	coastal := opensimplex.New(DeriveSeed(cfg.Seed, SaltCoastal))
	mountain := opensimplex.New(DeriveSeed(cfg.Seed, SaltMountain))

	f := NewNoiseField(cfg.Grid())
	return f.Fill(func(r, c int) float64 {
		total := f.Octaves(large, r, c, n.Octaves-2, 1, n.LargeScale, n.Persistence, n.Lacunarity)
		total += f.Octaves(medium, r, c, n.Octaves-1, n.MediumAmplitude, n.MediumScale, n.Persistence, n.Lacunarity)
		total += f.Octaves(detail, r, c, n.Octaves, n.DetailAmplitude, n.DetailScale, n.Persistence, n.Lacunarity)
		total += f.Sample(coastal, r, c, n.CoastalScale) * n.CoastalAmplitude

		// Ridge bias: only strong mountain-chain samples lift the terrain.
		if m := f.Sample(mountain, r, c, n.MountainScale); m > n.MountainThreshold {
			total += (m - n.MountainThreshold) * n.MountainBoost
		}
		return total
	})
}

// Normalize rescales values in place to [0,1] by global min-max and returns
// them. A constant field maps to 0.5 everywhere.
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			values[i] = 0.5
			continue
		}
		values[i] = (v - lo) / span
	}
	return values
}

const fillWorkers = 8

// chunkRows splits [0, rows) into contiguous chunks and runs fn on each
// in its own goroutine, returning once all finish.
func chunkRows(rows int, fn func(start, end int)) {
	var wg sync.WaitGroup
	chunk := rows/fillWorkers + 1
	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}
	wg.Wait()
}
