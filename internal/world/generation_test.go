package world

import (
	"errors"
	"slices"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !slices.Equal(a.Elevation, b.Elevation) {
		t.Fatal("elevation differs between runs")
	}
	if !slices.Equal(a.Altitude, b.Altitude) {
		t.Fatal("altitude differs between runs")
	}
	if !slices.Equal(a.Water, b.Water) || !slices.Equal(a.Beach, b.Beach) {
		t.Fatal("masks differ between runs")
	}
	if !slices.Equal(a.Temperature, b.Temperature) || !slices.Equal(a.MoistureBand, b.MoistureBand) {
		t.Fatal("climate differs between runs")
	}
}

func TestSeedChangesWorld(t *testing.T) {
	cfg := SmallTestConfig()
	a, _ := Generate(cfg)
	cfg.Seed = "another"
	b, _ := Generate(cfg)
	if slices.Equal(a.Elevation, b.Elevation) {
		t.Fatal("different seeds produced identical elevation")
	}
}

func TestElevationIsNormalized(t *testing.T) {
	ter, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	lo, hi := slices.Min(ter.Elevation), slices.Max(ter.Elevation)
	if lo != 0 || hi != 1 {
		t.Fatalf("elevation range [%g, %g], want [0, 1]", lo, hi)
	}
}

func TestNormalizeConstant(t *testing.T) {
	got := Normalize([]float64{3, 3, 3})
	if !slices.Equal(got, []float64{0.5, 0.5, 0.5}) {
		t.Fatalf("Normalize(constant) = %v", got)
	}
	if got := Normalize(nil); len(got) != 0 {
		t.Fatalf("Normalize(nil) = %v", got)
	}
}

func TestTorusEmbeddingTiles(t *testing.T) {
	g := Grid{Rows: 12, Cols: 16}
	f := NewNoiseField(g)
	for r := 0; r < g.Rows; r++ {
		x0, y0, z0, w0 := f.Coords(r, 0)
		x1, y1, z1, w1 := f.Coords(r, g.Cols)
		if x0 != x1 || y0 != y1 || z0 != z1 || w0 != w1 {
			t.Fatalf("column %d does not coincide with column 0 on row %d", g.Cols, r)
		}
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Thresholds.LandLow = cfg.Thresholds.ShallowWater
	if _, err := Generate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
