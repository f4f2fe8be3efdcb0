package world

import "testing"

func TestConstantFieldIsAllLowLand(t *testing.T) {
	g := Grid{Rows: 4, Cols: 4}
	th := Thresholds{DeepWater: 0.2, ShallowWater: 0.4, LandLow: 0.6, LandMedium: 0.8, BeachSlope: 0.05}

	elev := make([]float64, g.Size())
	for i := range elev {
		elev[i] = 0.5
	}
	elev = Normalize(elev)

	alt, water := Classify(elev, th)
	beach := BeachMask(g, elev, alt, water, th.BeachSlope)
	for i := range elev {
		if alt[i] != LowLand {
			t.Fatalf("cell %d altitude = %v, want LowLand", i, alt[i])
		}
		if water[i] {
			t.Fatalf("cell %d flagged as water", i)
		}
		if beach[i] {
			t.Fatalf("cell %d flagged as beach", i)
		}
	}
}

func TestClassifyValue(t *testing.T) {
	th := Thresholds{DeepWater: 0.2, ShallowWater: 0.4, LandLow: 0.6, LandMedium: 0.8}
	tests := []struct {
		v    float64
		want AltitudeCategory
	}{
		{0, DeepWater},
		{0.19, DeepWater},
		{0.2, ShallowWater},
		{0.4, LowLand},
		{0.6, MidLand},
		{0.8, HighLand},
		{1, HighLand},
	}
	for _, tt := range tests {
		if got := ClassifyValue(tt.v, th); got != tt.want {
			t.Errorf("ClassifyValue(%g) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestBeachNeedsGentleSlopeToShallowWater(t *testing.T) {
	g := Grid{Rows: 3, Cols: 3}
	th := Thresholds{DeepWater: 0.2, ShallowWater: 0.4, LandLow: 0.6, LandMedium: 0.8}

	// Centre column is land, the rest shallow water. Wrapping makes every
	// land cell touch water on both sides.
	elev := []float64{
		0.39, 0.42, 0.30,
		0.39, 0.55, 0.30,
		0.39, 0.42, 0.30,
	}
	alt, water := Classify(elev, th)
	beach := BeachMask(g, elev, alt, water, 0.05)

	if !beach[1] || !beach[7] {
		t.Fatalf("gentle cells not beaches: %v", beach)
	}
	if beach[4] {
		t.Fatal("steep cell (slope 0.16) flagged as beach")
	}
	for _, i := range []int{0, 2, 3, 5, 6, 8} {
		if beach[i] {
			t.Fatalf("water cell %d flagged as beach", i)
		}
	}
}
