package world

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error returned from Validate.
var ErrInvalidConfig = errors.New("invalid world config")

// NoiseConfig shapes the layered elevation field.
type NoiseConfig struct {
	LargeScale   float64 `toml:"large_scale"`
	MediumScale  float64 `toml:"medium_scale"`
	DetailScale  float64 `toml:"detail_scale"`
	CoastalScale float64 `toml:"coastal_scale"`

	Octaves     int     `toml:"octaves"` // Detail layer uses all, medium one fewer, large two fewer
	Persistence float64 `toml:"persistence"`
	Lacunarity  float64 `toml:"lacunarity"`

	MediumAmplitude  float64 `toml:"medium_amplitude"`
	DetailAmplitude  float64 `toml:"detail_amplitude"`
	CoastalAmplitude float64 `toml:"coastal_amplitude"`

	MountainScale     float64 `toml:"mountain_scale"`
	MountainThreshold float64 `toml:"mountain_threshold"`
	MountainBoost     float64 `toml:"mountain_boost"`
}

// Thresholds bucket the normalized elevation into altitude categories.
// DeepWater < ShallowWater < LandLow < LandMedium, all inside (0, 1).
type Thresholds struct {
	DeepWater    float64 `toml:"deep_water"`
	ShallowWater float64 `toml:"shallow_water"`
	LandLow      float64 `toml:"land_low"`
	LandMedium   float64 `toml:"land_medium"`
	BeachSlope   float64 `toml:"beach_slope"`
}

// ClimateConfig tunes moisture and temperature derivation.
type ClimateConfig struct {
	MoistureScale    float64 `toml:"moisture_scale"`
	LatitudeStrength float64 `toml:"latitude_strength"`
	CoastalStrength  float64 `toml:"coastal_strength"`
	CoastalRadius    int     `toml:"coastal_radius"`

	RainShadowScan    int     `toml:"rain_shadow_scan"`
	RainShadowPenalty float64 `toml:"rain_shadow_penalty"`
	LeewardBonus      float64 `toml:"leeward_bonus"`

	DryMax      float64 `toml:"dry_max"`      // Moisture below this is Dry
	ModerateMax float64 `toml:"moderate_max"` // Moisture below this is Moderate

	// Normalized distance from the equatorial row.
	DeepPolar      float64 `toml:"deep_polar"`
	Polar          float64 `toml:"polar"`
	Equatorial     float64 `toml:"equatorial"`
	DeepEquatorial float64 `toml:"deep_equatorial"`

	HighLandChill float64 `toml:"highland_chill"`
	MidLandChill  float64 `toml:"midland_chill"`

	SnowLine TemperatureCategory `toml:"snow_line"`
}

// BiomeConfig tunes the weighted flood fill.
type BiomeConfig struct {
	MismatchPenalty            float64 `toml:"mismatch_penalty"`
	TemperatureMismatchPenalty float64 `toml:"temperature_mismatch_penalty"`
	SeedAttempts               int     `toml:"seed_attempts"`
}

// RiverConfig holds the river search cost table.
type RiverConfig struct {
	Count            int     `toml:"count"`
	MaxPathLength    int     `toml:"max_path_length"`
	SourceMultiplier int     `toml:"source_multiplier"` // Candidate sources tried per requested river
	SourceBaseChance float64 `toml:"source_base_chance"`
	SourceAltChance  float64 `toml:"source_alt_chance"` // Added per altitude step above LowLand
	MinNewCells      int     `toml:"min_new_cells"`    // A river must carve at least this many

	BaseMoveCost         float64 `toml:"base_move_cost"`
	UphillPenalty        float64 `toml:"uphill_penalty"`
	SameAltitudePenalty  float64 `toml:"same_altitude_penalty"`
	DownhillBonus        float64 `toml:"downhill_bonus"`
	SinkCost             float64 `toml:"sink_cost"`
	ExistingRiverPenalty float64 `toml:"existing_river_penalty"`

	HeuristicStride     int     `toml:"heuristic_stride"`
	AltitudeIncentive   float64 `toml:"altitude_incentive"`
	WaterHeuristicBonus float64 `toml:"water_heuristic_bonus"`
}

// RoadConfig holds the road search cost table.
type RoadConfig struct {
	Count           int `toml:"count"`
	MaxPathLength   int `toml:"max_path_length"`
	MinEndpointSize int `toml:"min_endpoint_size"`
	NeighborWindow  int `toml:"neighbor_window"` // Each settlement links to this many following ones

	BaseMoveCost              float64 `toml:"base_move_cost"`
	AltitudeChangeFactor      float64 `toml:"altitude_change_factor"`
	HighLandPenalty           float64 `toml:"highland_penalty"`
	WaterPenalty              float64 `toml:"water_penalty"`
	RiverCrossingPenalty      float64 `toml:"river_crossing_penalty"`
	FeatureObstructionPenalty float64 `toml:"feature_obstruction_penalty"`

	// Per biome type friction, keyed by biome type name.
	BiomePenalties map[string]float64 `toml:"biome_penalties"`
}

// SiteConfig controls placeholder site sampling.
type SiteConfig struct {
	Count         int `toml:"count"`
	AttemptFactor int `toml:"attempt_factor"` // Attempt budget is Count*AttemptFactor
}

// Config holds every world generation parameter. It is validated once and then
// passed to each component; nothing reads process-wide state.
type Config struct {
	Rows int    `toml:"rows"`
	Cols int    `toml:"cols"`
	Seed string `toml:"seed"`

	// World-space size of a cell, used for path point sequences.
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`

	Noise      NoiseConfig   `toml:"noise"`
	Thresholds Thresholds    `toml:"thresholds"`
	Climate    ClimateConfig `toml:"climate"`
	Biomes     BiomeConfig   `toml:"biomes"`
	Rivers     RiverConfig   `toml:"rivers"`
	Roads      RoadConfig    `toml:"roads"`
	Sites      SiteConfig    `toml:"sites"`
}

// DefaultConfig returns the standard 150×200 world.
func DefaultConfig() Config {
	return ScaledConfig(150, 200, "map_seed_default")
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() Config {
	cfg := ScaledConfig(40, 48, "small")
	cfg.Sites.Count = 30
	return cfg
}

// ScaledConfig returns the default parameters with the size-dependent ones
// (river and road counts, coastal radius) scaled to a rows×cols grid.
func ScaledConfig(rows, cols int, seed string) Config {
	// River and road counts scale from a 75×100 reference map.
	scale := float64(rows*cols) / float64(75*100)
	return Config{
		Rows:       rows,
		Cols:       cols,
		Seed:       seed,
		CellWidth:  10,
		CellHeight: 10,
		Noise: NoiseConfig{
			LargeScale:        0.015,
			MediumScale:       0.04,
			DetailScale:       0.08,
			CoastalScale:      0.15,
			Octaves:           5,
			Persistence:       0.5,
			Lacunarity:        2.0,
			MediumAmplitude:   0.6,
			DetailAmplitude:   0.3,
			CoastalAmplitude:  0.15,
			MountainScale:     0.005,
			MountainThreshold: 0.3,
			MountainBoost:     1.5,
		},
		Thresholds: Thresholds{
			DeepWater:    0.32,
			ShallowWater: 0.42,
			LandLow:      0.42 + 0.58*0.33,
			LandMedium:   0.42 + 0.58*0.66,
			BeachSlope:   0.05,
		},
		Climate: ClimateConfig{
			MoistureScale:     0.08,
			LatitudeStrength:  0.6,
			CoastalStrength:   0.4,
			CoastalRadius:     8 * rows / 75,
			RainShadowScan:    5,
			RainShadowPenalty: 0.35,
			LeewardBonus:      0.1,
			DryMax:            0.33,
			ModerateMax:       0.66,
			DeepPolar:         0.85,
			Polar:             0.6,
			Equatorial:        0.3,
			DeepEquatorial:    0.15,
			HighLandChill:     1.5,
			MidLandChill:      0.5,
			SnowLine:          Cold,
		},
		Biomes: BiomeConfig{
			MismatchPenalty:            1,
			TemperatureMismatchPenalty: 1.5,
			SeedAttempts:               100,
		},
		Rivers: RiverConfig{
			Count:                int(scale * 15 * 1.5),
			MaxPathLength:        rows * cols / 8,
			SourceMultiplier:     6,
			SourceBaseChance:     0.03,
			SourceAltChance:      0.08,
			MinNewCells:          4,
			BaseMoveCost:         1,
			UphillPenalty:        200,
			SameAltitudePenalty:  10,
			DownhillBonus:        -2,
			SinkCost:             0,
			ExistingRiverPenalty: 25,
			HeuristicStride:      3,
			AltitudeIncentive:    3,
			WaterHeuristicBonus:  50,
		},
		Roads: RoadConfig{
			Count:                     int(scale * 8),
			MaxPathLength:             rows * cols / 7,
			MinEndpointSize:           2,
			NeighborWindow:            3,
			BaseMoveCost:              1,
			AltitudeChangeFactor:      7,
			HighLandPenalty:           60,
			WaterPenalty:              1000,
			RiverCrossingPenalty:      300,
			FeatureObstructionPenalty: 200,
			BiomePenalties: map[string]float64{
				"Swamp":     30,
				"Forest":    15,
				"Jungle":    20,
				"Tundra":    15,
				"Volcanic":  40,
				"Badlands":  15,
				"Mountains": 25,
				"Ice":       500,
				"Desert":    5,
				"Plains":    0,
				"Grassland": 2,
				"Hills":     8,
				"Taiga":     18,
			},
		},
		Sites: SiteConfig{
			Count:         200,
			AttemptFactor: 10,
		},
	}
}

// Grid returns the topology described by the config.
func (c Config) Grid() Grid {
	return Grid{Rows: c.Rows, Cols: c.Cols}
}

// Validate rejects malformed configurations. It never adjusts values.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Rows <= 0 || c.Cols <= 0 {
		fail("grid dimensions must be positive, got %d×%d", c.Rows, c.Cols)
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		fail("cell size must be positive, got %g×%g", c.CellWidth, c.CellHeight)
	}

	t := c.Thresholds
	if !(0 < t.DeepWater && t.DeepWater < t.ShallowWater && t.ShallowWater < t.LandLow &&
		t.LandLow < t.LandMedium && t.LandMedium < 1) {
		fail("altitude thresholds must be strictly increasing inside (0,1), got deep=%g shallow=%g low=%g medium=%g",
			t.DeepWater, t.ShallowWater, t.LandLow, t.LandMedium)
	}
	if t.BeachSlope < 0 {
		fail("beach slope must be non-negative, got %g", t.BeachSlope)
	}

	n := c.Noise
	if n.Octaves < 2 {
		fail("noise octaves must be at least 2, got %d", n.Octaves)
	}
	if n.LargeScale <= 0 || n.MediumScale <= 0 || n.DetailScale <= 0 || n.CoastalScale <= 0 || n.MountainScale <= 0 {
		fail("noise scales must be positive")
	}

	cl := c.Climate
	if cl.CoastalRadius < 0 || cl.RainShadowScan < 0 {
		fail("climate radii must be non-negative, got coastal=%d shadow=%d", cl.CoastalRadius, cl.RainShadowScan)
	}
	if !(0 < cl.DryMax && cl.DryMax < cl.ModerateMax && cl.ModerateMax < 1) {
		fail("moisture bands must be strictly increasing inside (0,1), got dry=%g moderate=%g", cl.DryMax, cl.ModerateMax)
	}
	if !(0 <= cl.DeepEquatorial && cl.DeepEquatorial < cl.Equatorial && cl.Equatorial < cl.Polar &&
		cl.Polar < cl.DeepPolar && cl.DeepPolar <= 1) {
		fail("latitude bands must be strictly increasing inside [0,1], got deepEq=%g eq=%g polar=%g deepPolar=%g",
			cl.DeepEquatorial, cl.Equatorial, cl.Polar, cl.DeepPolar)
	}
	if cl.SnowLine > Hot {
		fail("snow line %d is not a temperature band", cl.SnowLine)
	}

	if c.Biomes.SeedAttempts < 1 {
		fail("biome seed attempts must be at least 1, got %d", c.Biomes.SeedAttempts)
	}

	r := c.Rivers
	if r.Count < 0 || r.MaxPathLength < 0 || r.MinNewCells < 0 || r.SourceMultiplier < 0 {
		fail("river counts must be non-negative")
	}
	if r.HeuristicStride < 1 {
		fail("river heuristic stride must be at least 1, got %d", r.HeuristicStride)
	}

	rd := c.Roads
	if rd.Count < 0 || rd.MaxPathLength < 0 || rd.NeighborWindow < 0 {
		fail("road counts must be non-negative")
	}
	if rd.BaseMoveCost <= 0 {
		fail("road base move cost must be positive, got %g", rd.BaseMoveCost)
	}

	if c.Sites.Count < 0 || c.Sites.AttemptFactor < 0 {
		fail("site counts must be non-negative")
	}

	return errors.Join(errs...)
}
