package biome

import "github.com/talgya/toroid/internal/world"

// Guess names the biome type a cell would most plausibly belong to from its
// climate alone. Used before biomes exist.
func Guess(alt world.AltitudeCategory, temp world.TemperatureCategory, moist world.MoistureCategory, beach bool) Type {
	if alt.IsWater() {
		return Ocean
	}
	if beach {
		return Beach
	}
	switch temp {
	case world.Freezing:
		return Ice
	case world.Cold:
		if alt == world.HighLand {
			return Mountains
		}
		if moist == world.Dry {
			return Tundra
		}
		return Taiga
	}
	if alt == world.HighLand {
		if temp == world.Hot {
			return Volcanic
		}
		return Mountains
	}
	if alt == world.MidLand && moist != world.Wet {
		if temp == world.Hot && moist == world.Dry {
			return Badlands
		}
		return Hills
	}
	switch moist {
	case world.Dry:
		if temp >= world.Warm {
			return Desert
		}
		return Plains
	case world.Wet:
		if temp == world.Hot {
			return Jungle
		}
		if alt == world.LowLand && temp == world.Warm {
			return Swamp
		}
		return Forest
	default:
		if temp >= world.Warm {
			return Grassland
		}
		return Plains
	}
}

// GuessAt applies Guess to cell i of ter.
func GuessAt(ter *world.Terrain, i int) Type {
	return Guess(ter.Altitude[i], ter.Temperature[i], ter.MoistureBand[i], ter.Beach[i])
}
