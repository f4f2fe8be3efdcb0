package world

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Stage salts. Each generation stage draws from its own stream so that
// changing one stage never perturbs another.
const (
	SaltLarge    = "noise/large"
	SaltMedium   = "noise/medium"
	SaltDetail   = "noise/detail"
	SaltCoastal  = "noise/coastal"
	SaltMountain = "noise/mountain"
	SaltMoisture = "noise/moisture"
	SaltBiomes   = "biomes"
	SaltSites    = "sites"
	SaltRivers   = "rivers"
	SaltCompose  = "compose"
)

// DeriveSeed hashes the world seed with a stage salt into a 64-bit seed.
func DeriveSeed(seed, salt string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{0})
	h.Write([]byte(salt))
	return int64(h.Sum64())
}

// NewRand returns a deterministic PCG-backed generator for a stage.
func NewRand(seed, salt string) *rand.Rand {
	s := uint64(DeriveSeed(seed, salt))
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// NewID returns a stable UUIDv5 for the index-th object of a kind in a world.
func NewID(seed, kind string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%s/%d", seed, kind, index))).String()
}

// RandomSeed returns a fresh seed string for runs that did not specify one.
func RandomSeed() string {
	return fmt.Sprintf("map_seed_%s", uuid.NewString()[:8])
}
