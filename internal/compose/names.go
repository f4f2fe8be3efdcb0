package compose

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	namePrefixes = []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	nameSuffixes = []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}
)

// namer hands out unique syllable names.
type namer struct {
	rng  *rand.Rand
	used map[string]bool
}

func newNamer(rng *rand.Rand) *namer {
	return &namer{rng: rng, used: make(map[string]bool)}
}

// next returns a name not handed out before. Once the syllable space runs
// thin a number is appended.
func (n *namer) next() string {
	for attempt := 0; ; attempt++ {
		name := namePrefixes[n.rng.IntN(len(namePrefixes))] + nameSuffixes[n.rng.IntN(len(nameSuffixes))]
		if attempt >= 64 {
			name = fmt.Sprintf("%s %d", name, attempt/64+1)
		}
		key := strings.ToLower(name)
		if !n.used[key] {
			n.used[key] = true
			return name
		}
	}
}
