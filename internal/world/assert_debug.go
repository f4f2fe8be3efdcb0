//go:build worlddebug

package world

import "fmt"

// Debug reports whether internal invariant checks are enabled.
const Debug = true

// Mustf panics when cond is false. Only active in worlddebug builds.
func Mustf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("world invariant violated: "+format, args...))
	}
}
