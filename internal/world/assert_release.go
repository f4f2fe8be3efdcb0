//go:build !worlddebug

package world

// Debug reports whether internal invariant checks are enabled.
const Debug = false

// Mustf is a no-op outside worlddebug builds.
func Mustf(cond bool, format string, args ...any) {}
