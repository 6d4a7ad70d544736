// Package env reads process environment variables with fallbacks. The
// engine's own settings go through pkg/config; this covers the few
// bootstrap knobs needed before config loads.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
