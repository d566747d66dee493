// Package shared holds small helpers used across domain packages.
package shared

import "math"

// Round2 rounds a monetary amount to 2 decimal places, half-up.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds a rate to 4 decimal places, half-up.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
