package util

import "math"

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Percent returns part/whole*100, or fallback when whole is zero.
func Percent(part, whole, fallback float64) float64 {
	if whole == 0 {
		return fallback
	}
	return part / whole * 100
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
