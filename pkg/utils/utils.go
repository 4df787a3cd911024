package utils

import (
	"math"
	"time"
)

// ToPointer returns a pointer to the given value.
func ToPointer[T any](v T) *T {
	return &v
}

// RoundPrice rounds a price to two decimal places.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// DaysSince returns the number of whole days elapsed between t and now.
func DaysSince(t, now time.Time) int {
	if now.Before(t) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}
