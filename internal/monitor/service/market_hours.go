package service

import "time"

// MarketHours is a pure predicate over wall-clock time, expressed in UTC.
// It is a guard against acting on stale closed-market quotes, not a
// scheduling algorithm.
type MarketHours struct {
	OpenHourUTC  int
	CloseHourUTC int
}

// NewMarketHours creates the guard for the [open, close) UTC window.
func NewMarketHours(openHourUTC, closeHourUTC int) MarketHours {
	return MarketHours{OpenHourUTC: openHourUTC, CloseHourUTC: closeHourUTC}
}

// IsOpen reports whether t falls on a weekday inside the trading window.
func (m MarketHours) IsOpen(t time.Time) bool {
	t = t.UTC()
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= m.OpenHourUTC && t.Hour() < m.CloseHourUTC
}
