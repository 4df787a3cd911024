package entity

import "time"

// Quote is the latest market snapshot for a ticker, supplied per
// evaluation cycle by the quote repository. It is never persisted on its
// own; alert records embed a JSON copy.
type Quote struct {
	Ticker         string    `json:"ticker"`
	LastPrice      float64   `json:"price"`
	PrevClose      float64   `json:"prev_close"`
	DailyChangePct float64   `json:"daily_change_pct"`
	Volume         int64     `json:"volume"`
	FiveDayHigh    float64   `json:"high_5d"`
	FiveDayLow     float64   `json:"low_5d"`
	FetchedAt      time.Time `json:"fetched_at"`
}
