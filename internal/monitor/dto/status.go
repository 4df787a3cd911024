package dto

import "stock-monitor-bot/internal/entity"

// TickerStatus bundles everything known about one watched ticker.
type TickerStatus struct {
	Market   *entity.Quote         `json:"market,omitempty"`
	Config   entity.WatchlistEntry `json:"config"`
	Position *entity.Position      `json:"position,omitempty"`
}

// StatusResponse is the full state snapshot returned by GET /status.
type StatusResponse struct {
	Watchlist map[string]TickerStatus `json:"watchlist"`
	Positions []entity.Position       `json:"positions"`
	History   []entity.Position       `json:"history"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string   `json:"status"`
	Tickers []string `json:"tickers"`
}

// PricesResponse carries the latest quotes for the watchlist.
type PricesResponse struct {
	Quotes map[string]*entity.Quote `json:"quotes"`
	Errors map[string]string        `json:"errors,omitempty"`
}
