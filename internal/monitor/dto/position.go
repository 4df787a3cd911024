package dto

import "stock-monitor-bot/internal/entity"

// PositionResponse wraps a position mutation result.
type PositionResponse struct {
	Status   string           `json:"status"`
	Position *entity.Position `json:"position"`
}

// ExitPositionResponse is returned by a manual close.
type ExitPositionResponse struct {
	Status   string           `json:"status"`
	PnLPct   float64          `json:"pnl_pct"`
	Position *entity.Position `json:"position"`
}
