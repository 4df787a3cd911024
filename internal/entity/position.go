package entity

import (
	"errors"
	"time"
)

// Position lifecycle states. A closed position keeps the reason it was
// closed as its status, forming the trade history log.
const (
	PositionStatusOpen     = "OPEN"
	PositionStatusStopLoss = "STOP_LOSS"
	PositionStatusTarget   = "TARGET"
	PositionStatusMaxDays  = "MAX_DAYS"
	PositionStatusManual   = "MANUAL"
)

var (
	// ErrPositionAlreadyOpen is returned when entering a ticker that
	// already has an open position.
	ErrPositionAlreadyOpen = errors.New("position already open for ticker")

	// ErrNoOpenPosition is returned when exiting a ticker without an
	// open position.
	ErrNoOpenPosition = errors.New("no open position for ticker")

	// ErrTickerNotInWatchlist is returned when operating on a ticker the
	// watchlist does not know.
	ErrTickerNotInWatchlist = errors.New("ticker not in watchlist")
)

// Position is an open or closed trade for a watched ticker. At most one
// OPEN position may exist per ticker at any time.
type Position struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Ticker        string     `gorm:"not null;index" json:"ticker"`
	EntryPrice    float64    `gorm:"not null" json:"entry_price"`
	StopLossPrice float64    `gorm:"not null" json:"stop_loss_price"`
	TargetPrice   float64    `gorm:"not null" json:"target_price"`
	EnteredAt     time.Time  `gorm:"not null" json:"entered_at"`
	Status        string     `gorm:"not null;default:OPEN" json:"status"`
	ExitPrice     *float64   `json:"exit_price,omitempty"`
	ExitedAt      *time.Time `json:"exited_at,omitempty"`
	PnLPct        *float64   `json:"pnl_pct,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Position) TableName() string {
	return "positions"
}

// IsOpen reports whether the position is still held.
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}
