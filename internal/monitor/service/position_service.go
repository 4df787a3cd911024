package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/utils"
)

// PositionTracker enforces the one-open-position-per-ticker invariant.
// Automatic closes detected by the evaluator and manual closes both go
// through Exit, so state stays consistent either way.
type PositionTracker interface {
	Enter(ctx context.Context, ticker string, entryPrice, stopLoss, target float64) (*entity.Position, error)
	Exit(ctx context.Context, ticker string, exitPrice float64, reason string) (*entity.Position, error)
	Get(ctx context.Context, ticker string) (*entity.Position, error)
	OpenPositions(ctx context.Context) ([]entity.Position, error)
	History(ctx context.Context, limit int) ([]entity.Position, error)
}

type positionTracker struct {
	watchlistRepo repository.WatchlistRepository
	positionsRepo repository.PositionsRepository
	logger        *logger.Logger
	now           func() time.Time
}

// NewPositionTracker creates a position tracker over the given stores.
func NewPositionTracker(watchlistRepo repository.WatchlistRepository, positionsRepo repository.PositionsRepository, log *logger.Logger) PositionTracker {
	return &positionTracker{
		watchlistRepo: watchlistRepo,
		positionsRepo: positionsRepo,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Enter opens a position for a watched ticker. Stop-loss and target levels
// default from the entry's exit rules when the caller passes zero.
func (t *positionTracker) Enter(ctx context.Context, ticker string, entryPrice, stopLoss, target float64) (*entity.Position, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	entry, ok := t.watchlistRepo.Get(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrTickerNotInWatchlist, ticker)
	}
	if entryPrice <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %.2f", entryPrice)
	}

	existing, err := t.positionsRepo.FindOpen(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrPositionAlreadyOpen, ticker)
	}

	if stopLoss <= 0 && entry.ExitRules.StopLossPct > 0 {
		stopLoss = utils.RoundPrice(entryPrice * (1 - entry.ExitRules.StopLossPct/100))
	}
	if target <= 0 && entry.ExitRules.TargetPct > 0 {
		target = utils.RoundPrice(entryPrice * (1 + entry.ExitRules.TargetPct/100))
	}

	position := &entity.Position{
		Ticker:        ticker,
		EntryPrice:    entryPrice,
		StopLossPrice: stopLoss,
		TargetPrice:   target,
		EnteredAt:     t.now(),
		Status:        entity.PositionStatusOpen,
	}
	if err := t.positionsRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	t.logger.Info("Position opened",
		logger.StringField("ticker", ticker),
		logger.Float64Field("entry_price", entryPrice),
		logger.Float64Field("stop_loss", stopLoss),
		logger.Float64Field("target", target))

	return position, nil
}

// Exit closes the open position for a ticker, stamping exit price, time and
// realized P&L. The reason becomes the position's final status.
func (t *positionTracker) Exit(ctx context.Context, ticker string, exitPrice float64, reason string) (*entity.Position, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	position, err := t.positionsRepo.FindOpen(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoOpenPosition, ticker)
	}

	if exitPrice <= 0 {
		exitPrice = position.EntryPrice
	}
	if reason == "" {
		reason = entity.PositionStatusManual
	}

	now := t.now()
	pnlPct := utils.RoundPrice((exitPrice/position.EntryPrice - 1) * 100)
	position.Status = reason
	position.ExitPrice = &exitPrice
	position.ExitedAt = &now
	position.PnLPct = &pnlPct

	if err := t.positionsRepo.Update(ctx, position); err != nil {
		return nil, err
	}

	t.logger.Info("Position closed",
		logger.StringField("ticker", ticker),
		logger.StringField("reason", reason),
		logger.Float64Field("exit_price", exitPrice),
		logger.Float64Field("pnl_pct", pnlPct))

	return position, nil
}

func (t *positionTracker) Get(ctx context.Context, ticker string) (*entity.Position, error) {
	return t.positionsRepo.FindOpen(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

func (t *positionTracker) OpenPositions(ctx context.Context) ([]entity.Position, error) {
	return t.positionsRepo.FindAllOpen(ctx)
}

func (t *positionTracker) History(ctx context.Context, limit int) ([]entity.Position, error) {
	return t.positionsRepo.FindClosed(ctx, limit)
}
