package service

import (
	"context"
	"path/filepath"
	"testing"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/pkg/logger"

	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) PositionTracker {
	t.Helper()

	watchlistRepo, err := repository.NewWatchlistRepository(filepath.Join(t.TempDir(), "watchlist.yaml"))
	require.NoError(t, err)
	require.NoError(t, watchlistRepo.Replace([]entity.WatchlistEntry{testEntry()}))

	return NewPositionTracker(watchlistRepo, repository.NewMemoryPositionsRepository(), logger.NewNop())
}

func TestPositionTracker_EnterAndGet(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	position, err := tracker.Enter(ctx, "riot", 10.0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "RIOT", position.Ticker)
	require.Equal(t, 10.0, position.EntryPrice)
	// Levels default from exit rules: 15% stop, 30% target.
	require.Equal(t, 8.5, position.StopLossPrice)
	require.Equal(t, 13.0, position.TargetPrice)

	got, err := tracker.Get(ctx, "RIOT")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsOpen())
}

func TestPositionTracker_EnterFailsWhenAlreadyOpen(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Enter(ctx, "RIOT", 10.0, 0, 0)
	require.NoError(t, err)

	_, err = tracker.Enter(ctx, "RIOT", 11.0, 0, 0)
	require.ErrorIs(t, err, entity.ErrPositionAlreadyOpen)
}

func TestPositionTracker_EnterRejectsUnknownTicker(t *testing.T) {
	tracker := newTestTracker(t)

	_, err := tracker.Enter(context.Background(), "NVDA", 100.0, 0, 0)
	require.ErrorIs(t, err, entity.ErrTickerNotInWatchlist)
}

func TestPositionTracker_ExitFailsWithoutOpenPosition(t *testing.T) {
	tracker := newTestTracker(t)

	_, err := tracker.Exit(context.Background(), "RIOT", 10.0, entity.PositionStatusManual)
	require.ErrorIs(t, err, entity.ErrNoOpenPosition)
}

func TestPositionTracker_ExitClosesAndRecordsHistory(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Enter(ctx, "RIOT", 10.0, 0, 0)
	require.NoError(t, err)

	closed, err := tracker.Exit(ctx, "RIOT", 13.0, entity.PositionStatusTarget)
	require.NoError(t, err)
	require.Equal(t, entity.PositionStatusTarget, closed.Status)
	require.NotNil(t, closed.PnLPct)
	require.InDelta(t, 30.0, *closed.PnLPct, 0.001)
	require.NotNil(t, closed.ExitedAt)

	// The slot is free again.
	got, err := tracker.Get(ctx, "RIOT")
	require.NoError(t, err)
	require.Nil(t, got)

	// The closed trade shows up in history.
	history, err := tracker.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, entity.PositionStatusTarget, history[0].Status)

	// Re-entry succeeds after the close.
	_, err = tracker.Enter(ctx, "RIOT", 13.0, 0, 0)
	require.NoError(t, err)
}
