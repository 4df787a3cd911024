package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeQuoteRepo struct {
	quotes map[string]*entity.Quote
	errs   map[string]error
}

func (f *fakeQuoteRepo) GetQuote(_ context.Context, ticker string) (*entity.Quote, error) {
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	quote, ok := f.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}
	return quote, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("telegram unavailable")
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	copy(out, f.messages)
	return out
}

type monitorFixture struct {
	service   *monitorService
	tracker   PositionTracker
	alerts    repository.AlertsRepository
	quoteRepo *fakeQuoteRepo
	notifier  *fakeNotifier
}

func newMonitorFixture(t *testing.T, entries []entity.WatchlistEntry) *monitorFixture {
	t.Helper()

	watchlistRepo, err := repository.NewWatchlistRepository(filepath.Join(t.TempDir(), "watchlist.yaml"))
	require.NoError(t, err)
	require.NoError(t, watchlistRepo.Replace(entries))

	log := logger.NewNop()
	quoteRepo := &fakeQuoteRepo{quotes: map[string]*entity.Quote{}, errs: map[string]error{}}
	notifier := &fakeNotifier{}
	alertsRepo := repository.NewMemoryAlertsRepository(100)
	tracker := NewPositionTracker(watchlistRepo, repository.NewMemoryPositionsRepository(), log)
	throttle := NewAlertThrottle(log, time.Hour, 2.0, nil)

	svc := NewMonitorService(
		watchlistRepo, quoteRepo, alertsRepo, tracker,
		NewEvaluator(3.0), throttle, notifier,
		NewMarketHours(14, 21), nil, log,
	).(*monitorService)

	return &monitorFixture{
		service:   svc,
		tracker:   tracker,
		alerts:    alertsRepo,
		quoteRepo: quoteRepo,
		notifier:  notifier,
	}
}

func TestMonitorService_EntrySignalCycle(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	f.quoteRepo.quotes["RIOT"] = &entity.Quote{
		Ticker: "RIOT", LastPrice: 13.0, DailyChangePct: 4.0, Volume: 2_000_000,
	}

	result := f.service.RunCheck(context.Background())
	require.Equal(t, dto.CheckStatusOK, result.Status)
	require.Equal(t, 1, result.AlertsSent)
	require.Len(t, result.Results, 1)
	require.Equal(t, dto.ActionEntrySignal, result.Results[0].Action)
	require.Len(t, f.notifier.sent(), 1)

	records, err := f.alerts.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, string(entity.EventEntry), records[0].Kind)

	// An entry signal does not open a position by itself.
	position, err := f.tracker.Get(context.Background(), "RIOT")
	require.NoError(t, err)
	require.Nil(t, position)
}

func TestMonitorService_DuplicateSignalThrottled(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	f.quoteRepo.quotes["RIOT"] = &entity.Quote{
		Ticker: "RIOT", LastPrice: 13.0, DailyChangePct: 4.0, Volume: 2_000_000,
	}

	first := f.service.RunCheck(context.Background())
	require.Equal(t, 1, first.AlertsSent)

	// Unchanged quote, unchanged position: nothing new goes out.
	second := f.service.RunCheck(context.Background())
	require.Equal(t, 0, second.AlertsSent)
	require.Len(t, f.notifier.sent(), 1)
}

func TestMonitorService_StopLossClosesPosition(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	ctx := context.Background()

	_, err := f.tracker.Enter(ctx, "RIOT", 10.0, 0, 0)
	require.NoError(t, err)

	f.quoteRepo.quotes["RIOT"] = &entity.Quote{Ticker: "RIOT", LastPrice: 8.0}

	result := f.service.RunCheck(ctx)
	require.Equal(t, 1, result.AlertsSent)
	require.Equal(t, dto.ActionExit, result.Results[0].Action)

	position, err := f.tracker.Get(ctx, "RIOT")
	require.NoError(t, err)
	require.Nil(t, position)

	history, err := f.tracker.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, entity.PositionStatusStopLoss, history[0].Status)
}

func TestMonitorService_QuoteFailureSkipsOnlyThatTicker(t *testing.T) {
	second := testEntry()
	second.Ticker = "MARA"
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry(), second})

	f.quoteRepo.errs["RIOT"] = fmt.Errorf("upstream timeout")
	f.quoteRepo.quotes["MARA"] = &entity.Quote{
		Ticker: "MARA", LastPrice: 13.0, DailyChangePct: 4.0, Volume: 2_000_000,
	}

	result := f.service.RunCheck(context.Background())
	require.Equal(t, dto.CheckStatusOK, result.Status)
	require.Len(t, result.Results, 2)

	byTicker := map[string]dto.TickerOutcome{}
	for _, outcome := range result.Results {
		byTicker[outcome.Ticker] = outcome
	}
	require.Equal(t, dto.ActionFailed, byTicker["RIOT"].Action)
	require.NotEmpty(t, byTicker["RIOT"].Error)
	require.Equal(t, dto.ActionEntrySignal, byTicker["MARA"].Action)
}

func TestMonitorService_DeliveryFailureDoesNotAbortCycle(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	f.notifier.fail = true
	ctx := context.Background()

	_, err := f.tracker.Enter(ctx, "RIOT", 10.0, 0, 0)
	require.NoError(t, err)
	f.quoteRepo.quotes["RIOT"] = &entity.Quote{Ticker: "RIOT", LastPrice: 8.0}

	result := f.service.RunCheck(ctx)
	require.Equal(t, dto.CheckStatusOK, result.Status)
	require.Equal(t, 0, result.AlertsSent)

	// The stop-loss close happened regardless of delivery.
	position, err := f.tracker.Get(ctx, "RIOT")
	require.NoError(t, err)
	require.Nil(t, position)

	// The event is still on record.
	records, err := f.alerts.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestMonitorService_OverlappingCycleReportsBusy(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})

	f.service.checkMu.Lock()
	defer f.service.checkMu.Unlock()

	result := f.service.RunCheck(context.Background())
	require.Equal(t, dto.CheckStatusBusy, result.Status)
}

func TestMonitorService_ScheduledCheckSkipsOutsideMarketHours(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	f.quoteRepo.quotes["RIOT"] = &entity.Quote{
		Ticker: "RIOT", LastPrice: 13.0, DailyChangePct: 4.0, Volume: 2_000_000,
	}

	// Sunday afternoon.
	f.service.now = func() time.Time { return time.Date(2025, 6, 8, 15, 0, 0, 0, time.UTC) }
	result := f.service.RunScheduledCheck(context.Background())
	require.Equal(t, dto.CheckStatusSkipped, result.Status)
	require.Empty(t, f.notifier.sent())

	// Monday inside the window.
	f.service.now = func() time.Time { return time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC) }
	result = f.service.RunScheduledCheck(context.Background())
	require.Equal(t, dto.CheckStatusOK, result.Status)
	require.Equal(t, 1, result.AlertsSent)
}

func TestMonitorService_StatusSnapshot(t *testing.T) {
	f := newMonitorFixture(t, []entity.WatchlistEntry{testEntry()})
	ctx := context.Background()

	f.quoteRepo.quotes["RIOT"] = &entity.Quote{Ticker: "RIOT", LastPrice: 11.0}
	_, err := f.tracker.Enter(ctx, "RIOT", 10.0, 0, 0)
	require.NoError(t, err)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	require.Contains(t, status.Watchlist, "RIOT")
	require.NotNil(t, status.Watchlist["RIOT"].Market)
	require.NotNil(t, status.Watchlist["RIOT"].Position)
	require.Len(t, status.Positions, 1)
	require.Empty(t, status.History)
}
