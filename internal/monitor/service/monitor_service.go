package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/pkg/common"
	"stock-monitor-bot/pkg/logger"
	redisPkg "stock-monitor-bot/pkg/redis"
	"stock-monitor-bot/pkg/telegram"
	"stock-monitor-bot/pkg/utils"

	"gorm.io/datatypes"
)

// MonitorService runs the evaluation cycle and serves the state snapshots
// behind the HTTP surface.
type MonitorService interface {
	RunCheck(ctx context.Context) *dto.CheckResult
	RunScheduledCheck(ctx context.Context) *dto.CheckResult
	Status(ctx context.Context) (*dto.StatusResponse, error)
	Prices(ctx context.Context) *dto.PricesResponse
	Alerts(ctx context.Context, limit int) ([]entity.AlertRecord, error)
	AnnounceStartup(ctx context.Context)
}

type monitorService struct {
	watchlistRepo repository.WatchlistRepository
	quoteRepo     repository.YahooFinanceRepository
	alertsRepo    repository.AlertsRepository
	tracker       PositionTracker
	evaluator     *Evaluator
	throttle      *AlertThrottle
	notifier      telegram.Notifier
	marketHours   MarketHours
	redisClient   *redisPkg.Client
	logger        *logger.Logger

	// checkMu serializes overlapping cron triggers so two cycles never
	// race on position mutation.
	checkMu sync.Mutex
	now     func() time.Time
}

// NewMonitorService wires the evaluation cycle. redisClient may be nil.
func NewMonitorService(
	watchlistRepo repository.WatchlistRepository,
	quoteRepo repository.YahooFinanceRepository,
	alertsRepo repository.AlertsRepository,
	tracker PositionTracker,
	evaluator *Evaluator,
	throttle *AlertThrottle,
	notifier telegram.Notifier,
	marketHours MarketHours,
	redisClient *redisPkg.Client,
	log *logger.Logger,
) MonitorService {
	return &monitorService{
		watchlistRepo: watchlistRepo,
		quoteRepo:     quoteRepo,
		alertsRepo:    alertsRepo,
		tracker:       tracker,
		evaluator:     evaluator,
		throttle:      throttle,
		notifier:      notifier,
		marketHours:   marketHours,
		redisClient:   redisClient,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RunCheck runs one full pass over the watchlist. Per-ticker failures are
// logged and skipped; the cycle always runs to completion and returns a
// summary of per-ticker outcomes.
func (s *monitorService) RunCheck(ctx context.Context) *dto.CheckResult {
	if !s.checkMu.TryLock() {
		return &dto.CheckResult{
			Status:    dto.CheckStatusBusy,
			Reason:    "a check cycle is already running",
			Timestamp: s.now(),
		}
	}
	defer s.checkMu.Unlock()

	result := &dto.CheckResult{
		Status:    dto.CheckStatusOK,
		Timestamp: s.now(),
		Results:   []dto.TickerOutcome{},
	}

	for _, entry := range s.watchlistRepo.GetAll() {
		result.Results = append(result.Results, s.checkTicker(ctx, entry, result))
	}

	s.logger.Info("Check cycle completed",
		logger.IntField("tickers", len(result.Results)),
		logger.IntField("alerts_sent", result.AlertsSent))

	return result
}

// RunScheduledCheck is the cron-driven variant: outside market hours it
// skips the whole cycle so the bot never acts on stale closed-market
// quotes.
func (s *monitorService) RunScheduledCheck(ctx context.Context) *dto.CheckResult {
	if !s.marketHours.IsOpen(s.now()) {
		return &dto.CheckResult{
			Status:    dto.CheckStatusSkipped,
			Reason:    "market closed",
			Timestamp: s.now(),
		}
	}
	return s.RunCheck(ctx)
}

func (s *monitorService) checkTicker(ctx context.Context, entry entity.WatchlistEntry, result *dto.CheckResult) dto.TickerOutcome {
	outcome := dto.TickerOutcome{Ticker: entry.Ticker, Action: dto.ActionNone}

	quote, err := s.quoteRepo.GetQuote(ctx, entry.Ticker)
	if err != nil {
		s.logger.Error("Failed to fetch quote, skipping ticker",
			logger.ErrorField(err), logger.StringField("ticker", entry.Ticker))
		outcome.Action = dto.ActionFailed
		outcome.Error = err.Error()
		return outcome
	}
	s.cacheLastPrice(ctx, quote)

	position, err := s.tracker.Get(ctx, entry.Ticker)
	if err != nil {
		s.logger.Error("Failed to load position, skipping ticker",
			logger.ErrorField(err), logger.StringField("ticker", entry.Ticker))
		outcome.Action = dto.ActionFailed
		outcome.Error = err.Error()
		return outcome
	}

	event := s.evaluator.Evaluate(entry, *quote, position, s.now())
	if event == nil {
		if position != nil {
			outcome.Action = dto.ActionHold
			outcome.PnLPct = utils.ToPointer(utils.RoundPrice((quote.LastPrice/position.EntryPrice - 1) * 100))
		}
		return outcome
	}

	outcome.Action = actionForEvent(event)
	if position != nil {
		outcome.PnLPct = utils.ToPointer(utils.RoundPrice(event.PnLPct))
	}

	// Apply the position transition before notifying: a delivery failure
	// must not leave a stopped-out position open.
	if event.Kind == entity.EventExit {
		if _, err := s.tracker.Exit(ctx, entry.Ticker, quote.LastPrice, string(event.ExitReason)); err != nil {
			s.logger.Error("Failed to close position",
				logger.ErrorField(err), logger.StringField("ticker", entry.Ticker))
			outcome.Error = err.Error()
		}
	}

	s.dispatch(ctx, event, result)
	return outcome
}

// dispatch formats, throttles, delivers and records one event. Exit events
// bypass the throttle; the position transition makes them one-shot anyway.
func (s *monitorService) dispatch(ctx context.Context, event *entity.Event, result *dto.CheckResult) {
	if event.Kind != entity.EventExit &&
		!s.throttle.ShouldSend(ctx, event.Kind, event.Ticker, event.Quote.LastPrice) {
		return
	}

	message := telegram.FormatEventForTelegram(event)
	if err := s.notifier.SendMessage(message); err != nil {
		s.logger.Error("Failed to deliver notification",
			logger.ErrorField(err),
			logger.StringField("ticker", event.Ticker),
			logger.StringField("kind", string(event.Kind)))
	} else {
		result.AlertsSent++
		s.throttle.MarkSent(ctx, event.Kind, event.Ticker, event.Quote.LastPrice)
	}

	s.recordAlert(ctx, event, message)
}

func (s *monitorService) recordAlert(ctx context.Context, event *entity.Event, message string) {
	record := &entity.AlertRecord{
		Ticker:  event.Ticker,
		Kind:    string(event.Kind),
		Message: message,
	}
	if snapshot, err := json.Marshal(event.Quote); err == nil {
		record.Quote = datatypes.JSON(snapshot)
	}

	if err := s.alertsRepo.Append(ctx, record); err != nil {
		s.logger.Error("Failed to append alert record",
			logger.ErrorField(err), logger.StringField("ticker", event.Ticker))
	}
}

func (s *monitorService) cacheLastPrice(ctx context.Context, quote *entity.Quote) {
	if s.redisClient == nil {
		return
	}

	key := fmt.Sprintf(common.RedisKeyLastPrice, quote.Ticker)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     quote.LastPrice,
		"timestamp": quote.FetchedAt.Unix(),
	})
	pipe.Expire(ctx, key, 30*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to cache last price",
			logger.ErrorField(err), logger.StringField("ticker", quote.Ticker))
	}
}

// Status assembles the full state snapshot: per-ticker market data, rule
// config and open position, plus the recent trade history.
func (s *monitorService) Status(ctx context.Context) (*dto.StatusResponse, error) {
	response := &dto.StatusResponse{
		Watchlist: make(map[string]dto.TickerStatus),
	}

	for _, entry := range s.watchlistRepo.GetAll() {
		status := dto.TickerStatus{Config: entry}

		if quote, err := s.quoteRepo.GetQuote(ctx, entry.Ticker); err == nil {
			status.Market = quote
		} else {
			s.logger.Error("Failed to fetch quote for status",
				logger.ErrorField(err), logger.StringField("ticker", entry.Ticker))
		}

		if position, err := s.tracker.Get(ctx, entry.Ticker); err == nil {
			status.Position = position
		}

		response.Watchlist[entry.Ticker] = status
	}

	positions, err := s.tracker.OpenPositions(ctx)
	if err != nil {
		return nil, err
	}
	response.Positions = positions

	history, err := s.tracker.History(ctx, 10)
	if err != nil {
		return nil, err
	}
	response.History = history

	return response, nil
}

// Prices fetches the latest quote for every watched ticker. Failures are
// reported per ticker.
func (s *monitorService) Prices(ctx context.Context) *dto.PricesResponse {
	response := &dto.PricesResponse{
		Quotes: make(map[string]*entity.Quote),
		Errors: make(map[string]string),
	}

	for _, ticker := range s.watchlistRepo.GetTickers() {
		quote, err := s.quoteRepo.GetQuote(ctx, ticker)
		if err != nil {
			response.Errors[ticker] = err.Error()
			continue
		}
		response.Quotes[ticker] = quote
	}

	return response
}

func (s *monitorService) Alerts(ctx context.Context, limit int) ([]entity.AlertRecord, error) {
	return s.alertsRepo.FindRecent(ctx, limit)
}

// AnnounceStartup sends the online message with the current tickers.
// Delivery failure is logged only.
func (s *monitorService) AnnounceStartup(_ context.Context) {
	message := telegram.FormatStartupMessage(s.watchlistRepo.GetTickers())
	if err := s.notifier.SendMessage(message); err != nil {
		s.logger.Error("Failed to send startup announcement", logger.ErrorField(err))
	}
}

func actionForEvent(event *entity.Event) string {
	switch event.Kind {
	case entity.EventEntry:
		return dto.ActionEntrySignal
	case entity.EventExit:
		return dto.ActionExit
	case entity.EventAlert:
		return dto.ActionAlert
	case entity.EventWatch:
		return dto.ActionWatch
	case entity.EventWarning:
		return dto.ActionWarning
	default:
		return dto.ActionNone
	}
}
