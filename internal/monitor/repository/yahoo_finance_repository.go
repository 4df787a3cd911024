package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/config"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// YahooFinanceRepository fetches the latest quote for a ticker. A fetch
// failure is per-ticker: callers log it and skip that ticker.
type YahooFinanceRepository interface {
	GetQuote(ctx context.Context, ticker string) (*entity.Quote, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	quoteCache     *cache.Cache
}

// NewYahooFinanceRepository creates a quote repository backed by the Yahoo
// Finance v8 chart API, with a request limiter and a short-lived cache so
// back-to-back cycles and the /prices endpoint do not hammer the API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		quoteCache:     cache.New(cfg.YahooFinance.CacheTTL, 2*cfg.YahooFinance.CacheTTL),
	}
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, ticker string) (*entity.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if cached, found := r.quoteCache.Get(ticker); found {
		if quote, ok := cached.(*entity.Quote); ok {
			return quote, nil
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response for %s: %w", ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned status %d", ticker, resp.StatusCode)
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode quote response for %s: %w", ticker, err)
	}

	quote, err := buildQuote(ticker, &chart)
	if err != nil {
		return nil, err
	}

	r.log.DebugContext(ctx, "Fetched quote",
		logger.StringField("ticker", ticker),
		logger.Float64Field("price", quote.LastPrice),
		logger.Float64Field("daily_change_pct", quote.DailyChangePct))

	r.quoteCache.Set(ticker, quote, cache.DefaultExpiration)
	return quote, nil
}

func buildQuote(ticker string, chart *dto.YahooChartResponse) (*entity.Quote, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("quote API error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}
	bars := result.Indicators.Quote[0]

	quote := &entity.Quote{
		Ticker:    ticker,
		LastPrice: result.Meta.RegularMarketPrice,
		FetchedAt: time.Now().UTC(),
	}

	var closes []float64
	for _, c := range bars.Close {
		if c != nil {
			closes = append(closes, *c)
		}
	}
	if quote.LastPrice == 0 {
		if len(closes) == 0 {
			return nil, fmt.Errorf("no price data for %s", ticker)
		}
		quote.LastPrice = closes[len(closes)-1]
	}

	// Previous close: the last full bar before the current one.
	quote.PrevClose = result.Meta.ChartPreviousClose
	if len(closes) > 1 {
		quote.PrevClose = closes[len(closes)-2]
	}
	if quote.PrevClose > 0 {
		quote.DailyChangePct = (quote.LastPrice - quote.PrevClose) / quote.PrevClose * 100
	}

	for _, h := range bars.High {
		if h != nil && *h > quote.FiveDayHigh {
			quote.FiveDayHigh = *h
		}
	}
	for _, l := range bars.Low {
		if l != nil && (quote.FiveDayLow == 0 || *l < quote.FiveDayLow) {
			quote.FiveDayLow = *l
		}
	}
	for i := len(bars.Volume) - 1; i >= 0; i-- {
		if bars.Volume[i] != nil {
			quote.Volume = *bars.Volume[i]
			break
		}
	}

	return quote, nil
}
