package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/config"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubMonitorService struct {
	checkResult *dto.CheckResult
	checks      int
}

func (s *stubMonitorService) RunCheck(context.Context) *dto.CheckResult {
	s.checks++
	return s.checkResult
}

func (s *stubMonitorService) RunScheduledCheck(ctx context.Context) *dto.CheckResult {
	return s.RunCheck(ctx)
}

func (s *stubMonitorService) Status(context.Context) (*dto.StatusResponse, error) {
	return &dto.StatusResponse{}, nil
}

func (s *stubMonitorService) Prices(context.Context) *dto.PricesResponse {
	return &dto.PricesResponse{}
}

func (s *stubMonitorService) Alerts(context.Context, int) ([]entity.AlertRecord, error) {
	return nil, nil
}

func (s *stubMonitorService) AnnounceStartup(context.Context) {}

type telegramFixture struct {
	handler  *TelegramHandler
	repo     repository.WatchlistRepository
	tracker  service.PositionTracker
	monitor  *stubMonitorService
	notifier *stubNotifier
}

func newTelegramFixture(t *testing.T) *telegramFixture {
	t.Helper()

	watchlistRepo, err := repository.NewWatchlistRepository(filepath.Join(t.TempDir(), "watchlist.yaml"))
	require.NoError(t, err)
	require.NoError(t, watchlistRepo.Replace(watchlistEntries(t)))

	tracker := service.NewPositionTracker(watchlistRepo, repository.NewMemoryPositionsRepository(), logger.NewNop())
	monitor := &stubMonitorService{checkResult: &dto.CheckResult{Status: dto.CheckStatusOK, AlertsSent: 2, Timestamp: time.Now()}}
	notifier := &stubNotifier{}

	cfg := &config.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.WebhookBaseURL = "https://bot.example.com"

	return &telegramFixture{
		handler:  NewTelegramHandler(monitor, watchlistRepo, tracker, notifier, cfg, logger.NewNop()),
		repo:     watchlistRepo,
		tracker:  tracker,
		monitor:  monitor,
		notifier: notifier,
	}
}

func watchlistEntries(t *testing.T) []entity.WatchlistEntry {
	t.Helper()
	entries, err := repository.ParseWatchlistYAML([]byte(handlerWatchlistYAML))
	require.NoError(t, err)
	return entries
}

func postUpdate(handler echo.HandlerFunc, text string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"update_id":1,"message":{"message_id":1,"text":%s,"chat":{"id":42}}}`, mustJSON(text))
	return doBodyRequest(handler, http.MethodPost, "/telegram/webhook", echo.MIMEApplicationJSON, body)
}

func mustJSON(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

func TestTelegramWebhook_StatusCommand(t *testing.T) {
	f := newTelegramFixture(t)

	_, err := f.tracker.Enter(context.Background(), "RIOT", 10.0, 0, 0)
	require.NoError(t, err)

	rec := postUpdate(f.handler.Webhook, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "STATUS")
	require.Contains(t, f.notifier.messages[0], "RIOT")
	require.Contains(t, f.notifier.messages[0], "Open positions: 1")
}

func TestTelegramWebhook_CheckCommand(t *testing.T) {
	f := newTelegramFixture(t)

	rec := postUpdate(f.handler.Webhook, "/check")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.monitor.checks)

	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "Alerts sent: 2")
}

func TestTelegramWebhook_ClearCommand(t *testing.T) {
	f := newTelegramFixture(t)

	rec := postUpdate(f.handler.Webhook, "/clear")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Empty(t, f.repo.GetTickers())
	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "cleared")
}

func TestTelegramWebhook_PromptCommand(t *testing.T) {
	f := newTelegramFixture(t)

	rec := postUpdate(f.handler.Webhook, "/PROMPT")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "PROMPT TO COPY")
	require.Contains(t, f.notifier.messages[0], "watchlist:")
}

func TestTelegramWebhook_YAMLPasteReplacesWatchlist(t *testing.T) {
	f := newTelegramFixture(t)

	pasted := "```yaml\nwatchlist:\n  - ticker: mara\n    entry_rules:\n      breakout_above: 20.0\n```"
	rec := postUpdate(f.handler.Webhook, pasted)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, []string{"MARA"}, f.repo.GetTickers())
	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "NEW CONFIG")
	require.Contains(t, f.notifier.messages[0], "MARA")
}

func TestTelegramWebhook_InvalidYAMLPasteKeepsWatchlist(t *testing.T) {
	f := newTelegramFixture(t)

	rec := postUpdate(f.handler.Webhook, "watchlist:\n  - name: No Ticker\n")
	require.Equal(t, http.StatusOK, rec.Code)

	// The previous watchlist is untouched and the error goes to the chat.
	require.Equal(t, []string{"RIOT"}, f.repo.GetTickers())
	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "❌")
}

func TestTelegramWebhook_UnknownTextGetsHelp(t *testing.T) {
	f := newTelegramFixture(t)

	rec := postUpdate(f.handler.Webhook, "hello bot")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.notifier.messages, 1)
	require.Contains(t, f.notifier.messages[0], "/prompt")
	require.Contains(t, f.notifier.messages[0], "/check")
}

func TestTelegramWebhook_MalformedUpdateStillAcknowledged(t *testing.T) {
	f := newTelegramFixture(t)

	tests := []string{
		"not json at all",
		`{}`,
		`{"message":{"chat":{"id":42}}}`,
	}
	for _, body := range tests {
		rec := doBodyRequest(f.handler.Webhook, http.MethodPost, "/telegram/webhook", echo.MIMEApplicationJSON, body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Empty(t, f.notifier.messages)
}

func TestTelegramSetup(t *testing.T) {
	f := newTelegramFixture(t)

	rec := doBodyRequest(f.handler.Setup, http.MethodGet, "/telegram/setup", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TelegramSetupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "https://bot.example.com/telegram/webhook", resp.WebhookURL)
	require.Contains(t, resp.SetupURL, "https://api.telegram.org/bot123:abc/setWebhook")
}

func TestTelegramSetup_WithoutToken(t *testing.T) {
	f := newTelegramFixture(t)
	f.handler.cfg.Telegram.Token = ""

	rec := doBodyRequest(f.handler.Setup, http.MethodGet, "/telegram/setup", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TelegramSetupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.SetupURL)
	require.Contains(t, resp.Instructions, "TELEGRAM_TOKEN")
}

func TestPromptEndpoint(t *testing.T) {
	f := newTelegramFixture(t)

	rec := doBodyRequest(f.handler.Prompt, http.MethodGet, "/prompt?risk=low&sector=energy&stocks=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Prompt, "Parameters: low risk, 5 stocks, energy sector")
	require.Contains(t, resp.Prompt, "watchlist:")
	require.NotEmpty(t, resp.Usage)
}
