package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"stock-monitor-bot/internal/monitor/config"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// TelegramHandler drives the chat command interface. Updates arrive on the
// webhook route; replies go to the configured chat through the notifier.
// Supported commands: /prompt, /status, /check, /clear, and pasting a
// watchlist YAML document straight into the chat.
type TelegramHandler struct {
	monitorService service.MonitorService
	watchlistRepo  repository.WatchlistRepository
	tracker        service.PositionTracker
	notifier       telegram.Notifier
	cfg            *config.Config
	logger         *logger.Logger
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(
	monitorService service.MonitorService,
	watchlistRepo repository.WatchlistRepository,
	tracker service.PositionTracker,
	notifier telegram.Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *TelegramHandler {
	return &TelegramHandler{
		monitorService: monitorService,
		watchlistRepo:  watchlistRepo,
		tracker:        tracker,
		notifier:       notifier,
		cfg:            cfg,
		logger:         log,
	}
}

// RegisterRoutes registers the Telegram routes on the Echo instance.
func (h *TelegramHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/telegram/webhook", h.Webhook)
	e.GET("/telegram/setup", h.Setup)
	e.GET("/prompt", h.Prompt)
}

// Webhook receives a Telegram update and runs the matching command. It
// always answers 200: Telegram retries non-2xx deliveries, and a malformed
// or unhandled update is not worth a retry loop.
func (h *TelegramHandler) Webhook(c echo.Context) error {
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil || update.Message == nil {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}

	h.handleCommand(c.Request().Context(), text)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *TelegramHandler) handleCommand(ctx context.Context, text string) {
	switch strings.ToLower(text) {
	case "/prompt":
		prompt := telegram.FormatWatchlistPrompt("high risk, 2-3 stocks, any sector")
		h.send(telegram.FormatPromptMessage(prompt))
	case "/status":
		positions, err := h.tracker.OpenPositions(ctx)
		if err != nil {
			h.logger.Error("Failed to load positions for chat status", logger.ErrorField(err))
		}
		h.send(telegram.FormatBotStatus(h.watchlistRepo.GetTickers(), len(positions)))
	case "/check":
		result := h.monitorService.RunCheck(ctx)
		h.send(telegram.FormatCheckSummary(result.AlertsSent))
	case "/clear":
		if err := h.watchlistRepo.Clear(); err != nil {
			h.logger.Error("Failed to clear watchlist from chat", logger.ErrorField(err))
			h.send(fmt.Sprintf("❌ Failed to clear watchlist: %s", err))
			return
		}
		h.send(telegram.FormatWatchlistCleared())
	default:
		if strings.Contains(strings.ToLower(text), "watchlist:") {
			h.applyYAML(text)
			return
		}
		h.send(telegram.FormatCommandHelp())
	}
}

// applyYAML treats a pasted message as a watchlist document, tolerating
// markdown code fences around it.
func (h *TelegramHandler) applyYAML(text string) {
	cleaned := strings.ReplaceAll(text, "```yaml", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	entries, err := repository.ParseWatchlistYAML([]byte(strings.TrimSpace(cleaned)))
	if err != nil {
		h.send(fmt.Sprintf("❌ Invalid watchlist YAML: %s", err))
		return
	}
	if len(entries) == 0 {
		h.send("❌ YAML must contain a non-empty 'watchlist'")
		return
	}

	if err := h.watchlistRepo.Replace(entries); err != nil {
		h.logger.Error("Failed to replace watchlist from chat", logger.ErrorField(err))
		h.send(fmt.Sprintf("❌ Failed to apply watchlist: %s", err))
		return
	}

	tickers := h.watchlistRepo.GetTickers()
	h.logger.Info("Watchlist replaced from chat", logger.Field("tickers", tickers))
	h.send(telegram.FormatWatchlistApplied(tickers))
}

func (h *TelegramHandler) send(message string) {
	if err := h.notifier.SendMessage(message); err != nil {
		h.logger.Error("Failed to deliver chat reply", logger.ErrorField(err))
	}
}

// Setup returns the one-time link that points Telegram's webhook at this
// service.
func (h *TelegramHandler) Setup(c echo.Context) error {
	if h.cfg.Telegram.Token == "" {
		return c.JSON(http.StatusOK, dto.TelegramSetupResponse{
			Instructions: "Set TELEGRAM_TOKEN and telegram.webhook_base_url, then reload this page",
		})
	}

	webhookURL := strings.TrimRight(h.cfg.Telegram.WebhookBaseURL, "/") + "/telegram/webhook"
	setupURL := fmt.Sprintf("https://api.telegram.org/bot%s/setWebhook?url=%s",
		h.cfg.Telegram.Token, url.QueryEscape(webhookURL))

	return c.JSON(http.StatusOK, dto.TelegramSetupResponse{
		Instructions: "Open setup_url in a browser to register the webhook; the bot then answers chat commands",
		SetupURL:     setupURL,
		WebhookURL:   webhookURL,
	})
}

// Prompt returns the config-generation prompt with optional risk, sector
// and stocks query parameters.
func (h *TelegramHandler) Prompt(c echo.Context) error {
	risk := c.QueryParam("risk")
	if risk == "" {
		risk = "high"
	}
	sector := c.QueryParam("sector")
	if sector == "" {
		sector = "any"
	}
	stocks := c.QueryParam("stocks")
	if stocks == "" {
		stocks = "3"
	}

	params := fmt.Sprintf("%s risk, %s stocks, %s sector", risk, stocks, sector)
	return c.JSON(http.StatusOK, dto.PromptResponse{
		Prompt: telegram.FormatWatchlistPrompt(params),
		Usage:  "Copy this prompt into an LLM, then paste the YAML reply into the chat or POST it to /config/yaml",
	})
}
