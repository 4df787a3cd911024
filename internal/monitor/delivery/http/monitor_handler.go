package http

import (
	"net/http"
	"strconv"
	"time"

	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/telegram"

	"github.com/labstack/echo/v4"
)

// MonitorHandler handles the check cycle and read-only state endpoints.
type MonitorHandler struct {
	monitorService service.MonitorService
	watchlist      watchlistReader
	notifier       telegram.Notifier
	logger         *logger.Logger
}

type watchlistReader interface {
	GetTickers() []string
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService service.MonitorService, watchlist watchlistReader, notifier telegram.Notifier, log *logger.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		watchlist:      watchlist,
		notifier:       notifier,
		logger:         log,
	}
}

// RegisterRoutes registers the monitor routes on the Echo instance.
func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/status", h.Status)
	e.GET("/prices", h.Prices)
	e.POST("/check", h.Check)
	e.POST("/cron/check", h.CronCheck)
	e.GET("/alerts", h.Alerts)
	e.POST("/test-telegram", h.TestTelegram)
}

// Health reports liveness and the monitored tickers.
func (h *MonitorHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Tickers: h.watchlist.GetTickers(),
	})
}

// Status returns the full state snapshot.
func (h *MonitorHandler) Status(c echo.Context) error {
	response, err := h.monitorService.Status(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to build status snapshot", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to build status snapshot"})
	}
	return c.JSON(http.StatusOK, response)
}

// Prices returns the latest quotes for all watched tickers.
func (h *MonitorHandler) Prices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.monitorService.Prices(c.Request().Context()))
}

// Check runs a manual evaluation cycle, market hours notwithstanding.
func (h *MonitorHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, h.monitorService.RunCheck(c.Request().Context()))
}

// CronCheck runs the scheduled evaluation cycle; outside the market-hours
// window it reports the cycle as skipped.
func (h *MonitorHandler) CronCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, h.monitorService.RunScheduledCheck(c.Request().Context()))
}

// Alerts returns the alert history, newest first.
func (h *MonitorHandler) Alerts(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = parsed
	}

	records, err := h.monitorService.Alerts(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load alert history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load alert history"})
	}
	return c.JSON(http.StatusOK, records)
}

// TestTelegram sends a delivery smoke-test message.
func (h *MonitorHandler) TestTelegram(c echo.Context) error {
	err := h.notifier.SendMessage(telegram.FormatTestMessage(time.Now()))
	if err != nil {
		h.logger.Error("Telegram smoke test failed", logger.ErrorField(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": err == nil})
}
