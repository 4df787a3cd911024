package http

import (
	"io"
	"net/http"

	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/telegram"

	"github.com/labstack/echo/v4"
)

// WatchlistHandler handles watchlist export and replacement.
type WatchlistHandler struct {
	watchlistRepo repository.WatchlistRepository
	notifier      telegram.Notifier
	logger        *logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistRepo repository.WatchlistRepository, notifier telegram.Notifier, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistRepo: watchlistRepo,
		notifier:      notifier,
		logger:        log,
	}
}

// RegisterRoutes registers the watchlist config routes on the Echo instance.
func (h *WatchlistHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/config/yaml", h.GetYAML)
	e.POST("/config/yaml", h.SetYAML)
	e.POST("/config/clear", h.Clear)
}

// GetYAML returns the current watchlist rendered as YAML.
func (h *WatchlistHandler) GetYAML(c echo.Context) error {
	rendered, err := h.watchlistRepo.ToYAML()
	if err != nil {
		h.logger.Error("Failed to render watchlist YAML", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to render watchlist"})
	}
	return c.JSON(http.StatusOK, dto.WatchlistYAMLResponse{YAML: rendered})
}

// SetYAML validates and applies a new watchlist. On validation failure the
// previous watchlist stays untouched and no cycle is started.
func (h *WatchlistHandler) SetYAML(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read request body"})
	}

	entries, err := repository.ParseWatchlistYAML(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}
	if len(entries) == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "YAML must contain a non-empty 'watchlist'"})
	}

	if err := h.watchlistRepo.Replace(entries); err != nil {
		h.logger.Error("Failed to replace watchlist", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	tickers := h.watchlistRepo.GetTickers()
	h.logger.Info("Watchlist replaced", logger.Field("tickers", tickers))

	if err := h.notifier.SendMessage(telegram.FormatWatchlistApplied(tickers)); err != nil {
		h.logger.Error("Failed to send watchlist confirmation", logger.ErrorField(err))
	}

	return c.JSON(http.StatusOK, dto.ApplyWatchlistResponse{Status: "ok", Tickers: tickers})
}

// Clear empties the watchlist.
func (h *WatchlistHandler) Clear(c echo.Context) error {
	if err := h.watchlistRepo.Clear(); err != nil {
		h.logger.Error("Failed to clear watchlist", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
