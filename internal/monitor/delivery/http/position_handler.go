package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/internal/monitor/dto"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/telegram"

	"github.com/labstack/echo/v4"
)

// PositionHandler handles manual position entry and exit.
type PositionHandler struct {
	tracker   service.PositionTracker
	quoteRepo repository.YahooFinanceRepository
	notifier  telegram.Notifier
	logger    *logger.Logger
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(tracker service.PositionTracker, quoteRepo repository.YahooFinanceRepository, notifier telegram.Notifier, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		tracker:   tracker,
		quoteRepo: quoteRepo,
		notifier:  notifier,
		logger:    log,
	}
}

// RegisterRoutes registers the position routes on the Echo instance.
func (h *PositionHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/position/enter", h.Enter)
	e.POST("/position/exit", h.Exit)
}

// Enter opens a position. entry_price is optional; when omitted the live
// quote is used. stop_loss and target default from the ticker's exit rules.
func (h *PositionHandler) Enter(c echo.Context) error {
	ticker := strings.TrimSpace(c.QueryParam("ticker"))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing 'ticker' parameter"})
	}

	entryPrice, err := parseOptionalFloat(c.QueryParam("entry_price"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid 'entry_price' parameter"})
	}
	stopLoss, err := parseOptionalFloat(c.QueryParam("stop_loss"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid 'stop_loss' parameter"})
	}
	target, err := parseOptionalFloat(c.QueryParam("target"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid 'target' parameter"})
	}

	ctx := c.Request().Context()

	if entryPrice == 0 {
		quote, err := h.quoteRepo.GetQuote(ctx, ticker)
		if err != nil {
			h.logger.Error("Failed to fetch entry price", logger.ErrorField(err), logger.StringField("ticker", ticker))
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "Failed to fetch current price"})
		}
		entryPrice = quote.LastPrice
	}

	position, err := h.tracker.Enter(ctx, ticker, entryPrice, stopLoss, target)
	if err != nil {
		return h.positionError(c, err)
	}

	if err := h.notifier.SendMessage(telegram.FormatPositionOpened(position)); err != nil {
		h.logger.Error("Failed to send entry confirmation", logger.ErrorField(err), logger.StringField("ticker", ticker))
	}

	return c.JSON(http.StatusOK, dto.PositionResponse{Status: "ok", Position: position})
}

// Exit closes the open position at the live price (entry price when the
// quote cannot be fetched, matching a flat close).
func (h *PositionHandler) Exit(c echo.Context) error {
	ticker := strings.TrimSpace(c.QueryParam("ticker"))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing 'ticker' parameter"})
	}

	ctx := c.Request().Context()

	var exitPrice float64
	if quote, err := h.quoteRepo.GetQuote(ctx, ticker); err == nil {
		exitPrice = quote.LastPrice
	} else {
		h.logger.Error("Failed to fetch exit price, closing at entry price",
			logger.ErrorField(err), logger.StringField("ticker", ticker))
	}

	position, err := h.tracker.Exit(ctx, ticker, exitPrice, entity.PositionStatusManual)
	if err != nil {
		return h.positionError(c, err)
	}

	if err := h.notifier.SendMessage(telegram.FormatPositionClosed(position)); err != nil {
		h.logger.Error("Failed to send exit confirmation", logger.ErrorField(err), logger.StringField("ticker", ticker))
	}

	pnl := 0.0
	if position.PnLPct != nil {
		pnl = *position.PnLPct
	}
	return c.JSON(http.StatusOK, dto.ExitPositionResponse{Status: "ok", PnLPct: pnl, Position: position})
}

func (h *PositionHandler) positionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrTickerNotInWatchlist):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrNoOpenPosition):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrPositionAlreadyOpen):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("Position operation failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

func parseOptionalFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
