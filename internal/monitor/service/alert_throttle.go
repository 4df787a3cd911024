package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/pkg/common"
	"stock-monitor-bot/pkg/logger"
	redisPkg "stock-monitor-bot/pkg/redis"

	"github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
)

// AlertThrottle suppresses repeats of the same (kind, ticker) notification
// inside the cooldown window, unless price has moved past the resend
// threshold since the last send. Backed by Redis when available so the
// cooldown survives restarts; falls back to an in-process cache otherwise.
type AlertThrottle struct {
	logger             *logger.Logger
	cooldown           time.Duration
	resendThresholdPct float64
	redisClient        *redisPkg.Client
	inmemory           *cache.Cache
}

// NewAlertThrottle creates a throttle. redisClient may be nil.
func NewAlertThrottle(log *logger.Logger, cooldown time.Duration, resendThresholdPct float64, redisClient *redisPkg.Client) *AlertThrottle {
	return &AlertThrottle{
		logger:             log,
		cooldown:           cooldown,
		resendThresholdPct: resendThresholdPct,
		redisClient:        redisClient,
		inmemory:           cache.New(cooldown, 2*cooldown),
	}
}

// ShouldSend reports whether a notification for this event should go out.
// Unknown (kind, ticker) pairs always send; a cache/redis read failure
// fails open so a broken cache never silences alerts.
func (t *AlertThrottle) ShouldSend(ctx context.Context, kind entity.EventKind, ticker string, price float64) bool {
	lastPrice, found, err := t.lastSentPrice(ctx, kind, ticker)
	if err != nil {
		t.logger.Error("Failed to read alert cooldown state", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return true
	}
	if !found {
		return true
	}

	if lastPrice > 0 {
		percentChange := math.Abs(price-lastPrice) / lastPrice * 100
		if percentChange >= t.resendThresholdPct {
			t.logger.Debug("Resending alert past threshold",
				logger.StringField("ticker", ticker),
				logger.StringField("kind", string(kind)),
				logger.Float64Field("percent_change", percentChange))
			return true
		}
	}

	t.logger.Debug("Suppressing duplicate alert",
		logger.StringField("ticker", ticker),
		logger.StringField("kind", string(kind)))
	return false
}

// MarkSent records a delivered notification for cooldown tracking.
func (t *AlertThrottle) MarkSent(ctx context.Context, kind entity.EventKind, ticker string, price float64) {
	key := fmt.Sprintf(common.RedisKeyAlertSent, kind, ticker)

	if t.redisClient != nil {
		if err := t.redisClient.Set(ctx, key, price, t.cooldown).Err(); err != nil {
			t.logger.Error("Failed to store alert cooldown state", logger.ErrorField(err), logger.StringField("ticker", ticker))
		}
		return
	}
	t.inmemory.Set(key, price, cache.DefaultExpiration)
}

func (t *AlertThrottle) lastSentPrice(ctx context.Context, kind entity.EventKind, ticker string) (float64, bool, error) {
	key := fmt.Sprintf(common.RedisKeyAlertSent, kind, ticker)

	if t.redisClient != nil {
		value, err := t.redisClient.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false, err
		}
		return price, true, nil
	}

	cached, found := t.inmemory.Get(key)
	if !found {
		return 0, false, nil
	}
	price, ok := cached.(float64)
	if !ok {
		return 0, false, nil
	}
	return price, true, nil
}
