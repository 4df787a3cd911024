package common

const (
	// RedisKeyLastPrice caches the most recent quote per ticker.
	RedisKeyLastPrice = "last_price:%s"

	// RedisKeyAlertSent marks a delivered alert for cooldown, keyed by
	// event kind and ticker. The value is the price that triggered it.
	RedisKeyAlertSent = "alert_sent:%s:%s"
)
