package config

import (
	"time"

	"stock-monitor-bot/pkg/config"
)

// Telegram holds configuration for the Telegram notifier. WebhookBaseURL
// is the public base URL of this service, used to build the setWebhook
// link for the chat command interface.
type Telegram struct {
	Token          string `mapstructure:"token"`
	ChatID         int64  `mapstructure:"chat_id"`
	WebhookBaseURL string `mapstructure:"webhook_base_url"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// Market holds the market-hours window used to gate scheduled checks.
// Hours are in UTC; the window spans [OpenHourUTC, CloseHourUTC).
type Market struct {
	OpenHourUTC  int `mapstructure:"open_hour_utc"`
	CloseHourUTC int `mapstructure:"close_hour_utc"`
}

// Monitor holds evaluation-cycle tuning.
type Monitor struct {
	WatchlistFile               string        `mapstructure:"watchlist_file"`
	WatchBandPercent            float64       `mapstructure:"watch_band_percent"`
	AlertCooldown               time.Duration `mapstructure:"alert_cooldown"`
	AlertResendThresholdPercent float64       `mapstructure:"alert_resend_threshold_percent"`
}

// Scheduler holds the optional in-process cron runner settings.
type Scheduler struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Config holds the full configuration for the monitor service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	API          config.API      `mapstructure:"api"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	Telegram     Telegram        `mapstructure:"telegram"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Market       Market          `mapstructure:"market"`
	Monitor      Monitor         `mapstructure:"monitor"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
}

// Load loads the monitor configuration from the given path and applies
// defaults for values the file leaves unset.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 8000
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.YahooFinance.BaseURL == "" {
		cfg.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.YahooFinance.MaxRequestPerMinute == 0 {
		cfg.YahooFinance.MaxRequestPerMinute = 60
	}
	if cfg.YahooFinance.CacheTTL == 0 {
		cfg.YahooFinance.CacheTTL = time.Minute
	}
	if cfg.Market.OpenHourUTC == 0 && cfg.Market.CloseHourUTC == 0 {
		cfg.Market.OpenHourUTC = 14
		cfg.Market.CloseHourUTC = 21
	}
	if cfg.Monitor.WatchlistFile == "" {
		cfg.Monitor.WatchlistFile = "watchlist.yaml"
	}
	if cfg.Monitor.WatchBandPercent == 0 {
		cfg.Monitor.WatchBandPercent = 3.0
	}
	if cfg.Monitor.AlertCooldown == 0 {
		cfg.Monitor.AlertCooldown = time.Hour
	}
	if cfg.Monitor.AlertResendThresholdPercent == 0 {
		cfg.Monitor.AlertResendThresholdPercent = 2.0
	}

	return &cfg, nil
}
