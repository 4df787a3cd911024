package entity

import (
	"fmt"
	"strings"
)

// EntryRules describes the conditions that must all hold for an entry
// signal. A value of zero (or below) disables that rule.
type EntryRules struct {
	BreakoutAbove     float64 `yaml:"breakout_above" json:"breakout_above"`
	MinDailyChangePct float64 `yaml:"min_daily_change_pct" json:"min_daily_change_pct"`
	MinVolume         int64   `yaml:"min_volume" json:"min_volume"`
}

// HasActiveRule reports whether at least one entry rule is configured.
func (r EntryRules) HasActiveRule() bool {
	return r.BreakoutAbove > 0 || r.MinDailyChangePct > 0 || r.MinVolume > 0
}

// ExitRules describes when an open position should be closed. A value of
// zero (or below) disables that rule.
type ExitRules struct {
	StopLossPct float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TargetPct   float64 `yaml:"target_pct" json:"target_pct"`
	MaxHoldDays int     `yaml:"max_hold_days" json:"max_hold_days"`
}

// AlertRules describes standalone notification thresholds, independent of
// any position. DailyChangeBelow is expressed as a negative percentage.
type AlertRules struct {
	PriceAbove       float64 `yaml:"price_above" json:"price_above"`
	PriceBelow       float64 `yaml:"price_below" json:"price_below"`
	DailyChangeAbove float64 `yaml:"daily_change_above" json:"daily_change_above"`
	DailyChangeBelow float64 `yaml:"daily_change_below" json:"daily_change_below"`
}

// WatchlistEntry is one monitored ticker with its rule configuration.
// Entries are immutable once loaded; the watchlist is replaced wholesale.
type WatchlistEntry struct {
	Ticker     string     `yaml:"ticker" json:"ticker"`
	Name       string     `yaml:"name,omitempty" json:"name,omitempty"`
	Thesis     string     `yaml:"thesis,omitempty" json:"thesis,omitempty"`
	Catalyst   string     `yaml:"catalyst,omitempty" json:"catalyst,omitempty"`
	Sector     string     `yaml:"sector,omitempty" json:"sector,omitempty"`
	RiskLevel  string     `yaml:"risk_level,omitempty" json:"risk_level,omitempty"`
	EntryRules EntryRules `yaml:"entry_rules" json:"entry_rules"`
	ExitRules  ExitRules  `yaml:"exit_rules" json:"exit_rules"`
	Alerts     AlertRules `yaml:"alerts" json:"alerts"`
}

// Validate checks the entry for a usable ticker and sane rule values.
func (w *WatchlistEntry) Validate() error {
	if strings.TrimSpace(w.Ticker) == "" {
		return fmt.Errorf("watchlist entry is missing 'ticker'")
	}
	if w.EntryRules.BreakoutAbove < 0 {
		return fmt.Errorf("%s: entry_rules.breakout_above must not be negative", w.Ticker)
	}
	if w.EntryRules.MinVolume < 0 {
		return fmt.Errorf("%s: entry_rules.min_volume must not be negative", w.Ticker)
	}
	if w.ExitRules.StopLossPct < 0 {
		return fmt.Errorf("%s: exit_rules.stop_loss_pct must not be negative", w.Ticker)
	}
	if w.ExitRules.TargetPct < 0 {
		return fmt.Errorf("%s: exit_rules.target_pct must not be negative", w.Ticker)
	}
	if w.ExitRules.MaxHoldDays < 0 {
		return fmt.Errorf("%s: exit_rules.max_hold_days must not be negative", w.Ticker)
	}
	return nil
}

// Watchlist is the top-level document of the watchlist YAML file.
type Watchlist struct {
	Entries []WatchlistEntry `yaml:"watchlist" json:"watchlist"`
}
