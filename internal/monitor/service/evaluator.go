package service

import (
	"fmt"
	"time"

	"stock-monitor-bot/internal/entity"
	"stock-monitor-bot/pkg/utils"
)

// Evaluator turns (watchlist entry, quote, position) into at most one
// event. Evaluation is pure: it never mutates position state or performs
// I/O; the monitor service applies the resulting transitions.
type Evaluator struct {
	// watchBandPct is how close (in percent below the breakout level) a
	// price must be to produce a WATCH event.
	watchBandPct float64
}

// NewEvaluator creates an evaluator with the given watch band percentage.
func NewEvaluator(watchBandPct float64) *Evaluator {
	return &Evaluator{watchBandPct: watchBandPct}
}

// Evaluate returns the event for one ticker, or nil when nothing is worth
// notifying. With an open position only exit and warning conditions are
// considered, so an unchanged quote can never produce a duplicate entry
// signal.
func (e *Evaluator) Evaluate(entry entity.WatchlistEntry, quote entity.Quote, position *entity.Position, now time.Time) *entity.Event {
	if position != nil && position.IsOpen() {
		return e.evaluateOpenPosition(entry, quote, position, now)
	}
	return e.evaluateWatch(entry, quote)
}

// evaluateOpenPosition checks exit rules in capital-preservation order:
// stop-loss first, then target, then timeout. The first matching rule wins.
func (e *Evaluator) evaluateOpenPosition(entry entity.WatchlistEntry, quote entity.Quote, position *entity.Position, now time.Time) *entity.Event {
	rules := entry.ExitRules
	pnlPct := (quote.LastPrice - position.EntryPrice) / position.EntryPrice * 100
	daysHeld := utils.DaysSince(position.EnteredAt, now)

	event := &entity.Event{
		Ticker:   entry.Ticker,
		Quote:    quote,
		Entry:    entry,
		Position: position,
		PnLPct:   pnlPct,
	}

	switch {
	case rules.StopLossPct > 0 && pnlPct <= -rules.StopLossPct:
		event.Kind = entity.EventExit
		event.ExitReason = entity.ExitReasonStopLoss
	case rules.TargetPct > 0 && pnlPct >= rules.TargetPct:
		event.Kind = entity.EventExit
		event.ExitReason = entity.ExitReasonTarget
	case rules.MaxHoldDays > 0 && daysHeld >= rules.MaxHoldDays:
		event.Kind = entity.EventExit
		event.ExitReason = entity.ExitReasonMaxDays
	case rules.StopLossPct > 0 && pnlPct <= -rules.StopLossPct/2:
		// Drawdown past half the stop distance but not yet stopped out.
		event.Kind = entity.EventWarning
	default:
		return nil
	}

	return event
}

// evaluateWatch handles tickers without an open position. An entry signal
// takes precedence over standalone alerts; a redundant alert on the same
// cycle would only repeat what the entry message already says.
func (e *Evaluator) evaluateWatch(entry entity.WatchlistEntry, quote entity.Quote) *entity.Event {
	event := &entity.Event{
		Ticker: entry.Ticker,
		Quote:  quote,
		Entry:  entry,
	}

	if checks, passed := e.checkEntryRules(entry.EntryRules, quote); passed {
		event.Kind = entity.EventEntry
		event.Checks = checks
		return event
	}

	if alerts := e.checkAlertRules(entry.Alerts, quote); len(alerts) > 0 {
		event.Kind = entity.EventAlert
		event.Alerts = alerts
		return event
	}

	if e.nearBreakout(entry.EntryRules, quote) {
		event.Kind = entity.EventWatch
		return event
	}

	return nil
}

// checkEntryRules evaluates all active entry rules. Rules configured as
// zero are inactive; an entry with no active rule never signals.
func (e *Evaluator) checkEntryRules(rules entity.EntryRules, quote entity.Quote) ([]string, bool) {
	if !rules.HasActiveRule() {
		return nil, false
	}

	var checks []string
	passed := true

	if rules.BreakoutAbove > 0 {
		ok := quote.LastPrice > rules.BreakoutAbove
		checks = append(checks, fmt.Sprintf("Breakout >$%.2f: %s", rules.BreakoutAbove, checkMark(ok)))
		passed = passed && ok
	}
	if rules.MinDailyChangePct > 0 {
		ok := quote.DailyChangePct >= rules.MinDailyChangePct
		checks = append(checks, fmt.Sprintf("Change >=%.1f%%: %s", rules.MinDailyChangePct, checkMark(ok)))
		passed = passed && ok
	}
	if rules.MinVolume > 0 {
		ok := quote.Volume >= rules.MinVolume
		checks = append(checks, fmt.Sprintf("Volume >=%d: %s", rules.MinVolume, checkMark(ok)))
		passed = passed && ok
	}

	return checks, passed
}

func (e *Evaluator) checkAlertRules(rules entity.AlertRules, quote entity.Quote) []string {
	var alerts []string

	if rules.PriceAbove > 0 && quote.LastPrice > rules.PriceAbove {
		alerts = append(alerts, fmt.Sprintf("📈 Above $%.2f", rules.PriceAbove))
	}
	if rules.PriceBelow > 0 && quote.LastPrice < rules.PriceBelow {
		alerts = append(alerts, fmt.Sprintf("📉 Below $%.2f", rules.PriceBelow))
	}
	if rules.DailyChangeAbove > 0 && quote.DailyChangePct > rules.DailyChangeAbove {
		alerts = append(alerts, fmt.Sprintf("🚀 Pump +%.1f%%", quote.DailyChangePct))
	}
	if rules.DailyChangeBelow < 0 && quote.DailyChangePct < rules.DailyChangeBelow {
		alerts = append(alerts, fmt.Sprintf("💥 Dump %.1f%%", quote.DailyChangePct))
	}

	return alerts
}

// nearBreakout reports whether the price sits just under an active breakout
// level, within the watch band.
func (e *Evaluator) nearBreakout(rules entity.EntryRules, quote entity.Quote) bool {
	if rules.BreakoutAbove <= 0 || e.watchBandPct <= 0 {
		return false
	}
	lower := rules.BreakoutAbove * (1 - e.watchBandPct/100)
	return quote.LastPrice >= lower && quote.LastPrice <= rules.BreakoutAbove
}

func checkMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
