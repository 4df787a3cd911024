package telegram

import (
	"fmt"
	"strings"
	"time"

	"stock-monitor-bot/internal/entity"
)

// FormatEventForTelegram renders an evaluation event as an HTML message,
// emoji-tagged by kind.
func FormatEventForTelegram(event *entity.Event) string {
	switch event.Kind {
	case entity.EventEntry:
		return formatEntryEvent(event)
	case entity.EventExit:
		return formatExitEvent(event)
	case entity.EventAlert:
		return formatAlertEvent(event)
	case entity.EventWatch:
		return formatWatchEvent(event)
	case entity.EventWarning:
		return formatWarningEvent(event)
	default:
		return fmt.Sprintf("<b>%s</b> - %s", event.Kind, event.Ticker)
	}
}

func formatEntryEvent(event *entity.Event) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🟢 <b>ENTRY SIGNAL</b> - %s\n\n", event.Ticker))
	builder.WriteString(fmt.Sprintf("💰 $%.2f (%+.1f%%)\n", event.Quote.LastPrice, event.Quote.DailyChangePct))
	if event.Entry.Thesis != "" {
		builder.WriteString(fmt.Sprintf("📋 %s\n", event.Entry.Thesis))
	}
	if len(event.Checks) > 0 {
		builder.WriteString(fmt.Sprintf("\n✅ %s\n", strings.Join(event.Checks, " | ")))
	}

	stop := event.Quote.LastPrice * (1 - event.Entry.ExitRules.StopLossPct/100)
	target := event.Quote.LastPrice * (1 + event.Entry.ExitRules.TargetPct/100)
	builder.WriteString(fmt.Sprintf("\nEntry: $%.2f\nStop: $%.2f | Target: $%.2f", event.Quote.LastPrice, stop, target))

	return builder.String()
}

func formatExitEvent(event *entity.Event) string {
	var reason string
	switch event.ExitReason {
	case entity.ExitReasonStopLoss:
		reason = fmt.Sprintf("🛑 STOP LOSS: %.1f%%", event.PnLPct)
	case entity.ExitReasonTarget:
		reason = fmt.Sprintf("🎯 TARGET: +%.1f%%", event.PnLPct)
	case entity.ExitReasonMaxDays:
		reason = fmt.Sprintf("⏰ TIMEOUT: %+.1f%%", event.PnLPct)
	default:
		reason = fmt.Sprintf("P&L: %+.1f%%", event.PnLPct)
	}

	return fmt.Sprintf("🔴 <b>EXIT</b> - %s\n\n%s\n\nEntry: $%.2f → $%.2f",
		event.Ticker, reason, event.Position.EntryPrice, event.Quote.LastPrice)
}

func formatAlertEvent(event *entity.Event) string {
	return fmt.Sprintf("⚡ <b>%s</b> $%.2f\n%s",
		event.Ticker, event.Quote.LastPrice, strings.Join(event.Alerts, "\n"))
}

func formatWatchEvent(event *entity.Event) string {
	return fmt.Sprintf("👀 <b>%s</b> $%.2f approaching breakout level $%.2f",
		event.Ticker, event.Quote.LastPrice, event.Entry.EntryRules.BreakoutAbove)
}

func formatWarningEvent(event *entity.Event) string {
	return fmt.Sprintf("⚠️ <b>WARNING</b> - %s\n\nDrawdown %.1f%% (stop at -%.1f%%)\nEntry: $%.2f → $%.2f",
		event.Ticker, event.PnLPct, event.Entry.ExitRules.StopLossPct,
		event.Position.EntryPrice, event.Quote.LastPrice)
}

// FormatStartupMessage announces the bot coming online with its watchlist.
func FormatStartupMessage(tickers []string) string {
	if len(tickers) == 0 {
		return "🤖 <b>Bot ONLINE</b>\n\nWatchlist is empty"
	}
	return fmt.Sprintf("🤖 <b>Bot ONLINE</b>\n\n%s", strings.Join(tickers, ", "))
}

// FormatWatchlistApplied confirms a watchlist replacement.
func FormatWatchlistApplied(tickers []string) string {
	return fmt.Sprintf("📋 <b>NEW CONFIG</b>\n\n%s", strings.Join(tickers, ", "))
}

// FormatPositionOpened confirms a manual entry.
func FormatPositionOpened(position *entity.Position) string {
	return fmt.Sprintf("📝 <b>ENTERED</b> %s @ $%.2f\nStop: $%.2f | Target: $%.2f",
		position.Ticker, position.EntryPrice, position.StopLossPrice, position.TargetPrice)
}

// FormatPositionClosed confirms a manual exit.
func FormatPositionClosed(position *entity.Position) string {
	pnl := 0.0
	if position.PnLPct != nil {
		pnl = *position.PnLPct
	}
	exitPrice := position.EntryPrice
	if position.ExitPrice != nil {
		exitPrice = *position.ExitPrice
	}
	return fmt.Sprintf("📝 <b>EXITED</b> %s @ $%.2f\nP&L: %+.1f%%", position.Ticker, exitPrice, pnl)
}

// FormatTestMessage is the delivery smoke-test payload.
func FormatTestMessage(now time.Time) string {
	return fmt.Sprintf("🧪 Test OK - %s", now.UTC().Format("15:04:05"))
}

// watchlistPromptTemplate is handed to an external LLM to generate a
// watchlist config. The reply is pasted back into the chat or POSTed to
// /config/yaml; the bot itself never calls a model.
const watchlistPromptTemplate = `Generate a YAML config for a stock monitor.

REPLY WITH YAML ONLY, no other text:

` + "```yaml" + `
watchlist:
  - ticker: "SYMBOL"
    name: "Name"
    thesis: "Reason in one sentence"
    catalyst: "Catalyst event"
    entry_rules:
      breakout_above: 0.00
      min_daily_change_pct: 3.0
      min_volume: 1000000
    exit_rules:
      stop_loss_pct: 15
      target_pct: 30
      max_hold_days: 30
    alerts:
      daily_change_above: 7
      daily_change_below: -7
` + "```" + `

Parameters: %s
`

// FormatWatchlistPrompt renders the config-generation prompt with the
// given risk/sector/count parameters.
func FormatWatchlistPrompt(params string) string {
	return fmt.Sprintf(watchlistPromptTemplate, params)
}

// FormatPromptMessage wraps the prompt for delivery in chat.
func FormatPromptMessage(prompt string) string {
	return fmt.Sprintf("📋 <b>PROMPT TO COPY:</b>\n\n<code>%s</code>\n\nPaste it into an LLM, then paste the YAML reply back here.", prompt)
}

// FormatBotStatus is the /status chat command reply.
func FormatBotStatus(tickers []string, openPositions int) string {
	list := "empty"
	if len(tickers) > 0 {
		list = strings.Join(tickers, ", ")
	}
	return fmt.Sprintf("📊 <b>STATUS</b>\n\nWatchlist: %s\nOpen positions: %d", list, openPositions)
}

// FormatCheckSummary is the /check chat command reply.
func FormatCheckSummary(alertsSent int) string {
	return fmt.Sprintf("✅ Check completed. Alerts sent: %d", alertsSent)
}

// FormatWatchlistCleared confirms the /clear chat command.
func FormatWatchlistCleared() string {
	return "🗑 Watchlist cleared"
}

// FormatCommandHelp lists the chat commands for unrecognized input.
func FormatCommandHelp() string {
	return "Commands: /prompt, /status, /check, /clear\n\nOr paste a watchlist YAML directly."
}
