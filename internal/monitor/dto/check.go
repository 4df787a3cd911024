package dto

import "time"

// Per-ticker outcomes of an evaluation cycle.
const (
	ActionEntrySignal = "ENTRY_SIGNAL"
	ActionExit        = "EXIT"
	ActionHold        = "HOLD"
	ActionAlert       = "ALERT"
	ActionWatch       = "WATCH"
	ActionWarning     = "WARNING"
	ActionNone        = "NONE"
	ActionFailed      = "FAILED"
)

// Cycle-level statuses.
const (
	CheckStatusOK      = "ok"
	CheckStatusSkipped = "skipped"
	CheckStatusBusy    = "busy"
)

// TickerOutcome summarizes what happened for one ticker during a cycle.
type TickerOutcome struct {
	Ticker string   `json:"ticker"`
	Action string   `json:"action"`
	PnLPct *float64 `json:"pnl_pct,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// CheckResult is the response of a manual or scheduled evaluation cycle.
// Per-ticker failures never abort the cycle; they show up as FAILED
// outcomes here.
type CheckResult struct {
	Status     string          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	AlertsSent int             `json:"alerts_sent"`
	Results    []TickerOutcome `json:"results"`
}
