package entity

// EventKind classifies the outcome of evaluating one ticker.
type EventKind string

const (
	EventEntry   EventKind = "ENTRY"
	EventExit    EventKind = "EXIT"
	EventAlert   EventKind = "ALERT"
	EventWatch   EventKind = "WATCH"
	EventWarning EventKind = "WARNING"
)

// ExitReason identifies which exit rule fired. Reasons map one-to-one onto
// position close statuses.
type ExitReason string

const (
	ExitReasonStopLoss ExitReason = PositionStatusStopLoss
	ExitReasonTarget   ExitReason = PositionStatusTarget
	ExitReasonMaxDays  ExitReason = PositionStatusMaxDays
)

// Event is the result of one evaluation: zero or one per ticker per cycle.
// It carries everything the notifier needs to format a message; applying
// position transitions is the caller's job, evaluation itself is pure.
type Event struct {
	Kind       EventKind
	Ticker     string
	Quote      Quote
	Entry      WatchlistEntry
	Position   *Position
	ExitReason ExitReason
	PnLPct     float64
	// Checks holds the per-rule lines of an ENTRY signal.
	Checks []string
	// Alerts holds the triggered threshold lines of an ALERT.
	Alerts []string
}
