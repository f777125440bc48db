package connmgr

import "time"

// EventKind identifies what happened during a connection sequence.
type EventKind uint8

const (
	_ EventKind = iota
	// EventAttempt is emitted right before a join is attempted.
	EventAttempt
	// EventJoinFailed is emitted when a join returns an error or times out.
	EventJoinFailed
	// EventConnected is emitted once, when a join succeeds.
	EventConnected
	// EventSkipped is emitted for entries rejected by passphrase policy.
	EventSkipped
	// EventExhausted terminates a sequence in which every entry failed.
	EventExhausted
	// EventEmpty terminates a sequence over a table with no entries.
	EventEmpty
)

func (k EventKind) String() string {
	switch k {
	case EventAttempt:
		return "attempt"
	case EventJoinFailed:
		return "join-failed"
	case EventConnected:
		return "connected"
	case EventSkipped:
		return "skipped"
	case EventExhausted:
		return "exhausted"
	case EventEmpty:
		return "empty"
	}
	return "unknown"
}

// Event describes a step of [Manager.Connect]. It never carries the password.
type Event struct {
	Kind EventKind
	SSID string
	// Attempt counts join attempts across all passes starting at 1. Zero for terminal events with no attempt.
	Attempt int
	Pass    int
	Err     error
	// Elapsed is the duration of the join for EventJoinFailed and EventConnected,
	// and of the whole sequence for EventExhausted.
	Elapsed time.Duration
}

// Reporter receives events as they happen. Report is called synchronously
// from the goroutine running Connect and must not block for long.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the [Reporter] interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }
