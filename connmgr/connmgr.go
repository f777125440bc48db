// Package connmgr joins a WiFi network using the first working entry of a
// [wifitab.Table].
//
// A [Manager] walks the table in the order chosen by its [Policy], gives every
// entry a bounded amount of time to join and falls through to the next entry
// on failure. When every entry of every pass fails Connect returns an
// [*ExhaustedError]; an empty table yields [ErrEmptyCredentialList] without
// attempting anything.
package connmgr

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soypat/wifitab"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultRetryDelay    = time.Second
	DefaultMaxRetryDelay = 30 * time.Second
)

// Joiner joins a single network. Implementations should abandon the join when
// ctx is done; the context carries the per-entry deadline.
type Joiner interface {
	Join(ctx context.Context, e wifitab.Entry) error
}

// JoinerFunc adapts a function to the [Joiner] interface.
type JoinerFunc func(ctx context.Context, e wifitab.Entry) error

func (f JoinerFunc) Join(ctx context.Context, e wifitab.Entry) error { return f(ctx, e) }

// Config configures a [Manager]. The zero value is usable: one pass over the
// table in declaration order with a 10 second timeout per entry.
type Config struct {
	// Timeout bounds every join attempt.
	Timeout time.Duration
	// Passes is the number of times the whole table is walked before giving up.
	Passes int
	// RetryDelay is the wait before the second pass. It doubles on every
	// following pass up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Policy        Policy
	// Scanner is required by PolicyStrongestSignal.
	Scanner Scanner
	// StrictPassphrase skips entries whose password fails [wifitab.Entry.CheckPassphrase].
	StrictPassphrase bool
	Logger           *slog.Logger
	Reporter         Reporter
}

// Manager runs connection sequences. It is safe for concurrent use though
// concurrent Connect calls are serialized.
type Manager struct {
	joiner Joiner
	cfg    Config
	logger *slog.Logger

	connmu sync.Mutex // held for the duration of Connect.

	mu          sync.Mutex
	connected   wifitab.Entry
	isConnected bool
}

// New returns a Manager that joins networks with j.
func New(j Joiner, cfg Config) (*Manager, error) {
	if j == nil {
		return nil, errNilJoiner
	}
	if cfg.Policy == PolicyStrongestSignal && cfg.Scanner == nil {
		return nil, ErrNoScanner
	} else if cfg.Policy > PolicyStrongestSignal {
		return nil, errors.New("connmgr: unknown policy")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Passes <= 0 {
		cfg.Passes = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = DefaultMaxRetryDelay
	}
	return &Manager{joiner: j, cfg: cfg, logger: cfg.Logger}, nil
}

// Connected returns the entry of the last successful Connect.
func (m *Manager) Connected() (wifitab.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected, m.isConnected
}

// Order returns the entries of tab in the order Connect would attempt them.
// A failed scan is logged and declaration order is used instead.
func (m *Manager) Order(ctx context.Context, tab wifitab.Table) ([]wifitab.Entry, error) {
	entries := tab.List()
	if m.cfg.Policy != PolicyStrongestSignal || len(entries) < 2 {
		return entries, nil
	}
	seen, err := m.cfg.Scanner.Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.warn("connmgr:scan-failed", errAttr(err))
		return entries, nil
	}
	m.debug("connmgr:scan", slog.Int("networks", len(seen)))
	return orderBySignal(entries, seen), nil
}

// Connect attempts to join the networks in tab until one succeeds and returns
// the joined entry.
func (m *Manager) Connect(ctx context.Context, tab wifitab.Table) (wifitab.Entry, error) {
	m.connmu.Lock()
	defer m.connmu.Unlock()
	m.setConnected(wifitab.Entry{}, false)

	if tab.IsEmpty() {
		m.logerr("connmgr:no-credentials")
		m.report(Event{Kind: EventEmpty, Err: ErrEmptyCredentialList})
		return wifitab.Entry{}, ErrEmptyCredentialList
	}
	order, err := m.Order(ctx, tab)
	if err != nil {
		return wifitab.Entry{}, err
	}

	start := time.Now()
	var exhausted ExhaustedError
	attempt := 0
	delay := m.cfg.RetryDelay
	for pass := 1; pass <= m.cfg.Passes; pass++ {
		if pass > 1 {
			m.debug("connmgr:retry-wait", slog.Int("pass", pass), slog.Duration("delay", delay))
			if err := sleep(ctx, delay); err != nil {
				return wifitab.Entry{}, err
			}
			delay = min(2*delay, m.cfg.MaxRetryDelay)
		}
		for _, e := range order {
			if err := ctx.Err(); err != nil {
				return wifitab.Entry{}, err
			}
			if m.cfg.StrictPassphrase {
				if err := e.CheckPassphrase(); err != nil {
					m.warn("connmgr:skip", slog.String("ssid", e.SSID), slog.Int("passlen", len(e.Password)))
					m.report(Event{Kind: EventSkipped, SSID: e.SSID, Pass: pass, Err: err})
					exhausted.Attempts = append(exhausted.Attempts, &AttemptError{SSID: e.SSID, Pass: pass, Err: err})
					continue
				}
			}
			attempt++
			err := m.join(ctx, e, pass, attempt)
			if err == nil {
				return e, nil
			} else if ctx.Err() != nil {
				return wifitab.Entry{}, ctx.Err()
			}
			exhausted.Attempts = append(exhausted.Attempts, &AttemptError{SSID: e.SSID, Pass: pass, Err: err})
		}
	}
	m.logerr("connmgr:exhausted", slog.Int("attempts", attempt), slog.Int("passes", m.cfg.Passes))
	m.report(Event{Kind: EventExhausted, Attempt: attempt, Pass: m.cfg.Passes, Err: ErrAllCredentialsExhausted, Elapsed: time.Since(start)})
	return wifitab.Entry{}, &exhausted
}

func (m *Manager) join(ctx context.Context, e wifitab.Entry, pass, attempt int) error {
	if e.IsOpen() {
		m.info("connmgr:join-open", slog.String("ssid", e.SSID), slog.Int("attempt", attempt))
	} else {
		m.info("connmgr:join", slog.String("ssid", e.SSID), slog.Int("passlen", len(e.Password)), slog.Int("attempt", attempt))
	}
	m.report(Event{Kind: EventAttempt, SSID: e.SSID, Attempt: attempt, Pass: pass})

	jctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	start := time.Now()
	err := m.joiner.Join(jctx, e)
	elapsed := time.Since(start)
	cancel()
	if err != nil {
		m.logerr("connmgr:join-failed", slog.String("ssid", e.SSID), slog.Duration("elapsed", elapsed), errAttr(err))
		m.report(Event{Kind: EventJoinFailed, SSID: e.SSID, Attempt: attempt, Pass: pass, Err: err, Elapsed: elapsed})
		return err
	}
	m.setConnected(e, true)
	m.info("connmgr:connected", slog.String("ssid", e.SSID), slog.Duration("elapsed", elapsed))
	m.report(Event{Kind: EventConnected, SSID: e.SSID, Attempt: attempt, Pass: pass, Elapsed: elapsed})
	return nil
}

func (m *Manager) setConnected(e wifitab.Entry, ok bool) {
	m.mu.Lock()
	m.connected, m.isConnected = e, ok
	m.mu.Unlock()
}

func (m *Manager) report(ev Event) {
	if m.cfg.Reporter != nil {
		m.trace("connmgr:report", slog.String("kind", ev.Kind.String()))
		m.cfg.Reporter.Report(ev)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
