package connmgr

import (
	"errors"
	"strconv"
)

var (
	ErrEmptyCredentialList     = errors.New("connmgr: no credentials configured")
	ErrAllCredentialsExhausted = errors.New("connmgr: all credentials exhausted")
	ErrNoScanner               = errors.New("connmgr: strongest-signal policy requires a scanner")
	errNilJoiner               = errors.New("connmgr: nil joiner")
)

// AttemptError records a single failed attempt to join a network.
type AttemptError struct {
	SSID string
	// Pass is the 1-based pass over the table in which the attempt happened.
	Pass int
	Err  error
}

func (e *AttemptError) Error() string {
	return "join " + strconv.Quote(e.SSID) + " (pass " + strconv.Itoa(e.Pass) + "): " + e.Err.Error()
}

func (e *AttemptError) Unwrap() error { return e.Err }

// ExhaustedError is returned by [Manager.Connect] when no entry could be joined.
// It matches [ErrAllCredentialsExhausted] with errors.Is and unwraps to each attempt's error.
type ExhaustedError struct {
	Attempts []*AttemptError
}

func (e *ExhaustedError) Error() string {
	msg := ErrAllCredentialsExhausted.Error() + " after " + strconv.Itoa(len(e.Attempts)) + " attempts"
	if len(e.Attempts) > 0 {
		msg += "; last: " + e.Attempts[len(e.Attempts)-1].Error()
	}
	return msg
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrAllCredentialsExhausted }

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i := range e.Attempts {
		errs[i] = e.Attempts[i]
	}
	return errs
}
