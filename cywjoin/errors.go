package cywjoin

import "errors"

var errLinkDown = errors.New("link down after join")

type joinError struct {
	ssid string
	err  error
}

func (e *joinError) Error() string { return "cywjoin: join " + e.ssid + ": " + e.err.Error() }

func (e *joinError) Unwrap() error { return e.err }
