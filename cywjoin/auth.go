package cywjoin

import (
	"time"

	"github.com/soypat/wifitab"
)

// DriverJoinTimeout is how long the CYW43439 driver polls for a join to
// resolve. A join can't be interrupted before then so connection managers
// driving a [Joiner] should use it as their per-network timeout.
const DriverJoinTimeout = 10 * time.Second

// Values of cyw43439.JoinAuth. The driver package only builds with TinyGo.
const (
	joinAuthOpen     = 1
	joinAuthWPA      = 2
	joinAuthWPA2     = 3
	joinAuthWPA3     = 4
	joinAuthWPA2WPA3 = 5
)

// authCode returns the driver's join authentication for the entry.
func authCode(e wifitab.Entry) uint8 {
	switch e.Auth() {
	case wifitab.AuthOpen:
		return joinAuthOpen
	case wifitab.AuthWPA:
		return joinAuthWPA
	case wifitab.AuthWPA3:
		return joinAuthWPA3
	case wifitab.AuthWPA2WPA3:
		return joinAuthWPA2WPA3
	}
	return joinAuthWPA2
}
