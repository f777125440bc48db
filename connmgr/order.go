package connmgr

import (
	"context"

	"github.com/soypat/wifitab"
	"golang.org/x/exp/slices"
)

// Policy selects the order in which table entries are attempted.
type Policy uint8

const (
	// PolicyFirstSuccess attempts entries in declaration order and stops at the first success.
	PolicyFirstSuccess Policy = iota
	// PolicyStrongestSignal scans first and attempts visible networks from strongest
	// to weakest signal. Entries not seen in the scan are attempted last in declaration order.
	PolicyStrongestSignal
)

func (p Policy) String() string {
	switch p {
	case PolicyFirstSuccess:
		return "first"
	case PolicyStrongestSignal:
		return "strongest"
	}
	return "unknown"
}

// ParsePolicy parses the names returned by [Policy.String].
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "first", "":
		return PolicyFirstSuccess, true
	case "strongest":
		return PolicyStrongestSignal, true
	}
	return 0, false
}

// Network is a network seen during a scan.
type Network struct {
	SSID string
	// RSSI is the received signal strength in dBm. Greater is stronger.
	RSSI int16
}

// Scanner lists networks in range.
type Scanner interface {
	Scan(ctx context.Context) ([]Network, error)
}

// ScannerFunc adapts a function to the [Scanner] interface.
type ScannerFunc func(ctx context.Context) ([]Network, error)

func (f ScannerFunc) Scan(ctx context.Context) ([]Network, error) { return f(ctx) }

const rssiNotSeen = -32768

// orderBySignal returns entries sorted by descending RSSI. Sorting is stable
// so entries with equal signal, or not seen at all, keep declaration order.
func orderBySignal(entries []wifitab.Entry, seen []Network) []wifitab.Entry {
	best := make(map[string]int16, len(seen))
	for _, n := range seen {
		if rssi, ok := best[n.SSID]; !ok || n.RSSI > rssi {
			best[n.SSID] = n.RSSI
		}
	}
	rssiOf := func(e wifitab.Entry) int {
		rssi, ok := best[e.SSID]
		if !ok {
			return rssiNotSeen
		}
		return int(rssi)
	}
	slices.SortStableFunc(entries, func(a, b wifitab.Entry) int {
		return rssiOf(b) - rssiOf(a)
	})
	return entries
}
