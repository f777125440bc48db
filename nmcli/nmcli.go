// Package nmcli joins and scans WiFi networks on Linux hosts through
// NetworkManager's command line client.
package nmcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/soypat/wifitab"
	"github.com/soypat/wifitab/connmgr"
)

var errEmptyOutput = errors.New("nmcli: empty output")

// Runner runs a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Client implements [connmgr.Joiner] and [connmgr.Scanner].
type Client struct {
	// Ifname restricts operations to a wireless interface, i.e. "wlan0". Empty means any.
	Ifname string
	// Rescan forces a fresh scan instead of NetworkManager's cached results.
	Rescan bool
	Logger *slog.Logger
	// Runner defaults to running the nmcli binary found in PATH.
	Runner Runner
}

var (
	_ connmgr.Joiner  = (*Client)(nil)
	_ connmgr.Scanner = (*Client)(nil)
)

// Join connects to the network described by e. The context deadline is also
// passed to nmcli as its --wait timeout.
func (c *Client) Join(ctx context.Context, e wifitab.Entry) error {
	args := []string{}
	if deadline, ok := ctx.Deadline(); ok {
		secs := int(math.Ceil(time.Until(deadline).Seconds()))
		args = append(args, "--wait", strconv.Itoa(max(secs, 1)))
	}
	args = append(args, "device", "wifi", "connect", e.SSID)
	if !e.IsOpen() {
		args = append(args, "password", e.Password)
	}
	if c.Ifname != "" {
		args = append(args, "ifname", c.Ifname)
	}
	c.debug("nmcli:connect", slog.String("ssid", e.SSID), slog.String("ifname", c.Ifname))
	out, err := c.runner().Run(ctx, "nmcli", args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("nmcli connect %q: %w: %s", e.SSID, err, firstLine(out))
	}
	return nil
}

// Scan lists visible networks. Signal quality percentages reported by
// NetworkManager are converted to approximate dBm.
func (c *Client) Scan(ctx context.Context) ([]connmgr.Network, error) {
	args := []string{"-t", "-f", "SSID,SIGNAL", "device", "wifi", "list"}
	if c.Ifname != "" {
		args = append(args, "ifname", c.Ifname)
	}
	if c.Rescan {
		args = append(args, "--rescan", "yes")
	}
	out, err := c.runner().Run(ctx, "nmcli", args...)
	if err != nil {
		return nil, fmt.Errorf("nmcli wifi list: %w: %s", err, firstLine(out))
	}
	nets, err := parseWifiList(out)
	if err != nil {
		return nil, err
	}
	c.debug("nmcli:scan", slog.Int("networks", len(nets)))
	return nets, nil
}

func (c *Client) runner() Runner {
	if c.Runner == nil {
		return execRunner{}
	}
	return c.Runner
}

func (c *Client) debug(msg string, attrs ...slog.Attr) {
	if c.Logger != nil {
		c.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

// parseWifiList parses terse "SSID:SIGNAL" lines. Hidden networks with no SSID are dropped.
func parseWifiList(out []byte) ([]connmgr.Network, error) {
	var nets []connmgr.Network
	for _, line := range bytes.Split(out, []byte{'\n'}) {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		fields := splitTerse(string(line))
		if len(fields) != 2 {
			return nil, fmt.Errorf("nmcli: unexpected wifi list line %q", line)
		}
		if fields[0] == "" {
			continue
		}
		pct, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("nmcli: bad signal %q: %w", fields[1], err)
		}
		nets = append(nets, connmgr.Network{SSID: fields[0], RSSI: percentToDBm(pct)})
	}
	return nets, nil
}

// splitTerse splits a line of nmcli terse output on unescaped colons and
// removes the escaping of colons and backslashes.
func splitTerse(line string) []string {
	var fields []string
	var field strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			field.WriteByte(line[i])
		case c == ':':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	return append(fields, field.String())
}

func percentToDBm(pct int) int16 {
	pct = min(max(pct, 0), 100)
	return int16(pct/2 - 100)
}

func firstLine(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return errEmptyOutput.Error()
	}
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return string(out)
}
