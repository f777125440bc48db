//go:build tinygo

// Package cywjoin joins WiFi networks with the Raspberry Pi Pico W's CYW43439 radio.
package cywjoin

import (
	"context"
	"log/slog"

	"github.com/soypat/cyw43439"
	"github.com/soypat/wifitab"
	"github.com/soypat/wifitab/connmgr"
)

// Joiner adapts a [*cyw43439.Device] to [connmgr.Joiner]. The device must
// have been initialized with Init before the first Join.
type Joiner struct {
	dev    *cyw43439.Device
	logger *slog.Logger
	// CipherTKIP enables TKIP in addition to AES for WPA networks.
	CipherTKIP bool
}

var _ connmgr.Joiner = (*Joiner)(nil)

func New(dev *cyw43439.Device, logger *slog.Logger) *Joiner {
	return &Joiner{dev: dev, logger: logger}
}

// Join joins the network. The driver blocks for up to [DriverJoinTimeout] and
// can't be interrupted so the context is only checked before joining.
func (j *Joiner) Join(ctx context.Context, e wifitab.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := e.Auth()
	if j.logger != nil {
		j.logger.LogAttrs(ctx, slog.LevelDebug, "cywjoin:join",
			slog.String("ssid", e.SSID), slog.String("auth", auth.String()), slog.Int("passlen", len(e.Password)))
	}
	err := j.dev.Join(e.SSID, cyw43439.JoinOptions{
		Auth:       cyw43439.JoinAuth(authCode(e)),
		CipherTKIP: j.CipherTKIP,
		Passphrase: e.Password,
	})
	if err != nil {
		return &joinError{ssid: e.SSID, err: err}
	}
	if !j.dev.IsLinkUp() {
		return &joinError{ssid: e.SSID, err: errLinkDown}
	}
	return nil
}
