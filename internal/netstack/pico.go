//go:build rp2040 || rp2350

package netstack

import (
	"context"
	"log/slog"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/wifitab"
	"github.com/soypat/wifitab/connmgr"
)

var _ Link = (*cyw43439.Device)(nil)

// SetupPico joins the first working network of tab through mgr and attaches
// the radio to the stack. dev must already be initialized; it stays usable
// when joining fails so the caller can still drive the on-board LED.
// The returned pump must be run for the stack to send and receive.
func (s *Stack) SetupPico(ctx context.Context, dev *cyw43439.Device, mgr *connmgr.Manager, tab wifitab.Table) (*Pump, error) {
	start := time.Now()
	entry, err := mgr.Connect(ctx, tab)
	if err != nil {
		return nil, err
	}
	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, err
	}
	if err = s.attach(entry, mac); err != nil {
		return nil, err
	}
	pump := NewPump(dev, s, s.MTU(), s.cfg.Logger)
	dev.RecvEthHandle(pump.Deliver)
	elapsed := time.Since(start)
	s.Stir(uint32(elapsed) ^ uint32(elapsed>>32))
	s.info("netstack:link-up", slog.String("ssid", entry.SSID), slog.Duration("elapsed", elapsed))
	return pump, nil
}
