package netstack

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ethHeaderLen is prepended to every IP packet on the WiFi link.
const ethHeaderLen = 14

// Link is the Ethernet side of a WiFi radio. *cyw43439.Device implements it
// once its receive handler is set to [Pump.Deliver].
type Link interface {
	// PollOne processes at most one event from the radio, delivering a
	// received frame to the receive handler. It reports whether it did.
	PollOne() (bool, error)
	SendEth(frame []byte) error
}

// Frames is the protocol side of a [Pump]. [*Stack] implements it.
type Frames interface {
	Demux(frame []byte, off int) error
	Encapsulate(dst []byte, off int) (int, error)
}

// PumpStats counts traffic moved by a [Pump].
type PumpStats struct {
	FramesIn  int
	FramesOut int
	Errors    int
}

// Pump moves frames between a [Link] and a [Frames] implementation.
// Step and Run must be called from a single goroutine.
type Pump struct {
	link   Link
	frames Frames
	logger *slog.Logger
	txbuf  []byte
	rx     int
	stats  PumpStats
	// IdleMax caps the sleep between steps while no traffic flows.
	IdleMax time.Duration
}

// NewPump returns a pump able to send frames of up to mtu bytes of payload.
func NewPump(link Link, frames Frames, mtu int, logger *slog.Logger) *Pump {
	return &Pump{
		link:    link,
		frames:  frames,
		logger:  logger,
		txbuf:   make([]byte, mtu+ethHeaderLen),
		IdleMax: 5 * time.Millisecond,
	}
}

// Deliver passes a received frame to the stack. Install it as the radio's
// receive handler before calling Step.
func (p *Pump) Deliver(frame []byte) error {
	p.rx = len(frame)
	p.stats.FramesIn++
	return p.frames.Demux(frame, 0)
}

// Step polls the link for one incoming frame and sends at most one pending
// outgoing frame. It returns the number of bytes moved each way.
func (p *Pump) Step() (sent, recv int, err error) {
	p.rx = 0
	got, rerr := p.link.PollOne()
	if got {
		recv = p.rx
	}
	if rerr != nil {
		p.fail("netstack:poll", rerr, recv)
	}
	sent, serr := p.frames.Encapsulate(p.txbuf, 0)
	if serr != nil {
		p.fail("netstack:encapsulate", serr, sent)
		return 0, recv, errors.Join(rerr, serr)
	}
	if sent == 0 {
		return 0, recv, rerr
	}
	if serr = p.link.SendEth(p.txbuf[:sent]); serr != nil {
		p.fail("netstack:send", serr, sent)
		return sent, recv, errors.Join(rerr, serr)
	}
	p.stats.FramesOut++
	return sent, recv, rerr
}

// Run steps the pump until ctx is done. While idle it sleeps with
// exponential backoff up to IdleMax.
func (p *Pump) Run(ctx context.Context) {
	idle := time.Duration(0)
	for ctx.Err() == nil {
		sent, recv, _ := p.Step()
		if sent > 0 || recv > 0 {
			idle = 0
			continue
		}
		idle = min(max(2*idle, time.Microsecond), p.IdleMax)
		time.Sleep(idle)
	}
}

// Stats returns traffic counters. Only safe to call from the pumping goroutine
// or after Run returns.
func (p *Pump) Stats() PumpStats { return p.stats }

func (p *Pump) fail(msg string, err error, plen int) {
	p.stats.Errors++
	if p.logger != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelError, msg,
			slog.Int("plen", plen), slog.String("err", err.Error()))
	}
}
