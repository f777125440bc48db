package netstack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/soypat/lneto/dhcpv4"
)

var (
	errNoLease    = errors.New("netstack: no DHCP lease")
	errDHCPNACK   = errors.New("netstack: DHCP server refused request")
	errNoRouter   = errors.New("netstack: DHCP offer without router")
	errNoAssigned = errors.New("netstack: DHCP offer without address")
)

const leasePollPeriod = 10 * time.Millisecond

// Lease is the outcome of a DHCPv4 exchange.
type Lease struct {
	Addr       netip.Addr
	Router     netip.Addr
	Gateway    netip.Addr
	Server     netip.Addr
	Broadcast  netip.Addr
	Subnet     netip.Prefix
	DNSServers []netip.Addr
	Duration   time.Duration
	Renewal    time.Duration
	Rebind     time.Duration
}

// AcquireLease runs a DHCPv4 exchange requesting reqAddr and, once bound,
// switches the stack to the assigned address. A [Pump] must be running.
// Each attempt lasts at most timeout; ctx bounds all of them.
func (s *Stack) AcquireLease(ctx context.Context, reqAddr [4]byte, timeout time.Duration, attempts int) (Lease, error) {
	var err error
	for i := 1; i <= max(attempts, 1); i++ {
		var lease Lease
		lease, err = s.acquireOnce(ctx, reqAddr, timeout)
		if err == nil {
			return lease, nil
		} else if ctx.Err() != nil {
			return Lease{}, ctx.Err()
		}
		s.logerr("netstack:dhcp-attempt", slog.Int("attempt", i), slog.String("err", err.Error()))
	}
	return Lease{}, fmt.Errorf("netstack: DHCP failed after %d attempts: %w", max(attempts, 1), err)
}

func (s *Stack) acquireOnce(ctx context.Context, reqAddr [4]byte, timeout time.Duration) (Lease, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.beginDHCP(reqAddr); err != nil {
		return Lease{}, err
	}
	tick := time.NewTicker(leasePollPeriod)
	defer tick.Stop()
	requested := false
	for {
		started, bound := s.dhcpStatus()
		switch {
		case bound:
			lease, err := s.Lease()
			if err != nil {
				return Lease{}, err
			}
			if err = s.setAddr(lease.Addr); err != nil {
				return Lease{}, err
			}
			s.info("netstack:dhcp-bound", slog.String("addr", lease.Addr.String()), slog.Duration("lease", lease.Duration))
			return lease, nil
		case requested && !started:
			return Lease{}, errDHCPNACK // Server NACK resets the client.
		}
		requested = requested || started
		select {
		case <-ctx.Done():
			return Lease{}, ctx.Err()
		case <-tick.C:
		}
	}
}

func (s *Stack) beginDHCP(reqAddr [4]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.dhcp.BeginRequest(s.rng.next(), dhcpv4.RequestConfig{
		RequestedAddr:      reqAddr,
		ClientHardwareAddr: s.link.HardwareAddr6(),
		Hostname:           s.cfg.Hostname,
	})
	if err != nil {
		return err
	}
	s.dhcpPort.SetStackNode(&s.dhcp, nil, dhcpv4.DefaultServerPort)
	return s.udp.Register(&s.dhcpPort)
}

// dhcpStatus reports whether the exchange has left the init state and whether an address is bound.
func (s *Stack) dhcpStatus() (started, bound bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.dhcp.State()
	return state > dhcpv4.StateInit, state == dhcpv4.StateBound
}

// Lease returns the current DHCP lease. The DNSServers slice is reused by later calls.
func (s *Stack) Lease() (Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dhcp.State().HasIP() {
		return Lease{}, errNoLease
	}
	router, ok := s.dhcp.RouterAddr()
	if !ok {
		return Lease{}, errNoRouter
	}
	assigned, ok := s.dhcp.AssignedAddr()
	if !ok {
		return Lease{}, errNoAssigned
	}
	r := netip.AddrFrom4(router)
	s.lease = Lease{
		Addr:       netip.AddrFrom4(assigned),
		Router:     r,
		Gateway:    optAddr4(s.dhcp.GatewayAddr()),
		Server:     optAddr4(s.dhcp.ServerAddr()),
		Broadcast:  optAddr4(s.dhcp.BroadcastAddr()),
		Subnet:     netip.PrefixFrom(r, int(s.dhcp.SubnetCIDRBits())).Masked(),
		DNSServers: s.dhcp.AppendDNSServers(s.lease.DNSServers[:0]),
		Duration:   seconds(s.dhcp.IPLeaseSeconds()),
		Renewal:    seconds(s.dhcp.RenewalSeconds()),
		Rebind:     seconds(s.dhcp.RebindingSeconds()),
	}
	return s.lease, nil
}

func optAddr4(addr [4]byte, ok bool) netip.Addr {
	if !ok {
		return netip.Addr{}
	}
	return netip.AddrFrom4(addr)
}

func seconds(v uint32) time.Duration { return time.Duration(v) * time.Second }

func (s *Stack) logerr(msg string, attrs ...slog.Attr) {
	s.log(slog.LevelError, msg, attrs...)
}

func (s *Stack) info(msg string, attrs ...slog.Attr) {
	s.log(slog.LevelInfo, msg, attrs...)
}

func (s *Stack) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l := s.cfg.Logger; l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}
