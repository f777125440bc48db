// Package netstack runs an lneto IPv4 stack over the WiFi link joined by a
// connection manager: ARP, a DHCPv4 client and TCP listeners, enough to serve
// HTTP on the network picked from a credential table.
package netstack

import (
	"errors"
	"log/slog"
	"net/netip"
	"sync"

	"github.com/soypat/lneto/arp"
	"github.com/soypat/lneto/dhcpv4"
	"github.com/soypat/lneto/ethernet"
	"github.com/soypat/lneto/internet"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/wifitab"
)

var (
	errZeroSeed    = errors.New("netstack: zero random seed")
	errNoHostname  = errors.New("netstack: empty hostname")
	errIPv6        = errors.New("netstack: IPv6 unsupported")
	errNoListeners = errors.New("netstack: stack has no TCP capacity")
)

// Config configures a [Stack]. Hostname and RandSeed are required.
type Config struct {
	// Hostname is sent to the DHCP server.
	Hostname string
	// StaticAddress, if valid, is used until a DHCP lease replaces it.
	StaticAddress netip.Addr
	// MaxTCPConns bounds simultaneous TCP connections. Zero disables TCP.
	MaxTCPConns int
	RandSeed    uint32
	// HardwareAddress may be left zero and set once the radio reports its MAC.
	HardwareAddress [6]byte
	MTU             uint16
	Logger          *slog.Logger
}

// Stack is safe for concurrent use: a [Pump] feeds it frames from one
// goroutine while the application acquires a lease and registers listeners.
type Stack struct {
	mu     sync.Mutex
	cfg    Config
	rng    xorshift32
	joined wifitab.Entry

	link  internet.StackEthernet
	ip    internet.StackIP
	arp   arp.Handler
	udp   internet.StackPorts
	tcp   internet.StackPorts
	hasTC bool

	dhcp     dhcpv4.Client
	dhcpPort internet.StackUDPPort
	lease    Lease
}

// Reset discards all stack state and configures it anew.
func (s *Stack) Reset(cfg Config) error {
	if cfg.RandSeed == 0 {
		return errZeroSeed
	} else if cfg.Hostname == "" {
		return errNoHostname
	}
	addr := cfg.StaticAddress
	if addr.Is6() {
		return errIPv6
	} else if !addr.IsValid() {
		addr = netip.IPv4Unspecified()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.rng = xorshift32(cfg.RandSeed)
	s.joined = wifitab.Entry{}
	s.lease = Lease{}
	if err := s.resetLink(addr); err != nil {
		return err
	}
	return s.resetTransport()
}

// resetLink sets up Ethernet with ARP and IPv4 as its upper layers.
func (s *Stack) resetLink(addr netip.Addr) error {
	const linkNodes = 2 // ARP, IPv4.
	err := s.link.Reset6(s.cfg.HardwareAddress, ethernet.BroadcastAddr(), int(s.cfg.MTU), linkNodes)
	if err != nil {
		return err
	}
	const ipNodes = 2 // UDP, TCP.
	if err = s.ip.Reset(addr, ipNodes); err != nil {
		return err
	}
	if err = s.resetARP(); err != nil {
		return err
	}
	if err = s.link.Register(&s.arp); err != nil {
		return err
	}
	return s.link.Register(&s.ip)
}

// resetTransport sets up UDP for DHCP and, if configured, TCP.
func (s *Stack) resetTransport() error {
	const udpConns = 1 // DHCP client.
	if err := s.udp.ResetUDP(udpConns); err != nil {
		return err
	}
	if err := s.ip.Register(&s.udp); err != nil {
		return err
	}
	s.hasTC = s.cfg.MaxTCPConns > 0
	if !s.hasTC {
		return nil
	}
	if err := s.tcp.ResetTCP(s.cfg.MaxTCPConns); err != nil {
		return err
	}
	return s.ip.Register(&s.tcp)
}

// resetARP rebinds ARP to the current hardware and IP address. Called with s.mu held.
func (s *Stack) resetARP() error {
	mac := s.link.HardwareAddr6()
	return s.arp.Reset(arp.HandlerConfig{
		HardwareAddr: mac[:],
		ProtocolAddr: s.ip.Addr().AsSlice(),
		MaxQueries:   3,
		MaxPending:   3,
		HardwareType: 1, // Ethernet.
		ProtocolType: ethernet.TypeIPv4,
	})
}

// Hostname returns the configured hostname.
func (s *Stack) Hostname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Hostname
}

// Joined returns the credential of the network the stack is attached to.
// It is the zero Entry before the link is up.
func (s *Stack) Joined() wifitab.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// Demux hands a received Ethernet frame starting at off to the stack.
func (s *Stack) Demux(frame []byte, off int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link.Demux(frame, off)
}

// Encapsulate writes the next outgoing frame into dst at off and returns its
// length. Zero means nothing is pending.
func (s *Stack) Encapsulate(dst []byte, off int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link.Encapsulate(dst, off)
}

// MTU returns the link MTU.
func (s *Stack) MTU() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link.MTU()
}

// attach records the joined network and the radio's hardware address.
func (s *Stack) attach(e wifitab.Entry, hw [6]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = e
	s.link.SetHardwareAddr6(hw)
	return s.resetARP()
}

// setAddr changes the IPv4 address the stack answers to.
func (s *Stack) setAddr(addr netip.Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ip.SetAddr(addr); err != nil {
		return err
	}
	return s.resetARP()
}

// RegisterListener accepts incoming TCP connections on the listener's port.
func (s *Stack) RegisterListener(l *tcp.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTC {
		return errNoListeners
	}
	return s.tcp.Register(l)
}

// Stir mixes v, usually a timing measurement, into the stack's random state.
func (s *Stack) Stir(v uint32) {
	s.mu.Lock()
	s.rng.stir(v)
	s.mu.Unlock()
}

// xorshift32 is Marsaglia's "xor" generator from "Xorshift RNGs", p. 4.
// The state must never be zero.
type xorshift32 uint32

func (x *xorshift32) next() uint32 {
	v := uint32(*x)
	v ^= v << 13
	v ^= v >> 17
	v ^= v << 5
	*x = xorshift32(v)
	return v
}

func (x *xorshift32) stir(v uint32) {
	*x ^= xorshift32(v)
	if *x == 0 {
		*x = 1
	}
}
