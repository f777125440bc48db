//go:build rp2040 || rp2350

// Command picoserver is a basic web server for the Raspberry Pi Pico W.
//
// WiFi credentials are compiled into the firmware from credentials.yaml:
//
//	go generate ./cmd/picoserver
//	tinygo flash -target=pico -monitor ./cmd/picoserver
//
// Networks are attempted in the order they are listed. Each attempt lasts up
// to the radio driver's internal join timeout, which takes precedence over
// any shorter connection manager timeout. While no network can
// be joined the on-board LED blinks: once per cycle when no credentials were
// compiled in, three times when every network failed.
package main

//go:generate go run github.com/soypat/wifitab/cmd/wifitab gen -f credentials.yaml -o credentials_gen.go --tags "rp2040 || rp2350"

import (
	"context"
	"errors"
	"log/slog"
	"machine"
	"net/netip"
	"time"

	_ "embed"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/http/httpraw"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/lneto/x/xnet"
	"github.com/soypat/wifitab/connmgr"
	"github.com/soypat/wifitab/cywjoin"
	"github.com/soypat/wifitab/internal/netstack"
)

const (
	hostname    = "wifitab-pico"
	joinTimeout = cywjoin.DriverJoinTimeout
	joinPasses  = 3
	dhcpTimeout = 10 * time.Second
	connTimeout = 3 * time.Second
	maxconns    = 3
	tcpbufsize  = 2030 // MTU - ethhdr - iphdr - tcphdr
	listenPort  = 80
)

var requestedIP = [4]byte{192, 168, 1, 99}

var (
	//go:embed index.html
	webPage      []byte
	dev          *cyw43439.Device
	joinedSSID   string
	lastLedState bool
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo, // Go lower (Debug-1) to trace join attempts.
	}))
	time.Sleep(2 * time.Second) // Give time to connect to USB and monitor output.
	println("starting picoserver")
	ctx := context.Background()

	var devlog *slog.Logger // Set to logger to see in depth info on wifi device functioning.
	dev = cyw43439.NewPicoWDevice(devlog)
	devcfg := cyw43439.DefaultWifiConfig()
	devcfg.Logger = devlog
	err := dev.Init(devcfg)
	if err != nil {
		panic("wifi init failed:" + err.Error())
	}
	mgr, err := connmgr.New(cywjoin.New(dev, logger), connmgr.Config{
		Timeout:    joinTimeout,
		Passes:     joinPasses,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	if err != nil {
		panic("connmgr:" + err.Error())
	}

	var stack netstack.Stack
	err = stack.Reset(netstack.Config{
		Hostname:    hostname,
		MaxTCPConns: maxconns,
		RandSeed:    uint32(time.Now().UnixNano()) | 1,
		MTU:         cyw43439.MTU,
		Logger:      logger,
	})
	if err != nil {
		panic("stack reset:" + err.Error())
	}

	var pump *netstack.Pump
	for {
		pump, err = stack.SetupPico(ctx, dev, mgr, credentials)
		if err == nil {
			joinedSSID = stack.Joined().SSID
			break
		}
		logger.Error("wifi setup failed", slog.String("err", err.Error()))
		if errors.Is(err, connmgr.ErrEmptyCredentialList) {
			for {
				blink(1) // Nothing to try until reflashed.
			}
		}
		for i := 0; i < 5; i++ {
			blink(3)
		}
	}

	go pump.Run(ctx)

	lease, err := stack.AcquireLease(ctx, requestedIP, dhcpTimeout, 3)
	if err != nil {
		panic("DHCP failed:" + err.Error())
	}
	listenAddr := netip.AddrPortFrom(lease.Addr, listenPort)
	serve(logger, &stack, listenAddr)
}

func serve(logger *slog.Logger, stack *netstack.Stack, listenAddr netip.AddrPort) {
	tcpPool, err := xnet.NewTCPPool(xnet.TCPPoolConfig{
		PoolSize:           maxconns,
		QueueSize:          3,
		BufferSize:         tcpbufsize,
		EstablishedTimeout: connTimeout,
		ClosingTimeout:     connTimeout,
	})
	if err != nil {
		panic("tcppool create:" + err.Error())
	}
	var listener tcp.Listener
	err = listener.Reset(listenAddr.Port(), tcpPool)
	if err != nil {
		panic("listener reset:" + err.Error())
	}
	err = stack.RegisterListener(&listener)
	if err != nil {
		panic("listener register:" + err.Error())
	}

	// Buffers for HTTP handling (reused for each connection).
	var hdr httpraw.Header
	rxBuf := make([]byte, 2048)
	txBuf := make([]byte, 512)

	logger.Info("listening",
		slog.String("addr", "http://"+listenAddr.String()),
		slog.String("ssid", joinedSSID),
	)
	for {
		if listener.NumberOfReadyToAccept() == 0 {
			time.Sleep(5 * time.Millisecond)
			tcpPool.CheckTimeouts()
			continue
		}
		conn, err := listener.TryAccept()
		if err != nil {
			logger.Error("listener accept", slog.String("err", err.Error()))
			time.Sleep(time.Second)
			continue
		}
		n, err := conn.Read(rxBuf)
		if err != nil || n == 0 {
			conn.Close()
			continue
		}
		hdr.Reset(rxBuf[:0])
		hdr.ReadFromBytes(rxBuf[:n])
		needMore, err := hdr.TryParse(false) // false = parse as request
		if err != nil && !needMore {
			logger.Error("parse failed", slog.String("err", err.Error()))
			conn.Close()
			continue
		}
		handleHTTP(conn, &hdr, txBuf)
		conn.Close()
	}
}
