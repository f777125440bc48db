package mqttstatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
)

var errSessionClosed = errors.New("mqttstatus: session closed")

// Session is an MQTT client connected to a broker over TCP.
type Session struct {
	Client *mqtt.Client
	conn   net.Conn
}

// Dial connects to the MQTT broker at addr ("host:port") and performs the
// MQTT CONNECT handshake. The context bounds both the TCP dial and the handshake.
func Dial(ctx context.Context, addr, clientID string) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, r io.Reader) error {
			return nil // Status reporting never subscribes.
		},
	})
	// Connect blocks reading CONNACK; only a socket deadline can interrupt it.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(clientID))
	err = client.Connect(ctx, conn, &varconn)
	if !stop() && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("mqtt connect %s: %w", addr, ctxErr)
		}
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return &Session{Client: client, conn: conn}, nil
}

// Close sends an MQTT DISCONNECT and closes the connection.
func (s *Session) Close() error {
	err := s.Client.Disconnect(errSessionClosed)
	cerr := s.conn.Close()
	if err != nil && !errors.Is(err, errSessionClosed) {
		return err
	}
	if errors.Is(cerr, net.ErrClosed) {
		return nil
	}
	return cerr
}
