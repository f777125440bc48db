// Package mqttstatus publishes connection manager events over MQTT.
//
// Events are produced while the device is still looking for a network, when
// no broker can be reached. A [Reporter] buffers them and publishes the backlog
// once the caller has a connected MQTT client.
package mqttstatus

import (
	"errors"
	"strconv"
	"sync"

	mqtt "github.com/soypat/natiu-mqtt"
	"github.com/soypat/wifitab/connmgr"
)

const DefaultCapacity = 16

var errNoTopic = errors.New("mqttstatus: empty topic")

// Publisher sends a single PUBLISH packet. [*mqtt.Client] implements it.
type Publisher interface {
	PublishPayload(flags mqtt.PacketFlags, variables mqtt.VariablesPublish, payload []byte) error
}

var _ Publisher = (*mqtt.Client)(nil)

// Config configures a [Reporter].
type Config struct {
	// Topic events are published to.
	Topic string
	// Retain sets the MQTT retain flag so late subscribers see the last event.
	Retain bool
	// Capacity is the maximum number of buffered events. Oldest events are dropped first.
	Capacity int
}

// Reporter is a [connmgr.Reporter] that keeps the most recent events until
// they are flushed to an MQTT broker.
type Reporter struct {
	mu      sync.Mutex
	topic   []byte
	flags   mqtt.PacketFlags
	ring    []connmgr.Event
	start   int
	n       int
	dropped int
	payload []byte
}

var _ connmgr.Reporter = (*Reporter)(nil)

// NewReporter returns a Reporter publishing at QoS0.
func NewReporter(cfg Config) (*Reporter, error) {
	if cfg.Topic == "" {
		return nil, errNoTopic
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, cfg.Retain)
	if err != nil {
		return nil, err
	}
	return &Reporter{
		topic: []byte(cfg.Topic),
		flags: flags,
		ring:  make([]connmgr.Event, cfg.Capacity),
	}, nil
}

// Report buffers ev. When the buffer is full the oldest event is overwritten.
func (r *Reporter) Report(ev connmgr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n == len(r.ring) {
		r.ring[r.start] = ev
		r.start = (r.start + 1) % len(r.ring)
		r.dropped++
		return
	}
	r.ring[(r.start+r.n)%len(r.ring)] = ev
	r.n++
}

// Pending returns the number of buffered events and how many were dropped since the last Flush.
func (r *Reporter) Pending() (buffered, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n, r.dropped
}

// Flush publishes buffered events in the order they were reported. Events
// are removed from the buffer as they are published so a failed Flush can be retried.
func (r *Reporter) Flush(pub Publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vars := mqtt.VariablesPublish{TopicName: r.topic}
	for r.n > 0 {
		r.payload = AppendPayload(r.payload[:0], r.ring[r.start])
		err := pub.PublishPayload(r.flags, vars, r.payload)
		if err != nil {
			return err
		}
		r.ring[r.start] = connmgr.Event{}
		r.start = (r.start + 1) % len(r.ring)
		r.n--
	}
	r.dropped = 0
	return nil
}

// AppendPayload appends the single line text representation of ev to dst:
//
//	event=connected ssid="SSID2" attempt=2 pass=1 elapsed=1.5s
func AppendPayload(dst []byte, ev connmgr.Event) []byte {
	dst = append(dst, "event="...)
	dst = append(dst, ev.Kind.String()...)
	if ev.SSID != "" {
		dst = append(dst, " ssid="...)
		dst = strconv.AppendQuote(dst, ev.SSID)
	}
	if ev.Attempt > 0 {
		dst = append(dst, " attempt="...)
		dst = strconv.AppendInt(dst, int64(ev.Attempt), 10)
	}
	if ev.Pass > 0 {
		dst = append(dst, " pass="...)
		dst = strconv.AppendInt(dst, int64(ev.Pass), 10)
	}
	if ev.Elapsed > 0 {
		dst = append(dst, " elapsed="...)
		dst = append(dst, ev.Elapsed.String()...)
	}
	if ev.Err != nil {
		dst = append(dst, " err="...)
		dst = strconv.AppendQuote(dst, ev.Err.Error())
	}
	return dst
}
