// Package transport abstracts the datagram send/receive capability the
// core consumes, per spec.md §9's "narrow interface" design note: a real
// UDP implementation for production (udp.go) and a deterministic,
// queue-driven fake for tests (fake.go).
package transport

import (
	"context"
	"time"
)

// Datagram is one received packet and the input port it arrived on, so
// the caller can log which listener saw it.
type Datagram struct {
	Buf       []byte
	InputPort int
}

// Sender is the narrow outbound capability the Advertiser needs
// (spec.md §4.6: "a single chosen socket" handles all egress).
type Sender interface {
	SendTo(buf []byte, port int) error
}

// Multiplexer is what the event loop needs: wait up to maxWait for any
// inbound datagram across every bound socket, draining everything already
// queued once the first one arrives, per spec.md §5's "packet processing
// for all readable sockets completes before timers tick". A nil/empty
// result means the wait timed out with nothing to process.
type Multiplexer interface {
	Sender
	RecvBatch(ctx context.Context, maxWait time.Duration) []Datagram
}

var _ Multiplexer = (*UDP)(nil)
