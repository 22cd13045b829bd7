package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// TransportError reports a send failure (spec.md §7): logged, never
// retried — RIP relies on periodic retransmission for eventual
// consistency.
type TransportError struct {
	Port int
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: send to port %d: %v", e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UDP binds one socket per input port on 127.0.0.1 and multiplexes
// reads from all of them onto a single channel. The first bound socket
// is reused for all egress, per spec.md §4.6.
type UDP struct {
	conns  []*net.UDPConn
	egress *net.UDPConn
	in     chan Datagram
	log    *logrus.Entry
}

const maxDatagramSize = 8192

// NewUDP binds a listener for each of ports on 127.0.0.1 and starts one
// reader goroutine per listener. Those goroutines only move bytes onto a
// channel; they never touch routing state (spec.md §5).
func NewUDP(ports []int, log *logrus.Entry) (*UDP, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("transport: at least one input port is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	u := &UDP{in: make(chan Datagram, 64), log: log}
	for _, port := range ports {
		addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			u.Close()
			return nil, fmt.Errorf("transport: bind port %d: %w", port, err)
		}
		u.conns = append(u.conns, conn)
		go u.readLoop(conn, port)
	}
	u.egress = u.conns[0]
	return u, nil
}

func (u *UDP) readLoop(conn *net.UDPConn, port int) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			// The connection is closed on shutdown; exit quietly rather
			// than logging an error for every outstanding reader.
			return
		}
		cp := make([]byte, n)
		copy(cp, buf[:n])
		u.in <- Datagram{Buf: cp, InputPort: port}
	}
}

// RecvBatch waits up to maxWait for the first datagram, then drains
// everything already queued without blocking further.
func (u *UDP) RecvBatch(ctx context.Context, maxWait time.Duration) []Datagram {
	var batch []Datagram

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case d := <-u.in:
		batch = append(batch, d)
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}

	for {
		select {
		case d := <-u.in:
			batch = append(batch, d)
		default:
			return batch
		}
	}
}

// SendTo writes buf to 127.0.0.1:port over the shared egress socket.
func (u *UDP) SendTo(buf []byte, port int) error {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
	if _, err := u.egress.WriteToUDP(buf, addr); err != nil {
		te := &TransportError{Port: port, Err: err}
		u.log.WithError(te).Warn("datagram send failed")
		return te
	}
	return nil
}

// Close releases every bound socket.
func (u *UDP) Close() error {
	var firstErr error
	for _, c := range u.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
