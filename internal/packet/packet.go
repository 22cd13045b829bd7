// Package packet implements the fixed-layout RIPv2 wire codec: a 4-byte
// header followed by zero or more 20-byte route entries, all big-endian.
package packet

import (
	"encoding/binary"
	"fmt"
)

const (
	command = 2 // response
	version = 2

	familyIdent = 2

	headerLength = 4
	rteLength    = 20

	// MaxMetric is the infinity metric: 16 denotes unreachable.
	MaxMetric = 16
)

// MalformedError reports a layout, constant, or reserved-field violation
// detected while decoding a datagram. The daemon drops the packet and
// continues; it never aborts the process over a malformed datagram.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed rip packet: %s", e.Reason)
}

func malformed(format string, args ...interface{}) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Packet is the decoded form of a datagram: the originating router and a
// mapping from destination router identifier to advertised metric.
type Packet struct {
	OriginID uint16
	Entries  map[uint16]int
}

// Decode parses a datagram per the RIPv2 wire layout. The buffer length
// must satisfy (len-4) mod 20 == 0. Duplicate destination identifiers
// within one packet: last one wins.
func Decode(buf []byte) (*Packet, error) {
	if len(buf) < headerLength {
		return nil, malformed("buffer shorter than header (%d bytes)", len(buf))
	}
	if rem := len(buf) - headerLength; rem%rteLength != 0 {
		return nil, malformed("length %d not aligned to %d-byte route entries", len(buf), rteLength)
	}

	if buf[0] != command {
		return nil, malformed("unexpected command %d, want %d", buf[0], command)
	}
	if buf[1] != version {
		return nil, malformed("unexpected version %d, want %d", buf[1], version)
	}
	originID := binary.BigEndian.Uint16(buf[2:4])

	n := (len(buf) - headerLength) / rteLength
	entries := make(map[uint16]int, n)
	for i := 0; i < n; i++ {
		rte := buf[headerLength+i*rteLength : headerLength+(i+1)*rteLength]

		family := binary.BigEndian.Uint16(rte[0:2])
		if family != familyIdent {
			return nil, malformed("route entry %d: family identifier %d, want %d", i, family, familyIdent)
		}
		if z := binary.BigEndian.Uint16(rte[2:4]); z != 0 {
			return nil, malformed("route entry %d: reserved field not zero (%d)", i, z)
		}
		destAddr := binary.BigEndian.Uint32(rte[4:8])
		if z := binary.BigEndian.Uint32(rte[8:12]); z != 0 {
			return nil, malformed("route entry %d: reserved field not zero (%d)", i, z)
		}
		if z := binary.BigEndian.Uint32(rte[12:16]); z != 0 {
			return nil, malformed("route entry %d: reserved field not zero (%d)", i, z)
		}
		metric := binary.BigEndian.Uint32(rte[16:20])
		if metric > MaxMetric {
			return nil, malformed("route entry %d: metric %d exceeds infinity (%d)", i, metric, MaxMetric)
		}

		entries[uint16(destAddr)] = int(metric)
	}

	return &Packet{OriginID: originID, Entries: entries}, nil
}

// Entry is one (destination, metric) pair to encode, in emission order.
type Entry struct {
	DestID uint16
	Metric int
}

// Encode builds a datagram carrying originID and entries, in the order
// given. No maximum entry count is enforced; callers are expected to keep
// payloads within one UDP datagram.
func Encode(originID uint16, entries []Entry) []byte {
	buf := make([]byte, headerLength+rteLength*len(entries))

	buf[0] = command
	buf[1] = version
	binary.BigEndian.PutUint16(buf[2:4], originID)

	for i, e := range entries {
		rte := buf[headerLength+i*rteLength : headerLength+(i+1)*rteLength]
		binary.BigEndian.PutUint16(rte[0:2], familyIdent)
		binary.BigEndian.PutUint32(rte[4:8], uint32(e.DestID))
		binary.BigEndian.PutUint32(rte[16:20], uint32(e.Metric))
	}

	return buf
}
