// Package advertiser builds and transmits RIP advertisements, applying
// split-horizon with poisoned reverse uniformly to both the periodic
// scheduled update and the off-schedule triggered update.
package advertiser

import (
	"ripd/internal/packet"
	"ripd/internal/rib"
)

// Sender is the narrow outbound capability the Advertiser needs. It is
// satisfied by internal/transport.UDP and by test doubles.
type Sender interface {
	SendTo(buf []byte, port int) error
}

// buildFor renders tbl's entries as a packet for neighbor n, poisoning
// any entry whose next hop is n. onlyChanged restricts the entries to
// those currently marked changed (the triggered-update payload).
func buildFor(tbl *rib.Table, n rib.Neighbor, onlyChanged bool) []packet.Entry {
	var entries []packet.Entry
	tbl.IterAll(func(e rib.Entry) {
		if onlyChanged && !e.Changed {
			return
		}
		metric := e.Metric
		if e.NextHop == n.ID && e.Dest != tbl.Self() {
			metric = rib.Infinity
		}
		entries = append(entries, packet.Entry{DestID: uint16(e.Dest), Metric: metric})
	})
	return entries
}

// Scheduled sends a full table dump (live and garbage entries alike, per
// spec.md §9's normative resolution) to every neighbor, with poisoned
// reverse applied per neighbor.
func Scheduled(sender Sender, tbl *rib.Table, neighbors []rib.Neighbor) error {
	var firstErr error
	for _, n := range neighbors {
		entries := buildFor(tbl, n, false)
		buf := packet.Encode(uint16(tbl.Self()), entries)
		if err := sender.SendTo(buf, n.OutboundPort); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Triggered sends only the entries whose change flag is currently set,
// then clears every change flag. An empty payload for a given neighbor is
// elided rather than sent (spec.md §4.5: "a no-op payload per neighbor;
// implementations may elide the emission").
func Triggered(sender Sender, tbl *rib.Table, neighbors []rib.Neighbor) error {
	var firstErr error
	for _, n := range neighbors {
		entries := buildFor(tbl, n, true)
		if len(entries) == 0 {
			continue
		}
		buf := packet.Encode(uint16(tbl.Self()), entries)
		if err := sender.SendTo(buf, n.OutboundPort); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	tbl.ClearChangeFlags()
	return firstErr
}
