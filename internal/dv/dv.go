// Package dv implements the distance-vector update algorithm: applying a
// received advertisement to the routing table and deciding whether a
// route should be replaced, resurrected, or moved to garbage.
package dv

import "ripd/internal/rib"

// Result reports the side effects of Apply that the caller (the event
// loop) needs to act on outside the routing table itself.
type Result struct {
	// Triggered is true if at least one destination entered garbage
	// during this call, requiring a triggered update to be raised.
	Triggered bool
}

// Apply processes one decoded advertisement from origin, whose
// neighborLinkMetric is the configured cost of the link to origin.
// Callers must already have verified that origin is a configured
// neighbor (spec.md §4.3: otherwise the packet is silently dropped) —
// Apply assumes it.
func Apply(tbl *rib.Table, origin rib.RouterID, neighborLinkMetric int, adverts map[uint16]int) Result {
	var result Result

	for destRaw, advertisedMetric := range adverts {
		dest := rib.RouterID(destRaw)
		if dest == tbl.Self() {
			continue
		}

		offered := advertisedMetric + neighborLinkMetric
		if offered > rib.Infinity {
			offered = rib.Infinity
		}

		cur, exists := tbl.Get(dest)
		curMetric := rib.Infinity
		var curNextHop rib.RouterID
		if exists {
			curMetric = cur.Metric
			curNextHop = cur.NextHop
		}

		replace := offered < curMetric || (offered > curMetric && curNextHop == origin)
		if replace {
			wasGarbage := exists && cur.State == rib.Garbage

			tbl.Upsert(dest, rib.Entry{
				Metric:  offered,
				NextHop: origin,
				Changed: true,
				Age:     0,
			})

			if wasGarbage && offered < rib.Infinity {
				tbl.Resurrect(dest)
			}

			if offered == rib.Infinity {
				if !wasGarbage {
					tbl.MoveToGarbage(dest)
					result.Triggered = true
				}
			}
		}
	}

	tbl.RefreshAge(origin)

	return result
}
