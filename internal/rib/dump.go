package rib

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders a human-readable snapshot of the table, one line per
// destination in ascending order. Format is not normative (spec.md §6.4);
// it exists for operators and tests, never parsed back in.
func (t *Table) Dump() string {
	dests := make([]RouterID, 0, len(t.entries))
	for d := range t.entries {
		dests = append(dests, d)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "routing table (router %d):\n", t.self)
	for _, d := range dests {
		e := t.entries[d]
		state := "live"
		if e.State == Garbage {
			state = fmt.Sprintf("garbage(age_in_gc=%ds)", e.AgeInGC)
		}
		fmt.Fprintf(&b, "  dest=%d metric=%d next_hop=%d age=%ds changed=%t state=%s\n",
			e.Dest, e.Metric, e.NextHop, e.Age, e.Changed, state)
	}
	return b.String()
}
