// Package rib holds the routing table maintained by the distance-vector
// engine: a destination-keyed map of routes, each either live or awaiting
// garbage collection.
//
// 3.1 Routes: Advertisement and Storage (RFC 2453 terms, adapted)
//
// A route pairs a destination router identifier with the metric and next
// hop by which it is currently reached. The table always carries exactly
// one entry per known destination: it is never split across separate
// live/garbage structures, so a destination cannot simultaneously be both
// (see EntryState).
//
// The table is owned exclusively by the event loop (internal/router); no
// method here takes a lock, because no mutation happens outside that
// single goroutine.
package rib

// RouterID identifies a router in [1, 64000].
type RouterID uint16

// Neighbor is a directly reachable router, as configured. Immutable after
// construction.
type Neighbor struct {
	ID           RouterID
	OutboundPort int
	LinkMetric   int
}

// EntryState distinguishes a usable route from one awaiting purge.
type EntryState int

const (
	// Live means Metric may be anywhere in [0, 16).
	Live EntryState = iota
	// Garbage means Metric is pinned at Infinity and AgeInGC is counting
	// toward the garbage-collection period.
	Garbage
)

// Infinity is the metric value denoting an unreachable destination.
const Infinity = 16

// Entry is one destination's routing information.
type Entry struct {
	Dest     RouterID
	Metric   int
	NextHop  RouterID
	Changed  bool
	Age      int
	State    EntryState
	AgeInGC  int
}

// Table is the routing table: a single mapping from destination to Entry.
type Table struct {
	self    RouterID
	entries map[RouterID]*Entry
}

// New creates a table containing only the self-entry: metric 0, next hop
// self, age 0, live.
func New(self RouterID) *Table {
	t := &Table{self: self, entries: make(map[RouterID]*Entry)}
	t.entries[self] = &Entry{Dest: self, Metric: 0, NextHop: self, State: Live}
	return t
}

// Self returns this router's own identifier.
func (t *Table) Self() RouterID { return t.self }

// Get returns the entry for dest, if any.
func (t *Table) Get(dest RouterID) (Entry, bool) {
	e, ok := t.entries[dest]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Upsert installs or replaces the entry for dest. The self-entry must
// never be upserted through this path; callers enforce that by never
// calling Upsert with dest == t.Self().
func (t *Table) Upsert(dest RouterID, e Entry) {
	e.Dest = dest
	cp := e
	t.entries[dest] = &cp
}

// MarkChanged sets the change flag for dest, if present.
func (t *Table) MarkChanged(dest RouterID) {
	if e, ok := t.entries[dest]; ok {
		e.Changed = true
	}
}

// ClearChangeFlags clears the change flag on every entry, typically after
// a triggered update has been built.
func (t *Table) ClearChangeFlags() {
	for _, e := range t.entries {
		e.Changed = false
	}
}

// MoveToGarbage transitions dest to the Garbage state with metric pinned
// at Infinity, age-in-gc reset to 0, and the change flag asserted. No-op
// if dest is absent or already in garbage.
func (t *Table) MoveToGarbage(dest RouterID) {
	e, ok := t.entries[dest]
	if !ok || e.State == Garbage {
		return
	}
	e.State = Garbage
	e.Metric = Infinity
	e.AgeInGC = 0
	e.Changed = true
}

// Resurrect removes dest from the garbage state, leaving it live with
// whatever metric/next-hop the caller has already set via Upsert.
func (t *Table) Resurrect(dest RouterID) {
	if e, ok := t.entries[dest]; ok {
		e.State = Live
		e.AgeInGC = 0
	}
}

// Purge deletes dest entirely, live or garbage.
func (t *Table) Purge(dest RouterID) {
	delete(t.entries, dest)
}

// IterAll calls fn once per entry, including self and garbage entries.
// Iteration order is unspecified.
func (t *Table) IterAll(fn func(Entry)) {
	for _, e := range t.entries {
		fn(*e)
	}
}

// AgeAll increments Age on every non-self entry and AgeInGC on every
// garbage entry, then forces the self-entry's age back to 0. Called once
// per timer tick.
func (t *Table) AgeAll() {
	for dest, e := range t.entries {
		if dest == t.self {
			e.Age = 0
			continue
		}
		e.Age++
		if e.State == Garbage {
			e.AgeInGC++
		}
	}
}

// RefreshAge zeroes Age for every entry currently reached via nextHop.
// This is the sole mechanism that keeps live routes from timing out.
func (t *Table) RefreshAge(nextHop RouterID) {
	for _, e := range t.entries {
		if e.NextHop == nextHop {
			e.Age = 0
		}
	}
}
