// Package clock implements the timer subsystem: periodic advertisement
// scheduling, per-route timeout, garbage collection, and the
// triggered-update suppression window. All timers advance in whole
// seconds, driven by an explicit Tick call from the event loop — there is
// no free-running goroutine here, matching spec.md §4.4's "the engine
// does not require sub-second accuracy".
package clock

import (
	"math/rand"
	"time"

	"ripd/internal/rib"
)

// Periods holds the three configured timer periods, in seconds, as
// validated by internal/config (timeout == 6*scheduled, garbage == 4*scheduled).
type Periods struct {
	Scheduled int
	Timeout   int
	Garbage   int
}

// Events is what Tick reports back to the caller so it can drive the
// Advertiser without this package importing it.
type Events struct {
	// TimedOut lists destinations that just transitioned to garbage via
	// the timeout sweep this tick.
	TimedOut []rib.RouterID
	// EmitScheduled is true if a full scheduled update must be sent now.
	EmitScheduled bool
	// EmitTriggered is true if a triggered update (built from entries
	// whose Changed flag is set) must be sent now.
	EmitTriggered bool
}

// Engine tracks the scheduled-update timer and the triggered-update
// suppression state machine described in spec.md §4.5.
type Engine struct {
	periods Periods
	rng     *rand.Rand

	scheduledAge    int
	nextScheduled   int
	trigBlockActive bool
	trigBlockRemain int
	trigQueued      bool
}

// NewEngine constructs a timer engine. rng must not be shared across
// goroutines; the event loop is single-threaded so one *rand.Rand per
// Engine is safe.
func NewEngine(p Periods, rng *rand.Rand) *Engine {
	e := &Engine{periods: p, rng: rng}
	e.nextScheduled = e.drawScheduledPeriod()
	return e
}

func (e *Engine) drawScheduledPeriod() int {
	factor := 0.8 + e.rng.Float64()*0.4 // uniform(0.8, 1.2)
	d := time.Duration(float64(e.periods.Scheduled)*factor*float64(time.Second)) + time.Millisecond/2
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (e *Engine) drawBlockWindow() int {
	secs := 1 + e.rng.Intn(5) // uniform(1, 5) inclusive, whole seconds
	return secs
}

// Tick advances every timer by one second, sweeps timeouts and garbage,
// and reports the emissions the caller must perform. It does not touch
// the Advertiser or transport directly (spec.md §9: narrow interfaces).
func (e *Engine) Tick(tbl *rib.Table) Events {
	var ev Events

	e.scheduledAge++
	tbl.AgeAll()

	// Timeout sweep: non-self, non-garbage entries whose age has reached
	// the timeout period move to garbage.
	var liveStale []rib.RouterID
	tbl.IterAll(func(entry rib.Entry) {
		if entry.Dest == tbl.Self() {
			return
		}
		if entry.State == rib.Garbage {
			return
		}
		if entry.Age >= e.periods.Timeout {
			liveStale = append(liveStale, entry.Dest)
		}
	})
	for _, dest := range liveStale {
		tbl.MoveToGarbage(dest)
		ev.TimedOut = append(ev.TimedOut, dest)
	}
	if len(ev.TimedOut) > 0 {
		e.requestTriggered(&ev)
	}

	// Garbage sweep: purge anything that has sat in garbage long enough.
	var dead []rib.RouterID
	tbl.IterAll(func(entry rib.Entry) {
		if entry.State == rib.Garbage && entry.AgeInGC >= e.periods.Garbage {
			dead = append(dead, entry.Dest)
		}
	})
	for _, dest := range dead {
		tbl.Purge(dest)
	}

	// Scheduled emission.
	if e.scheduledAge >= e.nextScheduled {
		e.scheduledAge = 0
		e.nextScheduled = e.drawScheduledPeriod()
		ev.EmitScheduled = true
	}

	// Block expiry.
	if e.trigBlockActive {
		e.trigBlockRemain--
		if e.trigBlockRemain <= 0 {
			e.trigBlockActive = false
			if e.trigQueued {
				e.trigQueued = false
				e.startBlock()
				ev.EmitTriggered = true
			}
		}
	}

	return ev
}

// RequestTriggered is called by the caller when a change outside of
// Tick's own timeout sweep (i.e. a DV update during packet processing)
// wants to raise a triggered update. It applies the same suppression
// state machine as the timeout path.
func (e *Engine) RequestTriggered() bool {
	var ev Events
	e.requestTriggered(&ev)
	return ev.EmitTriggered
}

func (e *Engine) requestTriggered(ev *Events) {
	if e.trigBlockActive {
		e.trigQueued = true
		return
	}
	e.startBlock()
	ev.EmitTriggered = true
}

func (e *Engine) startBlock() {
	e.trigBlockActive = true
	e.trigBlockRemain = e.drawBlockWindow()
}
