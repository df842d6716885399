// Package tracker owns the previous-scan presence state and turns successive
// address sets into join/leave events.
package tracker

import "github.com/netvigil/netvigil/internal/device"

// EventKind discriminates the presence event variants.
type EventKind int

const (
	// EventJoined signals an address present now that was absent before.
	EventJoined EventKind = iota
	// EventLeft signals an address absent now that was present before.
	EventLeft
	// EventStartupSummary carries the full first-observation address list,
	// emitted only when a startup report was requested.
	EventStartupSummary
)

// Event is a presence event produced by the tracker and consumed by the
// notification policy. Addr is set for Joined/Left; Addrs carries the sorted
// address list for StartupSummary. Events are transient, never persisted.
type Event struct {
	Kind  EventKind
	Addr  device.Addr
	Addrs []device.Addr
}

// Joined builds a join event for addr.
func Joined(addr device.Addr) Event { return Event{Kind: EventJoined, Addr: addr} }

// Left builds a leave event for addr.
func Left(addr device.Addr) Event { return Event{Kind: EventLeft, Addr: addr} }

// StartupSummary builds a summary event over the given set. Addresses are
// sorted so the resulting notification body is reproducible.
func StartupSummary(scan device.Set) Event {
	return Event{Kind: EventStartupSummary, Addrs: scan.Sorted()}
}

// Tracker computes the presence delta between consecutive scans. It is not
// safe for concurrent use; the scan loop runs one cycle to completion before
// starting the next, so no locking is needed.
type Tracker struct {
	previous device.Set
	primed   bool
}

// New returns a Tracker with no baseline. The first Diff after construction
// reports a first observation.
func New() *Tracker {
	return &Tracker{previous: make(device.Set)}
}

// Diff computes the delta of scan against the previous committed state.
// joined = scan − previous, left = previous − scan; the two are disjoint by
// construction. first is true until the first Commit: on that cycle the scan
// establishes the baseline and no join/leave events should be derived from
// the (necessarily complete) difference.
//
// Diff does not mutate state; the caller commits once the cycle's dispatch
// is complete.
func (t *Tracker) Diff(scan device.Set) (joined, left device.Set, first bool) {
	if !t.primed {
		return make(device.Set), make(device.Set), true
	}
	return scan.Diff(t.previous), t.previous.Diff(scan), false
}

// Commit replaces the previous-scan state with scan. Call only after all
// diffing and event dispatch for the cycle has finished, so a failed cycle
// never leaves the baseline partially updated.
func (t *Tracker) Commit(scan device.Set) {
	t.previous = scan.Clone()
	t.primed = true
}

// Online returns a copy of the last committed address set.
func (t *Tracker) Online() device.Set {
	return t.previous.Clone()
}
