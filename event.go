package desim

import "time"

// Event is an immutable descriptor of a scheduled invocation: the sandbox
// that owns it, a process-local monotonically-assigned index used to break
// timestamp ties, the logical timestamp it fires at, and the callable it
// runs. It is constructed only by Sandbox.Schedule and never mutated after.
type Event struct {
	owner     *Sandbox
	index     int64
	timestamp time.Duration
	action    func()
	tag       string
}

// Owner returns the sandbox this event was scheduled into.
func (e *Event) Owner() *Sandbox { return e.owner }

// Index returns the event's tie-break index, assigned in scheduling order.
func (e *Event) Index() int64 { return e.index }

// Timestamp returns the logical time this event fires at.
func (e *Event) Timestamp() time.Duration { return e.timestamp }

// Tag returns the optional label attached at scheduling time.
func (e *Event) Tag() string { return e.tag }

// Execute invokes the event's action, if any. An event with a nil action
// (reserved for future use, e.g. barrier events) is a no-op.
func (e *Event) Execute() {
	if e.action != nil {
		e.action()
	}
}

// eventLess is the total order over events: primary key timestamp, secondary
// key index, giving strict FIFO-by-scheduling-order among same-timestamp
// events regardless of which sandbox in the tree owns them.
func eventLess(a, b *Event) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	return a.index < b.index
}

// eventIndexCounter is the process-local monotonic source for Event.index,
// owned by a simulation root rather than global process state (spec REDESIGN
// FLAGS, §9): each root gets its own counter, so independent simulations
// running in the same process never interfere with each other's tie-break
// ordering.
type eventIndexCounter struct {
	next int64
}

// allocate returns the next index and advances the counter.
func (c *eventIndexCounter) allocate() int64 {
	v := c.next
	c.next++
	return v
}

// reset rewinds the counter so the next allocate() returns 0. Only
// monotonicity between allocations matters for correctness; 0 is the chosen
// convention (spec §9 open question).
func (c *eventIndexCounter) reset() {
	c.next = 0
}
