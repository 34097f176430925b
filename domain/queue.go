package domain

import "github.com/desim-go/desim"

// Queue is a capacity-bounded FIFO staging area. Loads arrive via
// RqstEnqueue into a pending-to-enqueue list; whenever capacity allows, the
// head of that list moves into the queueing list, firing OnEnqueued and
// registering +1 on the queueing hour-counter. Dequeue removes a queueing
// load (e.g. because a downstream Server pulled it) and retriggers an
// attempt to admit the next pending load.
type Queue[L comparable] struct {
	*desim.Sandbox

	capacity int // 0 means unbounded

	pendingToEnqueue []L
	queueing         []L

	onEnqueued func(load L)

	queueingHours *desim.HourCounter
}

// NewQueue constructs a Queue sandbox with the given capacity (0 =
// unbounded). onEnqueued, if non-nil, fires whenever a load is admitted
// into the queueing list.
func NewQueue[L comparable](id string, seed int64, capacity int, onEnqueued func(load L)) *Queue[L] {
	q := &Queue[L]{
		Sandbox:    desim.NewSandbox(id, seed),
		capacity:   capacity,
		onEnqueued: onEnqueued,
	}
	q.queueingHours = q.AddHourCounter(false)
	return q
}

// QueueingHours is the time-weighted accumulator tracking how many loads
// are queueing over time.
func (q *Queue[L]) QueueingHours() *desim.HourCounter { return q.queueingHours }

// Queueing returns a snapshot of the loads currently admitted into the
// queueing list (not the pending-to-enqueue backlog).
func (q *Queue[L]) Queueing() []L {
	out := make([]L, len(q.queueing))
	copy(out, q.queueing)
	return out
}

// Pending returns a snapshot of loads still waiting to be admitted.
func (q *Queue[L]) Pending() []L {
	out := make([]L, len(q.pendingToEnqueue))
	copy(out, q.pendingToEnqueue)
	return out
}

// RqstEnqueue appends load to the pending-to-enqueue list and attempts to
// admit the head of that list into the queueing list.
func (q *Queue[L]) RqstEnqueue(load L) {
	q.pendingToEnqueue = append(q.pendingToEnqueue, load)
	q.attemptEnqueue()
}

// Dequeue removes load from the queueing list (a no-op if it is not
// present) and retriggers an admission attempt for the pending backlog.
func (q *Queue[L]) Dequeue(load L) {
	for i, v := range q.queueing {
		if v == load {
			q.queueing = append(q.queueing[:i], q.queueing[i+1:]...)
			q.queueingHours.ObserveChange(-1)
			break
		}
	}
	q.attemptEnqueue()
}

// attemptEnqueue moves the head of the pending list into the queueing list
// if capacity allows. At most one load is admitted per call — a caller that
// mutated capacity or the pending list in a way that could admit several
// loads at once should call RqstEnqueue/Dequeue once per load, same as the
// reference callers in this package.
func (q *Queue[L]) attemptEnqueue() {
	if len(q.pendingToEnqueue) == 0 {
		return
	}
	if q.capacity > 0 && len(q.queueing) >= q.capacity {
		return
	}
	load := q.pendingToEnqueue[0]
	q.pendingToEnqueue = q.pendingToEnqueue[1:]
	q.queueing = append(q.queueing, load)
	q.queueingHours.ObserveChange(1)
	if q.onEnqueued != nil {
		q.onEnqueued(load)
	}
}
