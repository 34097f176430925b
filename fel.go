package desim

import (
	"container/heap"
	"time"
)

// futureEventList is a sandbox's own ordered set of events, keyed by
// eventLess (timestamp then index). It implements heap.Interface directly,
// the same shape as the teacher's EventQueue/EventHeap, extended with
// identity-based removal: the run loop needs to evict the exact event it
// just peeked, and tests require deterministic eviction when duplicate
// timestamps are present.
type futureEventList struct {
	owner *Sandbox
	items []*Event
	// pos maps an event to its current slot in items, kept in sync by
	// heap.Fix/heap.Remove's Swap callback, so Remove can locate it in
	// O(log n) instead of scanning.
	pos map[*Event]int
}

func newFutureEventList(owner *Sandbox) *futureEventList {
	return &futureEventList{
		owner: owner,
		items: make([]*Event, 0),
		pos:   make(map[*Event]int),
	}
}

// heap.Interface

func (f *futureEventList) Len() int { return len(f.items) }

func (f *futureEventList) Less(i, j int) bool {
	return eventLess(f.items[i], f.items[j])
}

func (f *futureEventList) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.pos[f.items[i]] = i
	f.pos[f.items[j]] = j
}

func (f *futureEventList) Push(x any) {
	ev := x.(*Event)
	f.pos[ev] = len(f.items)
	f.items = append(f.items, ev)
}

func (f *futureEventList) Pop() any {
	old := f.items
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	f.items = old[:n-1]
	delete(f.pos, ev)
	return ev
}

// add allocates the next event index from the owning sandbox's root counter,
// constructs the event, and inserts it into this FEL.
func (f *futureEventList) add(action func(), timestamp time.Duration, tag string) *Event {
	ev := &Event{
		owner:     f.owner,
		index:     f.owner.root().eventIndex.allocate(),
		timestamp: timestamp,
		action:    action,
		tag:       tag,
	}
	heap.Push(f, ev)
	return ev
}

// remove evicts ev from this FEL. It is a no-op if ev is not present (e.g.
// it was already popped by the run loop).
func (f *futureEventList) remove(ev *Event) {
	if i, ok := f.pos[ev]; ok {
		heap.Remove(f, i)
	}
}

// min returns the earliest event in this FEL, or nil if empty.
func (f *futureEventList) min() *Event {
	if len(f.items) == 0 {
		return nil
	}
	return f.items[0]
}

// clear empties the FEL.
func (f *futureEventList) clear() {
	f.items = f.items[:0]
	f.pos = make(map[*Event]int)
}
