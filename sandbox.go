package desim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Sandbox is a scheduler node: it owns a future-event list and a list of
// child sandboxes and hour-counters. Sandboxes compose into a tree; only the
// root's clock is authoritative, every descendant reads through to it. User
// models embed a *Sandbox (composition, not inheritance — spec §9 REDESIGN
// FLAGS) and override warm-up behavior by registering a handler with
// OnWarmedUp instead of subclassing.
type Sandbox struct {
	id     string
	seed   int64
	logger *logrus.Entry

	fel          *futureEventList
	children     []*Sandbox
	hourCounters []*HourCounter
	parent       *Sandbox

	// clockTime is authoritative only when parent == nil.
	clockTime time.Duration

	// eventIndex is allocated once per root and shared by every FEL in its
	// subtree (spec §9: index counter owned by the root, not global state).
	eventIndex *eventIndexCounter

	// warmedUpHandler is the per-sandbox hook a domain module registers to
	// reset its own transient state on warm-up; it runs before this
	// sandbox's propagated callbacks.
	warmedUpHandler func()
	// warmedUpCallbacks is the ordered multicast composed at AddChild/
	// AddHourCounter time: each call appends one more propagation callback.
	warmedUpCallbacks []func()

	defaultRng  *rand.Rand
	rngBySystem map[string]*rand.Rand

	// running guards against reentrant Run* calls from within an event
	// action (spec §5: "no action may call run* on its own root").
	running bool

	// wall-clock pacing state for RunSpeed, root-only.
	wallClockSeeded bool
	wallClockRef    time.Time
}

// NewSandbox constructs a root sandbox: parent is nil, clockTime starts at
// zero, and it owns a fresh event-index counter. Use AddChild to attach
// descendants.
func NewSandbox(id string, seed int64) *Sandbox {
	s := &Sandbox{
		id:          id,
		seed:        seed,
		eventIndex:  &eventIndexCounter{},
		defaultRng:  rand.New(rand.NewSource(seed)),
		rngBySystem: make(map[string]*rand.Rand),
	}
	s.fel = newFutureEventList(s)
	return s
}

// WithLogger attaches a structured logger, tagged with this sandbox's id,
// and returns the sandbox for chaining.
func (s *Sandbox) WithLogger(base *logrus.Logger) *Sandbox {
	if base == nil {
		s.logger = nil
		return s
	}
	s.logger = base.WithField("sandbox", s.id)
	return s
}

// ID returns this sandbox's label (may be empty).
func (s *Sandbox) ID() string { return s.id }

// Seed returns the seed this sandbox's default RNG was constructed with.
func (s *Sandbox) Seed() int64 { return s.seed }

// Logger returns the attached logger, or nil if none was set.
func (s *Sandbox) Logger() *logrus.Entry { return s.logger }

// Parent returns the parent sandbox, or nil if this is the root.
func (s *Sandbox) Parent() *Sandbox { return s.parent }

// Children returns an immutable snapshot of this sandbox's direct children.
func (s *Sandbox) Children() []*Sandbox {
	out := make([]*Sandbox, len(s.children))
	copy(out, s.children)
	return out
}

// DefaultRng returns this sandbox's deterministic RNG, seeded by Seed().
func (s *Sandbox) DefaultRng() *rand.Rand { return s.defaultRng }

// RNGFor returns a deterministic RNG isolated to the named subsystem,
// derived from this sandbox's seed the way the teacher's PartitionedRNG
// derives per-subsystem streams (XOR the seed with an FNV-1a hash of the
// name), so that adding a new consumer of randomness never perturbs the
// draw sequence of an existing one. The result is cached: repeated calls
// with the same name return the same *rand.Rand.
func (s *Sandbox) RNGFor(name string) *rand.Rand {
	if rng, ok := s.rngBySystem[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(s.seed ^ fnv1a64(name)))
	s.rngBySystem[name] = rng
	return rng
}

// UpdateRandomSeed replaces this sandbox's default RNG and every cached
// subsystem RNG with fresh ones seeded from newSeed. RNG state is then fully
// determined by newSeed and subsequent consumption order.
func (s *Sandbox) UpdateRandomSeed(newSeed int64) {
	s.seed = newSeed
	s.defaultRng = rand.New(rand.NewSource(newSeed))
	s.rngBySystem = make(map[string]*rand.Rand)
}

// Reset restarts a deterministic replay from time zero: it rewinds the root
// clock and its shared event-index counter, discards every outstanding event
// in the whole subtree, and reseeds the root's RNGs from newSeed. Run only
// meaningfully from the root; non-roots delegate. Matches the teacher's
// SimulationKey contract (sim/rng.go): the same seed and configuration run
// again from Reset must produce bit-for-bit identical results.
func (s *Sandbox) Reset(newSeed int64) {
	root := s.root()
	root.clockTime = 0
	root.eventIndex.reset()
	root.clearSubtreeFEL()
	root.UpdateRandomSeed(newSeed)
	root.wallClockSeeded = false
}

// clearSubtreeFEL empties this sandbox's own FEL and every descendant's.
func (s *Sandbox) clearSubtreeFEL() {
	s.fel.clear()
	for _, c := range s.children {
		c.clearSubtreeFEL()
	}
}

// root walks up to the authoritative sandbox.
func (s *Sandbox) root() *Sandbox {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// ClockTime returns the current logical time, resolved through to the root.
func (s *Sandbox) ClockTime() time.Duration {
	return s.root().clockTime
}

// AddChild attaches child to s, registering child's warm-up propagation:
// when s's warm-up fires, child's entire subtree (and its hour-counters)
// fires too. Panics if child already has a parent — sharing a child across
// parents is programmer misuse (spec §7) and is detected unconditionally.
func (s *Sandbox) AddChild(child *Sandbox) *Sandbox {
	if child.parent != nil {
		panic(fmt.Sprintf("desim: sandbox %q already has a parent, cannot attach to %q", child.id, s.id))
	}
	child.parent = s
	child.adoptEventIndex(s.eventIndex)
	s.children = append(s.children, child)
	s.warmedUpCallbacks = append(s.warmedUpCallbacks, child.fireWarmedUp)
	return child
}

// adoptEventIndex propagates a shared event-index counter down this
// sandbox's already-assembled subtree, so attach order (build leaves first
// vs. attach-then-build) never matters for tie-break monotonicity.
func (s *Sandbox) adoptEventIndex(counter *eventIndexCounter) {
	s.eventIndex = counter
	for _, c := range s.children {
		c.adoptEventIndex(counter)
	}
}

// AddHourCounter creates a new HourCounter bound to s and registers it for
// warm-up reset: when s's warm-up fires, this counter's accumulators reset.
func (s *Sandbox) AddHourCounter(keepHistory bool) *HourCounter {
	hc := newHourCounter(s, keepHistory)
	s.hourCounters = append(s.hourCounters, hc)
	s.warmedUpCallbacks = append(s.warmedUpCallbacks, hc.warmedUp)
	return hc
}

// OnWarmedUp registers the hook a domain module uses in place of overriding
// a warmedUpHandler method: it runs once, at the instant this sandbox's
// warm-up horizon is reached, before child/hour-counter propagation.
func (s *Sandbox) OnWarmedUp(fn func()) {
	s.warmedUpHandler = fn
}

// fireWarmedUp invokes this sandbox's own handler, then every propagated
// callback in registration order (children depth-first, hour-counters
// interleaved in the order they were added relative to children).
func (s *Sandbox) fireWarmedUp() {
	if s.warmedUpHandler != nil {
		s.warmedUpHandler()
	}
	for _, cb := range s.warmedUpCallbacks {
		cb()
	}
}

// Schedule inserts an event into this sandbox's own FEL — never a child's —
// at ClockTime()+delay. delay must be non-negative; a negative delay is a
// logic violation (spec §7) and returns an error rather than silently
// clamping.
func (s *Sandbox) Schedule(action func(), delay time.Duration, tag ...string) (*Event, error) {
	if delay < 0 {
		return nil, fmt.Errorf("desim: sandbox %q: negative delay %s is not permitted", s.id, delay)
	}
	label := ""
	if len(tag) > 0 {
		label = tag[0]
	}
	ev := s.fel.add(action, s.ClockTime()+delay, label)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"event_index": ev.index,
			"timestamp":   ev.timestamp,
			"tag":         label,
		}).Trace("scheduled event")
	}
	return ev, nil
}

// ScheduleNow is shorthand for Schedule(action, 0, tag...).
func (s *Sandbox) ScheduleNow(action func(), tag ...string) (*Event, error) {
	return s.Schedule(action, 0, tag...)
}

// Cancel removes a previously scheduled event from its owner's FEL before it
// fires. A no-op if the event already fired or was already cancelled.
func (s *Sandbox) Cancel(ev *Event) {
	if ev == nil {
		return
	}
	ev.owner.fel.remove(ev)
}

// GetHeadEvent returns the earliest event among this sandbox's own FEL and
// every descendant's GetHeadEvent, by the global (timestamp, index) order.
// Every call traverses the whole subtree; callers needing this on a hot
// path should cache per-subtree minima themselves — the spec permits that
// optimization as long as ordering is preserved.
func (s *Sandbox) GetHeadEvent() *Event {
	best := s.fel.min()
	for _, c := range s.children {
		if h := c.GetHeadEvent(); h != nil {
			if best == nil || eventLess(h, best) {
				best = h
			}
		}
	}
	return best
}

// Run locates the global head event across the whole tree. If none exists,
// it returns false. Otherwise it removes the event from its owner's FEL,
// advances the root clock to the event's timestamp (the clock may only
// advance, never retreat), invokes the event's action, and returns true.
// Calling Run (or any other Run* variant) from within an event's own action
// is reentrancy and panics.
func (s *Sandbox) Run() (bool, error) {
	root := s.root()
	if root.running {
		panic(fmt.Sprintf("desim: reentrant Run call on sandbox %q", root.id))
	}
	head := root.GetHeadEvent()
	if head == nil {
		return false, nil
	}
	if head.timestamp < root.clockTime {
		return false, fmt.Errorf("desim: sandbox %q: event timestamp %s precedes clock %s", root.id, head.timestamp, root.clockTime)
	}
	head.owner.fel.remove(head)
	root.clockTime = head.timestamp
	if root.logger != nil {
		root.logger.WithFields(logrus.Fields{
			"clock": root.clockTime,
			"tag":   head.tag,
		}).Debug("executing event")
	}
	root.running = true
	head.Execute()
	root.running = false
	return true, nil
}

// RunDuration advances the simulation by delay, equivalent to
// RunUntil(ClockTime() + delay).
func (s *Sandbox) RunDuration(delay time.Duration) (bool, error) {
	if delay < 0 {
		return false, fmt.Errorf("desim: sandbox %q: negative run duration %s is not permitted", s.id, delay)
	}
	return s.RunUntil(s.ClockTime() + delay)
}

// RunEvents executes up to eventCount Run() steps, stopping as soon as one
// returns false (no more events anywhere in the tree).
func (s *Sandbox) RunEvents(eventCount int) (bool, error) {
	root := s.root()
	for i := 0; i < eventCount; i++ {
		ok, err := root.Run()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// RunSpeed paces execution at wall-clock speed: it observes elapsed
// wall-clock time since the previous RunSpeed call and runs the simulation
// forward by elapsed*speed logical duration. The first call on a given root
// only seeds the wall-clock reference point and returns (true, nil) without
// executing any event.
func (s *Sandbox) RunSpeed(speed float64) (bool, error) {
	root := s.root()
	now := time.Now()
	if !root.wallClockSeeded {
		root.wallClockRef = now
		root.wallClockSeeded = true
		return true, nil
	}
	elapsed := now.Sub(root.wallClockRef)
	root.wallClockRef = now
	simElapsed := time.Duration(float64(elapsed) * speed)
	return root.RunUntil(root.clockTime + simElapsed)
}

// RunUntil executes Run() repeatedly while the current head event exists
// and its timestamp is at or before terminate. When the loop exits, the
// clock is advanced to terminate regardless of whether any further event
// fired — the horizon is reached either way. Returns true iff an event
// remains anywhere in the tree after the loop exits (i.e. the simulation
// could still continue).
func (s *Sandbox) RunUntil(terminate time.Duration) (bool, error) {
	root := s.root()
	if terminate < root.clockTime {
		return false, fmt.Errorf("desim: sandbox %q: RunUntil(%s) precedes clock %s", root.id, terminate, root.clockTime)
	}
	for {
		head := root.GetHeadEvent()
		if head == nil || head.timestamp > terminate {
			break
		}
		ok, err := root.Run()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
	}
	root.clockTime = terminate
	return root.GetHeadEvent() != nil, nil
}

// WarmUp runs the simulation forward by duration, then fans out the
// warm-up notification across the entire subtree and over every registered
// hour-counter. Run only meaningfully from the root; non-roots delegate.
func (s *Sandbox) WarmUp(duration time.Duration) error {
	root := s.root()
	if _, err := root.RunUntil(root.clockTime + duration); err != nil {
		return err
	}
	root.fireWarmedUp()
	return nil
}

// fnv1a64 computes a 64-bit FNV-1a hash of name, used to derive
// subsystem-isolated RNG seeds the way the teacher's PartitionedRNG isolates
// router/instance streams from the workload stream.
func fnv1a64(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
