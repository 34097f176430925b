package domain

import (
	"math/rand"
	"time"

	"github.com/desim-go/desim"
)

// Server models a capacity-bounded resource that processes loads for a
// sampled duration, then holds them in a pending-to-depart set until an
// external Depart call frees the capacity they occupy. Capacity is held
// from Start until Depart — not just while actively serving — so that
// downstream post-processing (e.g. a caller draining a completed result)
// correctly back-pressures new starts.
type Server[L comparable] struct {
	*desim.Sandbox

	capacity int // 0 means unbounded

	pendingToStart  []L
	serving         map[L]struct{}
	pendingToDepart map[L]struct{}

	serviceTime func(rng *rand.Rand, load L) time.Duration

	onStarted       func(load L)
	onReadyToDepart func(load L)

	servingHours         *desim.HourCounter
	pendingToDepartHours *desim.HourCounter
}

// NewServer constructs a Server sandbox. serviceTime samples the processing
// duration for a load from the sandbox's default RNG. onStarted and
// onReadyToDepart, if non-nil, fire at the corresponding transitions.
func NewServer[L comparable](id string, seed int64, capacity int, serviceTime func(rng *rand.Rand, load L) time.Duration, onStarted, onReadyToDepart func(load L)) *Server[L] {
	s := &Server[L]{
		Sandbox:         desim.NewSandbox(id, seed),
		capacity:        capacity,
		serving:         make(map[L]struct{}),
		pendingToDepart: make(map[L]struct{}),
		serviceTime:     serviceTime,
		onStarted:       onStarted,
		onReadyToDepart: onReadyToDepart,
	}
	s.servingHours = s.AddHourCounter(false)
	s.pendingToDepartHours = s.AddHourCounter(false)
	return s
}

// ServingHours is the time-weighted accumulator tracking how many loads are
// actively being served.
func (s *Server[L]) ServingHours() *desim.HourCounter { return s.servingHours }

// PendingToDepartHours is the time-weighted accumulator tracking how many
// completed loads are waiting on an external Depart.
func (s *Server[L]) PendingToDepartHours() *desim.HourCounter { return s.pendingToDepartHours }

// RqstStart appends load to the pending-to-start list and attempts to start
// serving the head of that list.
func (s *Server[L]) RqstStart(load L) {
	s.pendingToStart = append(s.pendingToStart, load)
	s.attemptStart()
}

// Depart removes load from the pending-to-depart set, freeing the capacity
// it occupied, and retriggers a start attempt. A no-op if load is not
// pending departure.
func (s *Server[L]) Depart(load L) {
	if _, ok := s.pendingToDepart[load]; !ok {
		return
	}
	delete(s.pendingToDepart, load)
	s.pendingToDepartHours.ObserveChange(-1)
	s.attemptStart()
}

// occupied returns how many capacity slots are currently held, counting
// both actively-serving and pending-to-depart loads.
func (s *Server[L]) occupied() int {
	return len(s.serving) + len(s.pendingToDepart)
}

// attemptStart moves the head of the pending-to-start list into service if
// capacity allows.
func (s *Server[L]) attemptStart() {
	if len(s.pendingToStart) == 0 {
		return
	}
	if s.capacity > 0 && s.occupied() >= s.capacity {
		return
	}
	load := s.pendingToStart[0]
	s.pendingToStart = s.pendingToStart[1:]
	s.serving[load] = struct{}{}
	s.servingHours.ObserveChange(1)

	duration := s.serviceTime(s.DefaultRng(), load)
	_, _ = s.Schedule(func() { s.readyToDepart(load) }, duration, "service-complete")

	if s.onStarted != nil {
		s.onStarted(load)
	}
}

// readyToDepart fires at service completion: it moves load from serving
// into pending-to-depart and notifies the caller. Capacity is not freed
// here — only Depart frees it.
func (s *Server[L]) readyToDepart(load L) {
	delete(s.serving, load)
	s.servingHours.ObserveChange(-1)
	s.pendingToDepart[load] = struct{}{}
	s.pendingToDepartHours.ObserveChange(1)
	if s.onReadyToDepart != nil {
		s.onReadyToDepart(load)
	}
}
