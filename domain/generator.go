// Package domain holds reference consumers of the desim core: a source
// (Generator, PatternGenerator) and a pipeline (Queue, Server) generic
// enough to demonstrate the engine's hierarchical composition and
// time-weighted accumulation without constraining either to a particular
// kind of load.
package domain

import (
	"math/rand"
	"time"

	"github.com/desim-go/desim"
)

// Generator is a sandbox that emits onArrive notifications on a schedule
// governed by a user-supplied inter-arrival-time sampler. It has two
// states: off (initial) and on.
type Generator struct {
	*desim.Sandbox

	interArrivalTime func(rng *rand.Rand) time.Duration
	onArrive         func(count int)

	isOn      bool
	startTime time.Duration
	count     int
}

// NewGenerator constructs a Generator sandbox. interArrivalTime samples the
// gap until the next arrival from the sandbox's default RNG; onArrive, if
// non-nil, is invoked after each accepted arrival with the running count.
func NewGenerator(id string, seed int64, interArrivalTime func(rng *rand.Rand) time.Duration, onArrive func(count int)) *Generator {
	g := &Generator{
		Sandbox:          desim.NewSandbox(id, seed),
		interArrivalTime: interArrivalTime,
		onArrive:         onArrive,
	}
	g.OnWarmedUp(g.warmedUpHandler)
	return g
}

// IsOn reports whether the generator is currently emitting arrivals.
func (g *Generator) IsOn() bool { return g.isOn }

// Count returns the number of arrivals emitted since construction or the
// last warm-up — an off→on→off cycle does not reset it, so a generator
// stopped and resumed several times keeps accumulating (spec §8 Scenario F:
// two N/2 runs separated by an off period must total N).
func (g *Generator) Count() int { return g.count }

// StartTime returns the clock time Start was last called, only meaningful
// while IsOn.
func (g *Generator) StartTime() time.Duration { return g.startTime }

// Start transitions the generator from off to on: it records the start
// time and schedules the first arrival. The arrival count is left
// untouched, so resuming a previously-started generator continues its
// running total rather than restarting it. A no-op if already on.
func (g *Generator) Start() {
	if g.isOn {
		return
	}
	g.isOn = true
	g.startTime = g.ClockTime()
	g.scheduleNextArrival()
}

// End transitions the generator from on to off. Any arrival event already
// scheduled still fires, but is ignored by the arrival handler (the guard
// is the generator's own isOn flag; the pending event is not removed with
// Sandbox.Cancel).
func (g *Generator) End() {
	g.isOn = false
}

func (g *Generator) scheduleNextArrival() {
	delay := g.interArrivalTime(g.DefaultRng())
	_, _ = g.Schedule(g.onArrivalEvent, delay, "arrival")
}

func (g *Generator) onArrivalEvent() {
	if !g.isOn {
		return
	}
	g.count++
	g.scheduleNextArrival()
	if g.onArrive != nil {
		g.onArrive(g.count)
	}
}

func (g *Generator) warmedUpHandler() {
	g.count = 0
}
