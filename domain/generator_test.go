package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func constantInterArrival(d time.Duration) func(*rand.Rand) time.Duration {
	return func(*rand.Rand) time.Duration { return d }
}

func TestGenerator_StartSchedulesFirstArrival(t *testing.T) {
	// GIVEN a generator with a 1h inter-arrival time, off by default
	g := NewGenerator("gen", 1, constantInterArrival(time.Hour), nil)
	require.False(t, g.IsOn())

	// WHEN started
	g.Start()

	// THEN it is on and has a pending arrival event
	require.True(t, g.IsOn())
	require.NotNil(t, g.GetHeadEvent())
}

func TestGenerator_ArrivalsIncrementCountAndFireCallback(t *testing.T) {
	// GIVEN a started generator
	var seen []int
	g := NewGenerator("gen", 1, constantInterArrival(time.Hour), func(count int) {
		seen = append(seen, count)
	})
	g.Start()

	// WHEN run for 3 arrivals worth of time
	_, _ = g.RunEvents(3)

	require.Equal(t, 3, g.Count())
	require.Equal(t, []int{1, 2, 3}, seen)
}

func TestGenerator_Scenario_OnOffCycle(t *testing.T) {
	// Scenario F — start(), run N/2 events, end(), run(3 days) (no events
	// accumulate), start() again, run N/2 events. Expect count == N.
	const n = 10
	g := NewGenerator("gen", 1, constantInterArrival(time.Minute), nil)

	g.Start()
	_, _ = g.RunEvents(n / 2)
	require.Equal(t, n/2, g.Count())

	g.End()
	require.False(t, g.IsOn())
	_, _ = g.RunDuration(3 * 24 * time.Hour)
	require.Equal(t, n/2, g.Count(), "no arrivals should accumulate while off")

	g.Start()
	_, _ = g.RunEvents(n / 2)

	require.Equal(t, n, g.Count())
}

func TestGenerator_WarmUp_ResetsCount(t *testing.T) {
	g := NewGenerator("gen", 1, constantInterArrival(time.Hour), nil)
	g.Start()
	_, _ = g.RunEvents(5)
	require.Equal(t, 5, g.Count())

	err := g.WarmUp(time.Hour)

	require.NoError(t, err)
	require.Equal(t, 0, g.Count())
}

func TestGenerator_StartWhileOn_IsNoOp(t *testing.T) {
	g := NewGenerator("gen", 1, constantInterArrival(time.Hour), nil)
	g.Start()
	_, _ = g.RunEvents(2)
	countBeforeRestart := g.Count()

	g.Start() // already on

	require.Equal(t, countBeforeRestart, g.Count())
}
