package desim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventLess_OrdersByTimestampThenIndex(t *testing.T) {
	// GIVEN two events at different timestamps
	a := &Event{timestamp: 1 * time.Second, index: 5}
	b := &Event{timestamp: 2 * time.Second, index: 0}

	// THEN the earlier timestamp sorts first regardless of index
	require.True(t, eventLess(a, b))
	require.False(t, eventLess(b, a))
}

func TestEventLess_TieBreaksOnIndex(t *testing.T) {
	// GIVEN two events scheduled at the same timestamp, e1 before e2
	e1 := &Event{timestamp: 5 * time.Second, index: 1}
	e2 := &Event{timestamp: 5 * time.Second, index: 2}

	// THEN the one with the lower (earlier-assigned) index sorts first
	require.True(t, eventLess(e1, e2))
	require.False(t, eventLess(e2, e1))
}

func TestEvent_ExecuteNilAction_IsNoOp(t *testing.T) {
	// GIVEN an event with no action
	ev := &Event{}

	// WHEN Execute is called
	// THEN it does not panic
	require.NotPanics(t, func() { ev.Execute() })
}

func TestEventIndexCounter_AllocateIsMonotonic(t *testing.T) {
	// GIVEN a fresh counter
	c := &eventIndexCounter{}

	// WHEN allocating several indices in a row
	first := c.allocate()
	second := c.allocate()
	third := c.allocate()

	// THEN each is strictly greater than the last, starting at 0
	require.Equal(t, int64(0), first)
	require.Equal(t, int64(1), second)
	require.Equal(t, int64(2), third)
}

func TestEventIndexCounter_ResetRewindsToZero(t *testing.T) {
	// GIVEN a counter that has allocated a few indices
	c := &eventIndexCounter{}
	c.allocate()
	c.allocate()

	// WHEN reset
	c.reset()

	// THEN the next allocation starts again at 0
	require.Equal(t, int64(0), c.allocate())
}
