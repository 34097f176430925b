package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func constantServiceTime(d time.Duration) func(*rand.Rand, int) time.Duration {
	return func(*rand.Rand, int) time.Duration { return d }
}

func TestServer_RqstStart_BeginsServiceImmediatelyWhenUnderCapacity(t *testing.T) {
	var started []int
	s := NewServer[int]("s", 1, 1, constantServiceTime(time.Hour), func(load int) {
		started = append(started, load)
	}, nil)

	s.RqstStart(1)

	require.Equal(t, []int{1}, started)
	require.Equal(t, float64(1), s.ServingHours().LastCount())
}

func TestServer_RqstStart_QueuesWhenAtCapacity(t *testing.T) {
	var started []int
	s := NewServer[int]("s", 1, 1, constantServiceTime(time.Hour), func(load int) {
		started = append(started, load)
	}, nil)

	s.RqstStart(1)
	s.RqstStart(2)

	require.Equal(t, []int{1}, started, "second load should not start until capacity frees")
}

func TestServer_CompletionMovesToPendingToDepart_CapacityStaysHeld(t *testing.T) {
	// GIVEN a capacity-1 server serving one load, and a second queued behind it
	var readyCount int
	s := NewServer[int]("s", 1, 1, constantServiceTime(time.Hour),
		nil,
		func(load int) { readyCount++ },
	)
	s.RqstStart(1)
	s.RqstStart(2)

	// WHEN the service completes
	_, _ = s.RunDuration(time.Hour)

	// THEN load 1 moved to pending-to-depart, but capacity is still held —
	// load 2 has NOT started yet
	require.Equal(t, 1, readyCount)
	require.Equal(t, float64(0), s.ServingHours().LastCount())
	require.Equal(t, float64(1), s.PendingToDepartHours().LastCount())
}

func TestServer_Depart_FreesCapacityAndStartsNext(t *testing.T) {
	// GIVEN a completed load sitting in pending-to-depart, and a second load queued
	var started []int
	s := NewServer[int]("s", 1, 1, constantServiceTime(time.Hour), func(load int) {
		started = append(started, load)
	}, nil)
	s.RqstStart(1)
	s.RqstStart(2)
	_, _ = s.RunDuration(time.Hour) // load 1 completes into pending-to-depart

	// WHEN load 1 departs
	s.Depart(1)

	// THEN load 2 now starts
	require.Equal(t, []int{1, 2}, started)
	require.Equal(t, float64(0), s.PendingToDepartHours().LastCount())
}

func TestServer_Depart_UnknownLoad_IsNoOp(t *testing.T) {
	s := NewServer[int]("s", 1, 0, constantServiceTime(time.Hour), nil, nil)

	require.NotPanics(t, func() { s.Depart(42) })
}

func TestServer_UnboundedCapacity_StartsEverythingImmediately(t *testing.T) {
	var started []int
	s := NewServer[int]("s", 1, 0, constantServiceTime(time.Hour), func(load int) {
		started = append(started, load)
	}, nil)

	for i := 0; i < 10; i++ {
		s.RqstStart(i)
	}

	require.Len(t, started, 10)
}
