package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_RqstEnqueue_AdmitsWhenUnderCapacity(t *testing.T) {
	// GIVEN a queue with capacity 2
	var enqueued []int
	q := NewQueue[int]("q", 1, 2, func(load int) { enqueued = append(enqueued, load) })

	// WHEN two loads are requested
	q.RqstEnqueue(1)
	q.RqstEnqueue(2)

	// THEN both are admitted into the queueing list
	require.Equal(t, []int{1, 2}, q.Queueing())
	require.Equal(t, []int{1, 2}, enqueued)
	require.Empty(t, q.Pending())
}

func TestQueue_RqstEnqueue_BlocksAtCapacity(t *testing.T) {
	// GIVEN a queue with capacity 1, already holding one load
	q := NewQueue[int]("q", 1, 1, nil)
	q.RqstEnqueue(1)

	// WHEN a second load arrives
	q.RqstEnqueue(2)

	// THEN it stays pending, not queueing
	require.Equal(t, []int{1}, q.Queueing())
	require.Equal(t, []int{2}, q.Pending())
}

func TestQueue_Dequeue_RetriggersAdmission(t *testing.T) {
	// GIVEN a full queue (capacity 1) with a backlog of one
	q := NewQueue[int]("q", 1, 1, nil)
	q.RqstEnqueue(1)
	q.RqstEnqueue(2)

	// WHEN the queueing load is dequeued
	q.Dequeue(1)

	// THEN the pending load is admitted
	require.Equal(t, []int{2}, q.Queueing())
	require.Empty(t, q.Pending())
}

func TestQueue_Dequeue_UnknownLoad_IsNoOp(t *testing.T) {
	q := NewQueue[int]("q", 1, 0, nil)
	q.RqstEnqueue(1)

	require.NotPanics(t, func() { q.Dequeue(999) })
	require.Equal(t, []int{1}, q.Queueing())
}

func TestQueue_UnboundedCapacity_AdmitsEverything(t *testing.T) {
	q := NewQueue[int]("q", 1, 0, nil)

	for i := 0; i < 100; i++ {
		q.RqstEnqueue(i)
	}

	require.Len(t, q.Queueing(), 100)
	require.Empty(t, q.Pending())
}

func TestQueue_QueueingHours_TracksOccupancy(t *testing.T) {
	// GIVEN a queue holding one load
	q := NewQueue[int]("q", 1, 0, nil)
	q.RqstEnqueue(1)

	_, _ = q.RunDuration(0) // force time to register at clock 0

	require.Equal(t, float64(1), q.QueueingHours().LastCount())
}
