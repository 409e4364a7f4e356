package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Push(&Task{ID: "a", Position: 0}))
	require.NoError(t, q.Push(&Task{ID: "b", Position: 1}))
	assert.Equal(t, 2, q.Size())

	first, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)

	second, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", second.ID)
}

func TestQueueDrainsAfterClose(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Push(&Task{ID: "a"}))
	require.NoError(t, q.Close())

	task, err := q.Pop(context.Background())
	require.NoError(t, err, "tasks pushed before close stay poppable")
	assert.Equal(t, "a", task.ID)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueuePushAfterClose(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Push(&Task{ID: "a"}), ErrQueueClosed)
}

func TestQueuePopCancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueuePopRepeatedCancellation(t *testing.T) {
	q := NewInMemoryQueue()

	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		_, err := q.Pop(ctx)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}

	// The queue must stay usable after cancelled waits.
	require.NoError(t, q.Push(&Task{ID: "after"}))
	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "after", task.ID)
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(&Task{ID: "late"})
	}()

	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", task.ID)
}
