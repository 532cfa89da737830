package thread

import (
	"testing"
	"time"

	"github.com/cstrainge/sorth/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueueOrdering exercises testable property 8: for producer
// P pushing v1, v2, ... to a single consumer C's input queue, C's pop
// sequence equals v1, v2, ... .
func TestQueueOrdering(t *testing.T) {
	q := NewQueue()
	want := []value.Value{value.Int_(1), value.Int_(2), value.Int_(3)}
	for _, v := range want {
		q.Push(v)
	}

	for _, w := range want {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, w, got)
	}
}

// TestQueuePopBlocksUntilPush confirms Pop blocks a consumer until a
// producer running on another goroutine pushes, the mechanism S6's
// thread.pop/thread.push rely on.
func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue()
	done := make(chan value.Value, 1)
	go func() {
		v, ok := q.Pop()
		require.True(t, ok)
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(value.Int_(7))

	select {
	case v := <-done:
		assert.Equal(t, int64(7), mustInt(t, v))
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push")
	}
}

// TestQueueCloseDrainsThenSignalsEmpty matches Queue.Close's documented
// behavior: closing a non-empty queue still drains it before reporting
// ok=false.
func TestQueueCloseDrainsThenSignalsEmpty(t *testing.T) {
	q := NewQueue()
	q.Push(value.Int_(1))
	q.Push(value.Int_(2))
	q.Close()

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(1), mustInt(t, v))

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(2), mustInt(t, v))

	_, ok = q.Pop()
	assert.False(t, ok)
}

func mustInt(t *testing.T, v value.Value) int64 {
	t.Helper()
	n, ok := v.AsInt()
	require.True(t, ok)
	return n
}
