package thread_test

import (
	"testing"
	"time"

	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/thread"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDoublingInterpreter registers a word that pops its own input queue,
// doubles the value, and pushes it to its own output queue -- the same
// shape as the thread-echo scenario's "word w: thread.pop 2 * thread.push"
// without pulling in internal/builtin (which itself imports internal/thread).
func newDoublingInterpreter(t *testing.T) (*interp.Interpreter, int) {
	t.Helper()
	it := interp.New()
	idx := it.Machine.DefineWord(dictionary.Word{Name: "double-echo"}, vm.Handler{
		Name: "double-echo",
		Native: func(m *vm.Machine) error {
			cur := interp.Of(m)
			r := thread.Reg(cur)
			v, ok := r.Pop(cur.SelfID)
			if !ok {
				return assertError{"input queue closed before a value arrived"}
			}
			n, _ := v.AsInt()
			return r.Push(cur.SelfID, value.Int_(n*2))
		},
	})
	return it, idx
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }

func TestRegistrySpawnPushPop(t *testing.T) {
	it, idx := newDoublingInterpreter(t)
	r := thread.NewRegistry()

	id, err := r.Spawn(it, idx)
	require.NoError(t, err)

	require.NoError(t, r.PushTo(id, value.Int_(5)))

	v, ok := r.PopFrom(id)
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, int64(10), n)

	require.NoError(t, r.Wait())
}

func TestRegistrySweepReapsFinishedDrainedThreads(t *testing.T) {
	it, idx := newDoublingInterpreter(t)
	r := thread.NewRegistry()

	id, err := r.Spawn(it, idx)
	require.NoError(t, err)
	require.NoError(t, r.PushTo(id, value.Int_(1)))

	_, ok := r.PopFrom(id)
	require.True(t, ok)

	require.NoError(t, r.Wait())
	r.Sweep()

	// Thread has finished, its output queue drained via PopFrom, and
	// Wait/Sweep have run: a second PushTo to the now-reaped id fails.
	err = r.PushTo(id, value.Int_(1))
	assert.Error(t, err)
}

func TestRegistryPopFromBlocksUntilSpawnedThreadResponds(t *testing.T) {
	it, idx := newDoublingInterpreter(t)
	r := thread.NewRegistry()

	id, err := r.Spawn(it, idx)
	require.NoError(t, err)

	done := make(chan int64, 1)
	go func() {
		v, ok := r.PopFrom(id)
		require.True(t, ok)
		n, _ := v.AsInt()
		done <- n
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.PushTo(id, value.Int_(21)))

	select {
	case n := <-done:
		assert.Equal(t, int64(42), n)
	case <-time.After(time.Second):
		t.Fatal("PopFrom did not unblock after the spawned thread responded")
	}
}
