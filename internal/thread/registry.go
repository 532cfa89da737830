package thread

import (
	"fmt"
	"sync"

	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/panicerr"
	"github.com/cstrainge/sorth/internal/value"
	"golang.org/x/sync/errgroup"
)

// Registry is the root interpreter's thread map: child interpreters share a
// single thread map, owned by the root ancestor, keyed by thread-id and
// holding {word index, deleted-flag, input queue, output queue, terminal
// error}.
//
// Grounded on jcorbin-gothird's core.go/internals.go run-loop discipline
// of one small owning type per concern; the errgroup.Group supervises the
// spawned goroutines without SetLimit and without a shared context, since
// one sub-thread's exception must not tear down its siblings -- only
// Wait's aggregate error reflects failures.
type Registry struct {
	mu     sync.Mutex
	nextID int64
	entries map[int64]*Entry

	g errgroup.Group
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*Entry)}
}

// Reg recovers the Registry an Interpreter's Threads field was given,
// mirroring internal/compiler.Ctx's pattern for internal/builtin to reach
// a concrete type through an opaque interface{} field.
func Reg(it *interp.Interpreter) *Registry {
	r, _ := it.Threads.(*Registry)
	return r
}

// Spawn clones it, registers a fresh Entry for the clone, and starts the
// clone executing wordIndex on its own goroutine. It returns the new
// thread-id immediately; the goroutine runs independently, each sub-thread
// owning its own interpreter clone.
func (r *Registry) Spawn(it *interp.Interpreter, wordIndex int) (int64, error) {
	r.mu.Lock()
	id := r.nextID + 1
	r.nextID = id
	entry := &Entry{ID: id, WordIndex: wordIndex, In: NewQueue(), Out: NewQueue()}
	r.entries[id] = entry
	r.mu.Unlock()

	clone := it.Clone()
	clone.Threads = r
	clone.SelfID = id

	r.g.Go(func() error {
		err := panicerr.Recover(fmt.Sprintf("thread %d", id), func() error {
			return clone.ExecuteWordIndexed(wordIndex)
		})

		r.mu.Lock()
		entry.Err = err
		entry.Deleted = true
		empty := entry.Out.Len() == 0
		if empty {
			delete(r.entries, id)
		}
		r.mu.Unlock()

		entry.In.Close()
		entry.Out.Close()
		return err
	})

	return id, nil
}

func (r *Registry) find(id int64) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// PushTo enqueues v onto thread id's input queue, the backing call for
// `thread.push-to`.
func (r *Registry) PushTo(id int64, v value.Value) error {
	e, ok := r.find(id)
	if !ok {
		return fmt.Errorf("thread.push-to: no such thread %d", id)
	}
	e.In.Push(v)
	return nil
}

// PopFrom dequeues (blocking) from thread id's output queue, the backing
// call for `thread.pop-from`. If the dequeue empties a finished thread's
// output queue, its entry is reaped immediately rather than waiting for the
// next Sweep.
func (r *Registry) PopFrom(id int64) (value.Value, bool) {
	e, ok := r.find(id)
	if !ok {
		return value.Value{}, false
	}
	v, ok := e.Out.Pop()
	r.mu.Lock()
	if e.Deleted && e.Out.Len() == 0 {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	return v, ok
}

// Pop dequeues (blocking) from selfID's own input queue (`thread.pop`).
func (r *Registry) Pop(selfID int64) (value.Value, bool) {
	e, ok := r.find(selfID)
	if !ok {
		return value.Value{}, false
	}
	return e.In.Pop()
}

// Push enqueues v onto selfID's own output queue (`thread.push`).
func (r *Registry) Push(selfID int64, v value.Value) error {
	e, ok := r.find(selfID)
	if !ok {
		return fmt.Errorf("thread.push: thread %d has no registry entry", selfID)
	}
	e.Out.Push(v)
	return nil
}

// Sweep removes every entry that has finished (Deleted) and whose output
// queue has since drained, the periodic half of reaping (the immediate
// half happens inline in PopFrom when a drain empties a deleted thread's
// output queue). Under `sorth serve` this runs on a gocron schedule; under
// `sorth run` it reduces to a single synchronous call after the script's
// own threads are known to have finished.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.Deleted && e.Out.Len() == 0 {
			delete(r.entries, id)
		}
	}
}

// Wait blocks until every spawned thread has returned, aggregating the
// first non-nil error (used by `sorth run` at process exit so in-flight
// threads aren't abandoned).
func (r *Registry) Wait() error {
	return r.g.Wait()
}
