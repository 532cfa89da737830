package builtin

import (
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/thread"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

// registryFor returns the Interpreter owning m's thread Registry, creating
// and installing one on first use. A freshly constructed root Interpreter
// has a nil Threads until some script actually spawns a sub-thread; every
// clone Spawn produces is handed that same Registry, so later nested
// thread.new calls from inside a sub-thread reuse it rather than starting
// a second, disconnected thread map.
func registryFor(m *vm.Machine) (*interp.Interpreter, *thread.Registry) {
	cur := interp.Of(m)
	if r := thread.Reg(cur); r != nil {
		return cur, r
	}
	r := thread.NewRegistry()
	cur.Threads = r
	return cur, r
}

func registerThread(it *interp.Interpreter) {
	def(it, "thread.new", func(m *vm.Machine) error {
		idx, err := popInt(m)
		if err != nil {
			return err
		}
		cur, r := registryFor(m)
		id, err := r.Spawn(cur, int(idx))
		if err != nil {
			return err
		}
		m.Push(value.ThreadID_(id))
		return nil
	})

	def(it, "thread.push-to", func(m *vm.Machine) error {
		id, err := popThreadID(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		_, r := registryFor(m)
		return r.PushTo(id, v)
	})

	def(it, "thread.pop", func(m *vm.Machine) error {
		cur, r := registryFor(m)
		v, ok := r.Pop(cur.SelfID)
		if !ok {
			return typeMismatch(m, "an open thread input queue")
		}
		m.Push(v)
		return nil
	})

	def(it, "thread.push", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		cur, r := registryFor(m)
		return r.Push(cur.SelfID, v)
	})

	def(it, "thread.pop-from", func(m *vm.Machine) error {
		id, err := popThreadID(m)
		if err != nil {
			return err
		}
		_, r := registryFor(m)
		v, ok := r.PopFrom(id)
		if !ok {
			return typeMismatch(m, "an open thread output queue")
		}
		m.Push(v)
		return nil
	})
}

func popThreadID(m *vm.Machine) (int64, error) {
	v, err := m.Pop()
	if err != nil {
		return 0, err
	}
	if id, ok := v.AsThreadID(); ok {
		return id, nil
	}
	if id, ok := v.AsInt(); ok {
		return id, nil
	}
	return 0, typeMismatch(m, "thread-id")
}
