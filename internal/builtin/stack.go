package builtin

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

func registerStack(it *interp.Interpreter) {
	def(it, "dup", func(m *vm.Machine) error {
		v, err := m.Peek()
		if err != nil {
			return err
		}
		m.Push(v)
		return nil
	})

	def(it, "drop", func(m *vm.Machine) error {
		_, err := m.Pop()
		return err
	})

	def(it, "swap", func(m *vm.Machine) error {
		a, err := m.Pop()
		if err != nil {
			return err
		}
		b, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(a)
		m.Push(b)
		return nil
	})

	def(it, "over", func(m *vm.Machine) error {
		snap := m.StackSnapshot()
		if len(snap) < 2 {
			return typeMismatch(m, "at least two values on the stack")
		}
		m.Push(snap[len(snap)-2])
		return nil
	})

	def(it, "rot", func(m *vm.Machine) error {
		v, err := m.Pick(2)
		if err != nil {
			return err
		}
		m.Push(v)
		return nil
	})

	def(it, "2dup", func(m *vm.Machine) error {
		snap := m.StackSnapshot()
		if len(snap) < 2 {
			return typeMismatch(m, "at least two values on the stack")
		}
		m.Push(snap[len(snap)-2])
		m.Push(snap[len(snap)-1])
		return nil
	})

	def(it, "pick", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		v, err := m.Pick(int(n))
		if err != nil {
			return err
		}
		m.Push(v)
		return nil
	})

	def(it, "push-to", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		return m.PushTo(int(n))
	})

	def(it, "depth", func(m *vm.Machine) error {
		m.Push(value.Int_(int64(m.Depth())))
		return nil
	})

	def(it, "clear-stack", func(m *vm.Machine) error {
		m.ClearStack()
		return nil
	})

	def(it, ".s", func(m *vm.Machine) error {
		for _, v := range m.StackSnapshot() {
			fmt.Fprintf(stdout(m), "%v ", v)
		}
		fmt.Fprintln(stdout(m))
		return nil
	})
}

// popInt pops a value expected to be an Int, returning a typed error
// otherwise.
func popInt(m *vm.Machine) (int64, error) {
	v, err := m.Pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, typeMismatch(m, "integer")
	}
	return n, nil
}
