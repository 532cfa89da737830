package builtin

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

func registerIO(it *interp.Interpreter) {
	def(it, ".", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		fmt.Fprint(stdout(m), v.String())
		return m.Flush()
	})

	def(it, ".hex", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(m), "%x", n)
		return m.Flush()
	})

	def(it, "cr", func(m *vm.Machine) error {
		fmt.Fprintln(stdout(m))
		return m.Flush()
	})

	def(it, "space", func(m *vm.Machine) error {
		fmt.Fprint(stdout(m), " ")
		return m.Flush()
	})

	def(it, "emit", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(m), "%c", rune(n))
		return m.Flush()
	})

	def(it, "to_string", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(value.String_(v.String()))
		return nil
	})

	def(it, "words", func(m *vm.Machine) error {
		m.Dict.Each(func(name string, w dictionary.Word) {
			if w.Visibility == dictionary.HiddenWord {
				return
			}
			tag := ""
			if w.IsImmediate() {
				tag = " (immediate)"
			}
			fmt.Fprintf(stdout(m), "%s%s\n", name, tag)
		})
		return m.Flush()
	})

	def(it, "word-index", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		name, ok := v.AsString()
		if !ok {
			return typeMismatch(m, "string")
		}
		w, found := m.Dict.Find(name)
		if !found {
			return vm.UnknownWordError{Location: m.CurrentLocation().String(), Name: name}
		}
		m.Push(value.Int_(int64(w.HandlerIndex)))
		return nil
	})

	def(it, "word-exists?", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		name, ok := v.AsString()
		if !ok {
			return typeMismatch(m, "string")
		}
		m.Push(value.Bool_(m.Dict.Exists(name)))
		return nil
	})

	def(it, "quit", func(m *vm.Machine) error {
		if v, err := m.Peek(); err == nil {
			if n, ok := v.AsInt(); ok {
				m.Pop()
				code := n
				m.Halt(&code)
				return nil
			}
		}
		m.Halt(nil)
		return nil
	})

	def(it, "halt", func(m *vm.Machine) error {
		m.Halt(nil)
		return nil
	})
}
