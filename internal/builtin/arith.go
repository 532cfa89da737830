package builtin

import (
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

// binNumeric installs a word applying intOp/floatOp to the top two numeric
// stack values, widening to float if either operand is a float.
func binNumeric(it *interp.Interpreter, name string,
	intOp func(a, b int64) int64, floatOp func(a, b float64) float64) {
	def(it, name, func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if !a.IsNumeric() || !b.IsNumeric() {
			return typeMismatch(m, "numeric")
		}
		ai, aok := a.AsInt()
		bi, bok := b.AsInt()
		if aok && bok {
			m.Push(value.Int_(intOp(ai, bi)))
			return nil
		}
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		m.Push(value.Float_(floatOp(af, bf)))
		return nil
	})
}

func binCompare(it *interp.Interpreter, name string, cmp func(c int) bool) {
	def(it, name, func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		m.Push(value.Bool_(cmp(a.Compare(b))))
		return nil
	})
}

func registerArith(it *interp.Interpreter) {
	binNumeric(it, "+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	binNumeric(it, "-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	binNumeric(it, "*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })

	def(it, "/", func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if !a.IsNumeric() || !b.IsNumeric() {
			return typeMismatch(m, "numeric")
		}
		ai, aok := a.AsInt()
		bi, bok := b.AsInt()
		if aok && bok {
			if bi == 0 {
				return vm.TypeMismatchError{Location: m.CurrentLocation().String(), Expected: "non-zero divisor"}
			}
			m.Push(value.Int_(ai / bi))
			return nil
		}
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		m.Push(value.Float_(af / bf))
		return nil
	})

	def(it, "mod", func(m *vm.Machine) error {
		b, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popInt(m)
		if err != nil {
			return err
		}
		if b == 0 {
			return vm.TypeMismatchError{Location: m.CurrentLocation().String(), Expected: "non-zero divisor"}
		}
		m.Push(value.Int_(a % b))
		return nil
	})

	def(it, "negate", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if i, ok := v.AsInt(); ok {
			m.Push(value.Int_(-i))
			return nil
		}
		if f, ok := v.AsFloat(); ok {
			m.Push(value.Float_(-f))
			return nil
		}
		return typeMismatch(m, "numeric")
	})

	binCompare(it, "=", func(c int) bool { return c == 0 })
	binCompare(it, "<>", func(c int) bool { return c != 0 })
	binCompare(it, "<", func(c int) bool { return c < 0 })
	binCompare(it, ">", func(c int) bool { return c > 0 })
	binCompare(it, "<=", func(c int) bool { return c <= 0 })
	binCompare(it, ">=", func(c int) bool { return c >= 0 })

	def(it, "and", func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if ai, aok := a.AsInt(); aok {
			bi, _ := b.AsInt()
			m.Push(value.Int_(ai & bi))
			return nil
		}
		m.Push(value.Bool_(a.Truthy() && b.Truthy()))
		return nil
	})

	def(it, "or", func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if ai, aok := a.AsInt(); aok {
			bi, _ := b.AsInt()
			m.Push(value.Int_(ai | bi))
			return nil
		}
		m.Push(value.Bool_(a.Truthy() || b.Truthy()))
		return nil
	})

	def(it, "xor", func(m *vm.Machine) error {
		b, err := m.Pop()
		if err != nil {
			return err
		}
		a, err := m.Pop()
		if err != nil {
			return err
		}
		if ai, aok := a.AsInt(); aok {
			bi, _ := b.AsInt()
			m.Push(value.Int_(ai ^ bi))
			return nil
		}
		m.Push(value.Bool_(a.Truthy() != b.Truthy()))
		return nil
	})

	def(it, "not", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if i, ok := v.AsInt(); ok {
			m.Push(value.Int_(^i))
			return nil
		}
		m.Push(value.Bool_(!v.Truthy()))
		return nil
	})

	def(it, "true", func(m *vm.Machine) error { m.Push(value.Bool_(true)); return nil })
	def(it, "false", func(m *vm.Machine) error { m.Push(value.Bool_(false)); return nil })
}
