package vm

import (
	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/value"
)

// step executes the single instruction at pc and returns the next pc to
// run (absolute index within instrs), or an error.
func (m *Machine) step(in code.Instruction, pc int, instrs []code.Instruction, loopStack *[]loopScope, catchStack *[]int) (int, error) {
	switch in.Op {
	case code.DefVariable:
		name, _ := in.NameOperand()
		idx := m.Variables.Append(value.None_())
		m.defineIndexPusher(name, int64(idx))

	case code.DefConstant:
		name, _ := in.NameOperand()
		v, err := m.Pop()
		if err != nil {
			return 0, err
		}
		m.defineConstant(name, v)

	case code.ReadVariable:
		idxv, err := m.Pop()
		if err != nil {
			return 0, err
		}
		idx, ok := idxv.AsInt()
		if !ok {
			return 0, TypeMismatchError{m.curLoc.String(), "numeric variable index"}
		}
		v, ok := m.Variables.At(int(idx))
		if !ok {
			return 0, m.errf("invalid variable index %d", idx)
		}
		m.Push(v)

	case code.WriteVariable:
		idxv, err := m.Pop()
		if err != nil {
			return 0, err
		}
		idx, ok := idxv.AsInt()
		if !ok {
			return 0, TypeMismatchError{m.curLoc.String(), "numeric variable index"}
		}
		v, err := m.Pop()
		if err != nil {
			return 0, err
		}
		if !m.Variables.Set(int(idx), v) {
			return 0, m.errf("invalid variable index %d", idx)
		}

	case code.Execute:
		if name, ok := in.NameOperand(); ok {
			if err := m.CallWord(name); err != nil {
				return 0, err
			}
		} else if idx, ok := in.IndexOperand(); ok {
			if err := m.callHandler(idx); err != nil {
				return 0, err
			}
		} else {
			return 0, m.errf("malformed execute instruction")
		}

	case code.WordIndex:
		name, _ := in.NameOperand()
		w, ok := m.Dict.Find(name)
		if !ok {
			return 0, UnknownWordError{m.curLoc.String(), name}
		}
		m.Push(value.Int_(int64(w.HandlerIndex)))

	case code.WordExists:
		name, _ := in.NameOperand()
		m.Push(value.Bool_(m.Dict.Exists(name)))

	case code.PushConstantValue:
		v, _ := in.ValueOperand()
		m.Push(v.Copy())

	case code.MarkLoopExit:
		delta, _ := in.Operand.(int)
		next := pc + 1
		*loopStack = append(*loopStack, loopScope{start: next, end: next + delta})

	case code.UnmarkLoopExit:
		if n := len(*loopStack); n > 0 {
			*loopStack = (*loopStack)[:n-1]
		} else {
			return 0, NoLoopError{m.curLoc.String()}
		}

	case code.MarkCatch:
		delta, _ := in.Operand.(int)
		next := pc + 1
		*catchStack = append(*catchStack, next+delta)

	case code.UnmarkCatch:
		if n := len(*catchStack); n > 0 {
			*catchStack = (*catchStack)[:n-1]
		} else {
			return 0, NoCatchError{m.curLoc.String()}
		}

	case code.MarkContext:
		m.markContext()

	case code.ReleaseContext:
		m.releaseContext()

	case code.Jump:
		delta, _ := in.Operand.(int)
		return pc + delta, nil

	case code.JumpIfZero:
		delta, _ := in.Operand.(int)
		v, err := m.Pop()
		if err != nil {
			return 0, err
		}
		if !v.Truthy() {
			return pc + delta, nil
		}

	case code.JumpIfNotZero:
		delta, _ := in.Operand.(int)
		v, err := m.Pop()
		if err != nil {
			return 0, err
		}
		if v.Truthy() {
			return pc + delta, nil
		}

	case code.JumpLoopStart:
		if n := len(*loopStack); n > 0 {
			return (*loopStack)[n-1].start, nil
		}
		return 0, NoLoopError{m.curLoc.String()}

	case code.JumpLoopExit:
		if n := len(*loopStack); n > 0 {
			return (*loopStack)[n-1].end, nil
		}
		return 0, NoLoopError{m.curLoc.String()}

	case code.JumpTarget:
		// landing pad, no-op

	default:
		return 0, m.errf("invalid opcode %v", in.Op)
	}

	return pc + 1, nil
}

// defineIndexPusher registers a handler that pushes a fixed variable index,
// the runtime effect of def_variable.
func (m *Machine) defineIndexPusher(name string, idx int64) {
	handlerIdx := m.Handlers.Append(Handler{
		Name: name,
		Native: func(m *Machine) error {
			m.Push(value.Int_(idx))
			return nil
		},
	})
	m.Dict.Insert(name, dictionaryWordFor(name, handlerIdx))
}

// defineConstant registers a handler that pushes a fixed value, the
// runtime effect of def_constant.
func (m *Machine) defineConstant(name string, v value.Value) {
	handlerIdx := m.Handlers.Append(Handler{
		Name: name,
		Native: func(m *Machine) error {
			m.Push(v.Copy())
			return nil
		},
	})
	m.Dict.Insert(name, dictionaryWordFor(name, handlerIdx))
}
