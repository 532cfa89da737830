package vm

import (
	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/value"
)

// ExecuteCode runs one bytecode block to completion. Runtime errors unwind
// out unless an active mark_catch frame intercepts them, in which case the
// error's message is pushed as a string and execution resumes at the catch
// target.
func (m *Machine) ExecuteCode(instrs []code.Instruction) error {
	pc := 0
	var loopStack []loopScope
	var catchStack []int

	for pc >= 0 && pc < len(instrs) {
		if m.halted {
			return ErrHalted
		}

		in := instrs[pc]
		m.curLoc = in.Location
		m.logf("@", "%d %v s:%v", pc, in, m.stack)

		next, err := m.step(in, pc, instrs, &loopStack, &catchStack)
		if err != nil {
			if n := len(catchStack); n > 0 {
				target := catchStack[n-1]
				catchStack = catchStack[:n-1]
				m.Push(value.String_(err.Error()))
				pc = target
				continue
			}
			return err
		}
		pc = next
	}
	return nil
}

// callHandler dispatches to the handler table entry at idx, pushing and
// popping a diagnostic call-stack entry across the call.
func (m *Machine) callHandler(idx int) error {
	h, ok := m.Handlers.At(idx)
	if !ok {
		return BadHandlerIndexError{m.curLoc.String(), idx}
	}

	m.callStack = append(m.callStack, CallFrame{Location: m.curLoc, Name: h.Name})
	defer func() { m.callStack = m.callStack[:len(m.callStack)-1] }()

	if h.Native != nil {
		return h.Native(m)
	}

	if h.ContextManaged {
		m.markContext()
	}
	err := m.ExecuteCode(h.Code)
	if h.ContextManaged {
		m.releaseContext()
	}
	return err
}

func (m *Machine) markContext() {
	m.Dict.MarkContext()
	m.Handlers.Mark()
	m.Variables.Mark()
	m.Definitions.Mark()
}

func (m *Machine) releaseContext() {
	m.Handlers.Release()
	m.Variables.Release()
	m.Definitions.Release()
	m.Dict.ReleaseContext()
}

// CallWord executes the word bound to name by looking it up in the
// dictionary and calling its handler, the entry point used by the
// Interpreter facade's execute_word.
func (m *Machine) CallWord(name string) error {
	w, ok := m.Dict.Find(name)
	if !ok {
		return UnknownWordError{m.curLoc.String(), name}
	}
	return m.callHandler(w.HandlerIndex)
}

// CallHandlerIndex executes the handler table entry directly, bypassing
// dictionary lookup (used by thread workers, which are handed a handler
// index rather than a name so renaming/redefinition after spawn can't
// change which code runs).
func (m *Machine) CallHandlerIndex(idx int) error {
	return m.callHandler(idx)
}
