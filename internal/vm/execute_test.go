package vm

import (
	"errors"
	"testing"

	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNestedLoopJumpResolution exercises testable property 6: a
// jump_loop_exit inside a nested loop jumps to the innermost enclosing
// mark_loop_exit target, and jump_loop_start returns to its start. Drives
// Machine.step directly rather than ExecuteCode, since a real nested-loop
// body would spin forever without a guard condition this test doesn't
// need to model.
func TestNestedLoopJumpResolution(t *testing.T) {
	m := New(dictionary.New())
	var loopStack []loopScope
	var catchStack []int

	// mark_loop_exit at pc=0 with delta=10: start=1, end=11 (outer).
	next, err := m.step(code.Instruction{Op: code.MarkLoopExit, Operand: 10}, 0, nil, &loopStack, &catchStack)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
	require.Len(t, loopStack, 1)
	assert.Equal(t, loopScope{start: 1, end: 11}, loopStack[0])

	// mark_loop_exit at pc=1 with delta=3: start=2, end=5 (inner, nested).
	next, err = m.step(code.Instruction{Op: code.MarkLoopExit, Operand: 3}, 1, nil, &loopStack, &catchStack)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
	require.Len(t, loopStack, 2)
	assert.Equal(t, loopScope{start: 2, end: 5}, loopStack[1])

	// jump_loop_exit at pc=2 must target the innermost (inner) loop's end,
	// not the outer loop's.
	next, err = m.step(code.Instruction{Op: code.JumpLoopExit}, 2, nil, &loopStack, &catchStack)
	require.NoError(t, err)
	assert.Equal(t, 5, next)

	// unmark_loop_exit at pc=5 pops the inner scope, leaving the outer as
	// innermost.
	next, err = m.step(code.Instruction{Op: code.UnmarkLoopExit}, 5, nil, &loopStack, &catchStack)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
	require.Len(t, loopStack, 1)

	// jump_loop_start now must return to the outer loop's start.
	next, err = m.step(code.Instruction{Op: code.JumpLoopStart}, 6, nil, &loopStack, &catchStack)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

// TestJumpLoopExitWithNoActiveLoopErrors confirms jump_loop_exit/
// jump_loop_start outside any loop is a reported error, not a panic.
func TestJumpLoopExitWithNoActiveLoopErrors(t *testing.T) {
	m := New(dictionary.New())
	var loopStack []loopScope
	var catchStack []int
	_, err := m.step(code.Instruction{Op: code.JumpLoopExit}, 0, nil, &loopStack, &catchStack)
	assert.Error(t, err)
}

var errBoom = errors.New("boom")

// TestCatchInterceptsErrorAndResumesAtTarget exercises testable property
// 7's first half: throw (here, any native handler returning an
// error) inside an active catch pushes the error message and continues
// execution at the catch target, rather than unwinding further.
func TestCatchInterceptsErrorAndResumesAtTarget(t *testing.T) {
	m := New(dictionary.New())

	failIdx := m.DefineWord(dictionary.Word{Name: "fail"}, Handler{
		Name:   "fail",
		Native: func(m *Machine) error { return errBoom },
	})
	markIdx := m.DefineWord(dictionary.Word{Name: "mark"}, Handler{
		Name:   "mark",
		Native: func(m *Machine) error { m.Push(value.String_("reached")); return nil },
	})

	// Layout mirrors control.go's try/catch/endcatch emission: MarkCatch's
	// target is the instruction right after catch's UnmarkCatch+Jump
	// pair (the catch-handler block); Jump's own target (resolved by
	// endcatch) is the instruction after that block.
	instrs := []code.Instruction{
		{Op: code.MarkCatch, Operand: 3},     // 0: target = 1+3 = 4
		{Op: code.Execute, Operand: failIdx}, // 1: protected body
		{Op: code.UnmarkCatch},               // 2
		{Op: code.Jump, Operand: 2},           // 3: skip to 3+2=5 on no error
		{Op: code.Execute, Operand: markIdx},  // 4: catch-handler body
	}

	err := m.ExecuteCode(instrs)
	require.NoError(t, err)

	snap := m.StackSnapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "boom", snap[0].String())
	assert.Equal(t, "reached", snap[1].String())
}

// TestUncaughtErrorPropagates exercises property 7's second half:
// rethrowing (or simply throwing) while no catch is active propagates to
// the caller of ExecuteCode.
func TestUncaughtErrorPropagates(t *testing.T) {
	m := New(dictionary.New())
	failIdx := m.DefineWord(dictionary.Word{Name: "fail"}, Handler{
		Name:   "fail",
		Native: func(m *Machine) error { return errBoom },
	})

	err := m.ExecuteCode([]code.Instruction{{Op: code.Execute, Operand: failIdx}})
	assert.ErrorIs(t, err, errBoom)
}
