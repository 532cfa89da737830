// Package vm implements the bytecode virtual machine: a value stack, a
// diagnostic call stack, jump/loop/catch markers, and the 20-opcode
// interpreter loop, plus the handler table and variable/definition
// contextual lists that a Machine's scoped execution context is built from.
//
// Grounded on jcorbin-gothird/internals.go's step/run loop (opcode
// dispatch via a small per-instruction switch, "current location" tracking
// for diagnostics) and core.go's logging type, adapted from an int-paged
// memory machine to a tagged value.Value stack machine.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/cstrainge/sorth/internal/containers"
	"github.com/cstrainge/sorth/internal/contextual"
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/flushio"
	"github.com/cstrainge/sorth/internal/source"
	"github.com/cstrainge/sorth/internal/value"
)

// CallFrame is one entry of the VM's diagnostic call stack: formatted as
// "<location> -- <word-name>" per frame.
type CallFrame struct {
	Location source.Location
	Name     string
}

func (f CallFrame) String() string { return fmt.Sprintf("%v -- %v", f.Location, f.Name) }

type loopScope struct{ start, end int }

// Machine is the bytecode VM: the data stack, the dictionary, the handler
// table, the variable and data-definition contextual lists, and the
// cooperative halt flag.
type Machine struct {
	Dict        *dictionary.Dictionary
	Handlers    contextual.List[Handler]
	Variables   contextual.List[value.Value]
	Definitions contextual.List[*containers.Definition]

	stack     []value.Value
	callStack []CallFrame

	curLoc source.Location
	halted bool
	haltErr error
	exitCode int

	Logf func(mark, mess string, args ...interface{})

	// compileCtx is an opaque *compiler.CompileContext, set while a source
	// is being compiled. vm cannot import compiler (compiler imports vm),
	// so built-in immediate words that need compiler access (builtin
	// imports both) recover the concrete type via CompileContext().
	compileCtx interface{}

	// owner is an opaque *interp.Interpreter back-reference, set once when
	// the Interpreter that owns this Machine is constructed or cloned. A
	// handler only ever receives the *Machine it runs on, but sub-thread
	// built-ins (thread.new/thread.push/thread.pop/...) need the owning
	// Interpreter itself -- its search paths, its Threads registry, its
	// SelfID, and (for thread.new) the ability to Clone it. vm cannot
	// import interp (interp imports vm), so this mirrors compileCtx's
	// opaque-slot pattern.
	owner interface{}

	// Out is where "." / emit / cr / .s write, wrapped in a
	// flushio.WriteFlusher following gothird's flush-on-demand idiom
	// (internals.go's vm.out.Flush()).
	Out flushio.WriteFlusher
}

// SetOutput replaces the Machine's output stream.
func (m *Machine) SetOutput(w io.Writer) { m.Out = flushio.NewWriteFlusher(w) }

// Output returns the Machine's current output stream.
func (m *Machine) Output() flushio.WriteFlusher { return m.Out }

// Flush flushes the output stream, if any is buffered.
func (m *Machine) Flush() error {
	if m.Out != nil {
		return m.Out.Flush()
	}
	return nil
}

// SetCompileContext records the active compiler.CompileContext for the
// duration of a compile, so immediate-word built-ins can reach it.
func (m *Machine) SetCompileContext(ctx interface{}) { m.compileCtx = ctx }

// CompileContext returns the active compile context (nil outside of
// compilation), as an opaque interface{} that callers type-assert back to
// *compiler.CompileContext.
func (m *Machine) CompileContext() interface{} { return m.compileCtx }

// SetOwner records the owning *interp.Interpreter as an opaque value.
func (m *Machine) SetOwner(owner interface{}) { m.owner = owner }

// Owner returns the owning Interpreter, as an opaque interface{} that
// callers (internal/interp.Of) type-assert back to *interp.Interpreter.
func (m *Machine) Owner() interface{} { return m.owner }

// New creates a Machine over an existing Dictionary (so an interpreter
// facade and its sub-thread clones can share or separately own
// dictionaries as appropriate).
func New(dict *dictionary.Dictionary) *Machine {
	return &Machine{Dict: dict, Out: flushio.NewWriteFlusher(os.Stdout)}
}

func (m *Machine) logf(mark, mess string, args ...interface{}) {
	if m.Logf != nil {
		m.Logf(mark, mess, args...)
	}
}

// Halt raises the cooperative cancellation flag: a per-interpreter flag
// polled by the VM loop between instructions. code, if non-nil, becomes
// the process exit code.
func (m *Machine) Halt(code *int64) {
	m.halted = true
	if code != nil {
		m.exitCode = int(*code)
	}
}

func (m *Machine) Halted() bool   { return m.halted }
func (m *Machine) ExitCode() int  { return m.exitCode }
func (m *Machine) ClearHalt()     { m.halted = false }

// CurrentLocation is the location of the instruction currently executing,
// for built-ins that need to raise a located error.
func (m *Machine) CurrentLocation() source.Location { return m.curLoc }

// CallStack returns the current diagnostic call stack, innermost frame
// last.
func (m *Machine) CallStack() []CallFrame { return m.callStack }

// --- data stack -------------------------------------------------------

func (m *Machine) Push(v value.Value) { m.stack = append(m.stack, v) }

func (m *Machine) Pop() (value.Value, error) {
	n := len(m.stack)
	if n == 0 {
		return value.Value{}, StackUnderflowError{m.curLoc.String()}
	}
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v, nil
}

func (m *Machine) Peek() (value.Value, error) {
	n := len(m.stack)
	if n == 0 {
		return value.Value{}, StackUnderflowError{m.curLoc.String()}
	}
	return m.stack[n-1], nil
}

func (m *Machine) Depth() int { return len(m.stack) }

// Pick removes and returns the n-th value from the top (0 is the top
// itself).
func (m *Machine) Pick(n int) (value.Value, error) {
	i := len(m.stack) - 1 - n
	if i < 0 || i >= len(m.stack) {
		return value.Value{}, StackUnderflowError{m.curLoc.String()}
	}
	v := m.stack[i]
	m.stack = append(m.stack[:i], m.stack[i+1:]...)
	return v, nil
}

// PushTo moves the top of stack to position n (0 being the current top).
func (m *Machine) PushTo(n int) error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	i := len(m.stack) - n
	if i < 0 || i > len(m.stack) {
		return StackUnderflowError{m.curLoc.String()}
	}
	m.stack = append(m.stack, value.Value{})
	copy(m.stack[i+1:], m.stack[i:])
	m.stack[i] = v
	return nil
}

// ClearStack empties the data stack, used by the REPL's top-level error
// recovery.
func (m *Machine) ClearStack() { m.stack = nil }

func (m *Machine) StackSnapshot() []value.Value {
	out := make([]value.Value, len(m.stack))
	copy(out, m.stack)
	return out
}
