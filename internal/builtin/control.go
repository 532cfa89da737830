package builtin

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/compiler"
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

// errNoCompileContext is returned by a compile-time word used outside of
// compilation (should not happen in normal operation, since immediate
// words only ever run from inside compiler.CompileContext.Run).
var errNoCompileContext = fmt.Errorf("word used outside of compilation")

func mustCtx(m *vm.Machine) (*compiler.CompileContext, error) {
	cc := compiler.Ctx(m)
	if cc == nil {
		return nil, errNoCompileContext
	}
	return cc, nil
}

func registerControl(it *interp.Interpreter) {
	registerWordDefinition(it)
	registerVariables(it)
	registerBracketIf(it)
	registerLoops(it)
	registerExceptions(it)
	registerSources(it)
}

// --- `:` / `;` word definitions ---------------------------------------

func registerWordDefinition(it *interp.Interpreter) {
	defImmediate(it, ":", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		tok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v: Error: expected a word name after ':'", cc.Location())
		}
		con := code.NewConstruction(tok.Location)
		con.HasName = true
		con.Name = tok.Text
		con.ContextManaged = true
		cc.PushConstruction(con)
		return nil
	})

	defImmediate(it, ";", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		con, err := cc.PopConstruction()
		if err != nil {
			return err
		}
		if err := con.ResolveJumps(); err != nil {
			return err
		}
		ctx := dictionary.RunTime
		if con.Immediate {
			ctx = dictionary.Immediate
		}
		vis := dictionary.Visible
		if con.Hidden {
			vis = dictionary.HiddenWord
		}
		m.DefineWord(dictionary.Word{
			Name: con.Name, Context: ctx, Type: dictionary.Scripted, Visibility: vis,
			Description: con.Description, Signature: con.Signature, DefinedAt: con.DefinedAt,
		}, vm.Handler{
			Name: con.Name, Code: con.Code, ContextManaged: con.ContextManaged, DefinedAt: con.DefinedAt,
		})
		return nil
	})

	// `immediate` marks the word currently being defined as a compile-time
	// word. It's used inside the body, right after the name (`: [if]
	// immediate ... ;`), since by the time `;` runs the construction has
	// already been popped.
	defImmediate(it, "immediate", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		cc.Top().Immediate = true
		return nil
	})

	defImmediate(it, "hidden", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		cc.Top().Hidden = true
		return nil
	})
}

// --- variable / constant ------------------------------------------------

func registerVariables(it *interp.Interpreter) {
	defImmediate(it, "variable", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		tok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v: Error: expected a name after 'variable'", cc.Location())
		}
		return cc.Emit(code.Instruction{Op: code.DefVariable, Operand: tok.Text, Location: tok.Location})
	})

	defImmediate(it, "constant", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		tok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v: Error: expected a name after 'constant'", cc.Location())
		}
		return cc.Emit(code.Instruction{Op: code.DefConstant, Operand: tok.Text, Location: tok.Location})
	})

	// @ and ! are the generic runtime counterparts of read_variable/
	// write_variable (section 4.3's instruction table): name-pushers
	// defined by `variable` push a slot index, and these two pop that
	// index (and, for !, a value) to complete the access. Unlike
	// variable/constant/`, these operate purely on stack contents and
	// need no following token, so they're ordinary (non-immediate) words.
	def(it, "@", func(m *vm.Machine) error {
		idxv, err := m.Pop()
		if err != nil {
			return err
		}
		idx, ok := idxv.AsInt()
		if !ok {
			return vm.TypeMismatchError{Location: m.CurrentLocation().String(), Expected: "numeric variable index"}
		}
		v, ok := m.Variables.At(int(idx))
		if !ok {
			return fmt.Errorf("%v: Error: invalid variable index %d", m.CurrentLocation(), idx)
		}
		m.Push(v)
		return nil
	})

	def(it, "!", func(m *vm.Machine) error {
		idxv, err := m.Pop()
		if err != nil {
			return err
		}
		idx, ok := idxv.AsInt()
		if !ok {
			return vm.TypeMismatchError{Location: m.CurrentLocation().String(), Expected: "numeric variable index"}
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if !m.Variables.Set(int(idx), v) {
			return fmt.Errorf("%v: Error: invalid variable index %d", m.CurrentLocation(), idx)
		}
		return nil
	})

	// ` reads the next token as a word name and compiles word_index for
	// it, pushing that word's handler index at run time rather than
	// calling it -- the quoting form the word_index instruction needs a
	// compile-time front end for, since like def_variable/def_constant
	// it's driven from a following token rather than the stack.
	defImmediate(it, "`", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		tok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v: Error: expected a word name after '`'", cc.Location())
		}
		return cc.Emit(code.Instruction{Op: code.WordIndex, Operand: tok.Text, Location: tok.Location})
	})
}

// --- [if] [else] [then]: compile-time conditional compilation ----------

func registerBracketIf(it *interp.Interpreter) {
	defImmediate(it, "[if]", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		cond, err := m.Pop()
		if err != nil {
			return err
		}
		if cond.Truthy() {
			matched, err := cc.CompileUntilWords([]string{"[else]", "[then]"})
			if err != nil {
				return err
			}
			if matched == "[else]" {
				_, err = cc.SkipUntil("[if]", []string{"[then]"})
				return err
			}
			return nil
		}
		matched, err := cc.SkipUntil("[if]", []string{"[else]", "[then]"})
		if err != nil {
			return err
		}
		if matched == "[else]" {
			_, err = cc.CompileUntilWords([]string{"[then]"})
			return err
		}
		return nil
	})
}

// --- structured loops: begin/until/while/repeat, do/loop ----------------
//
// These immediate words stitch together Jump/JumpIfZero/MarkLoopExit
// instructions with already-resolved integer offsets, computed directly
// from the current construction's instruction count -- a lighter-weight
// path than the label/ResolveJumps machinery (reserved for jump labels a
// script names explicitly). They use the machine's own data stack as
// compile-time scratch space for the indices involved (a standard Forth
// technique: compilation is sequential and single-threaded, so the data
// stack is otherwise idle while a word body compiles). Because of that,
// these words only make sense inside a non-auto-executing construction
// (a `:` word body); `begin` and `do` error out when used directly at the
// top level rather than corrupting the script's real data stack. The
// closing words (`until`, `while`, `repeat`, `loop`, `i`) make no such
// check.
func requireCompiling(cc *compiler.CompileContext, word string) error {
	if cc.Top().AutoExecute {
		return fmt.Errorf("%v: Error: %q can only be used inside a word definition", cc.Location(), word)
	}
	return nil
}

func registerLoops(it *interp.Interpreter) {
	defImmediate(it, "begin", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		if err := requireCompiling(cc, "begin"); err != nil {
			return err
		}
		m.Push(value.Int_(int64(len(cc.Top().Code))))
		return nil
	})

	defImmediate(it, "until", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		beginIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		here := len(cc.Top().Code)
		return cc.Emit(code.Instruction{Op: code.JumpIfZero, Operand: int(beginIdx) - here})
	})

	defImmediate(it, "while", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		jzIdx := len(cc.Top().Code)
		if err := cc.Emit(code.Instruction{Op: code.JumpIfZero, Operand: 0}); err != nil {
			return err
		}
		m.Push(value.Int_(int64(jzIdx)))
		return nil
	})

	defImmediate(it, "repeat", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		jzIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		beginIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		jumpIdx := len(cc.Top().Code)
		if err := cc.Emit(code.Instruction{Op: code.Jump, Operand: int(beginIdx) - jumpIdx}); err != nil {
			return err
		}
		after := len(cc.Top().Code)
		cc.Top().Code[jzIdx].Operand = after - int(jzIdx)
		return nil
	})

	defImmediate(it, "do", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		if err := requireCompiling(cc, "do"); err != nil {
			return err
		}
		idxVar := m.Variables.Append(value.None_())
		limitVar := m.Variables.Append(value.None_())

		// store the runtime `start` (top of stack when `do` runs) into idxVar
		if err := cc.Emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(int64(idxVar))}); err != nil {
			return err
		}
		if err := cc.Emit(code.Instruction{Op: code.WriteVariable}); err != nil {
			return err
		}
		// store `limit` into limitVar
		if err := cc.Emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(int64(limitVar))}); err != nil {
			return err
		}
		if err := cc.Emit(code.Instruction{Op: code.WriteVariable}); err != nil {
			return err
		}

		markIdx := len(cc.Top().Code)
		if err := cc.Emit(code.Instruction{Op: code.MarkLoopExit, Operand: 0}); err != nil {
			return err
		}
		bodyStart := len(cc.Top().Code)

		m.Push(value.Int_(int64(idxVar)))
		m.Push(value.Int_(int64(limitVar)))
		m.Push(value.Int_(int64(markIdx)))
		m.Push(value.Int_(int64(bodyStart)))
		return nil
	})

	defImmediate(it, "i", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		snap := m.StackSnapshot()
		if len(snap) < 4 {
			return fmt.Errorf("%v: Error: 'i' used outside do/loop", cc.Location())
		}
		idxVar, ok := snap[len(snap)-4].AsInt()
		if !ok {
			return fmt.Errorf("%v: Error: 'i' used outside do/loop", cc.Location())
		}
		if err := cc.Emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(idxVar)}); err != nil {
			return err
		}
		return cc.Emit(code.Instruction{Op: code.ReadVariable})
	})

	defImmediate(it, "loop", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		bodyStart, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		markIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		limitVar, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		idxVar, err := popCompileMarker(m)
		if err != nil {
			return err
		}

		dupWord, ok := m.Dict.Find("dup")
		if !ok {
			return fmt.Errorf("'loop' requires the 'dup' word to be registered")
		}
		geWord, ok := m.Dict.Find(">=")
		if !ok {
			return fmt.Errorf("'loop' requires the '>=' word to be registered")
		}

		emit := func(in code.Instruction) error { return cc.Emit(in) }

		if err := emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(int64(idxVar))}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.ReadVariable}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(1)}); err != nil {
			return err
		}
		plusWord, _ := m.Dict.Find("+")
		if err := emit(code.Instruction{Op: code.Execute, Operand: plusWord.HandlerIndex}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.Execute, Operand: dupWord.HandlerIndex}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(int64(idxVar))}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.WriteVariable}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.PushConstantValue, Operand: value.Int_(int64(limitVar))}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.ReadVariable}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.Execute, Operand: geWord.HandlerIndex}); err != nil {
			return err
		}

		jzIdx := len(cc.Top().Code)
		if err := emit(code.Instruction{Op: code.JumpIfZero, Operand: int(bodyStart) - jzIdx}); err != nil {
			return err
		}
		if err := emit(code.Instruction{Op: code.UnmarkLoopExit}); err != nil {
			return err
		}

		after := len(cc.Top().Code)
		cc.Top().Code[markIdx].Operand = after - int(bodyStart)
		return nil
	})
}

func popCompileMarker(m *vm.Machine) (int64, error) {
	v, err := m.Pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, typeMismatch(m, "a compile-time marker (mismatched control-flow words?)")
	}
	return n, nil
}

// --- try / catch / throw / endcatch -------------------------------------

type thrownError struct{ msg string }

func (e thrownError) Error() string { return e.msg }

// try works both inside a word definition (where, like begin/do, it just
// stitches MarkCatch/Jump instructions into the construction already being
// collected) and directly at the top level. The top-level case needs its
// own nested, non-auto-executing construction: the Jump that catch emits to
// skip the catch-handler body has to target an instruction that, at the
// time catch compiles it, hasn't even been read from the source yet, so the
// whole try..endcatch span has to be compiled before any of it runs. A
// top-level try opens a construction the same way `:` does, and endcatch
// runs the whole thing in one go once it's fully compiled, instead of
// letting the top-level's usual one-instruction-at-a-time auto-execute run
// each piece in its own disconnected step.
func registerExceptions(it *interp.Interpreter) {
	defImmediate(it, "try", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		wrapped := cc.Top().AutoExecute
		if wrapped {
			cc.PushConstruction(code.NewConstruction(cc.Location()))
		}
		markIdx := len(cc.Top().Code)
		if err := cc.Emit(code.Instruction{Op: code.MarkCatch, Operand: 0}); err != nil {
			return err
		}
		m.Push(value.Bool_(wrapped))
		m.Push(value.Int_(int64(markIdx)))
		return nil
	})

	defImmediate(it, "catch", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		markIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		if err := cc.Emit(code.Instruction{Op: code.UnmarkCatch}); err != nil {
			return err
		}
		jumpIdx := len(cc.Top().Code)
		if err := cc.Emit(code.Instruction{Op: code.Jump, Operand: 0}); err != nil {
			return err
		}
		landing := len(cc.Top().Code)
		cc.Top().Code[markIdx].Operand = landing - (int(markIdx) + 1)
		m.Push(value.Int_(int64(jumpIdx)))
		return nil
	})

	defImmediate(it, "endcatch", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		jumpIdx, err := popCompileMarker(m)
		if err != nil {
			return err
		}
		after := len(cc.Top().Code)
		cc.Top().Code[jumpIdx].Operand = after - int(jumpIdx)

		wrappedV, err := m.Pop()
		if err != nil {
			return err
		}
		wrapped, ok := wrappedV.AsBool()
		if !ok {
			return typeMismatch(m, "a compile-time marker (mismatched try/endcatch?)")
		}
		if !wrapped {
			return nil
		}
		con, err := cc.PopConstruction()
		if err != nil {
			return err
		}
		return cc.Machine().ExecuteCode(con.Code)
	})

	def(it, "throw", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		msg, ok := v.AsString()
		if !ok {
			msg = v.String()
		}
		return thrownError{msg: msg}
	})
}

// --- reset / include / [include] ----------------------------------------

func registerSources(it *interp.Interpreter) {
	def(it, "reset", func(m *vm.Machine) error {
		it.Reset()
		return nil
	})

	def(it, "include", func(m *vm.Machine) error {
		v, err := m.Pop()
		if err != nil {
			return err
		}
		path, ok := v.AsString()
		if !ok {
			return typeMismatch(m, "string")
		}
		return it.Include(path)
	})

	defImmediate(it, "[include]", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}
		tok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%v: Error: expected a path after [include]", cc.Location())
		}
		return it.Include(tok.Text)
	})
}
