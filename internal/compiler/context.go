// Package compiler implements the token-driven compile loop: CompileContext
// walks tokens from a source.Tokenizer, resolving each word against the
// dictionary and either running it immediately (compile-time
// metaprogramming words) or emitting an execute instruction for it, against
// a stack of in-progress code.Constructions.
//
// Grounded on jcorbin-gothird/internals.go's compile loop (tokenize, look
// up, either run now or emit), generalized from gothird's flat int-opcode
// stream to sorth's named Construction/jump-label model (internal/code).
package compiler

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/source"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

// Ctx recovers the active CompileContext from a Machine installed by Run,
// for built-in words (internal/builtin) that need to drive the compiler
// directly (word/constant definitions, structured control words, data
// definitions). Returns nil when called outside of compilation.
func Ctx(m *vm.Machine) *CompileContext {
	cc, _ := m.CompileContext().(*CompileContext)
	return cc
}

// CompileContext drives one source text through tokenization and into a
// stack of code.Constructions. The top-level construction is AutoExecute,
// so compiling top-level code also runs it, interleaving interpret-mode and
// compile-mode execution; constructions pushed by `:` or by an immediate
// word collecting a sub-block are not.
//
// A *CompileContext is installed on its Machine for the duration of Run
// (vm.Machine.SetCompileContext), so built-in immediate words (registered
// by internal/builtin, which imports both vm and compiler) can recover it
// with a type assertion and drive PushConstruction/Emit/CompileUntilWords
// themselves.
type CompileContext struct {
	m   *vm.Machine
	tok *source.Tokenizer
	buf *source.Buffer

	pending []source.Token
	stack   []*code.Construction

	prev interface{}
}

// New prepares a CompileContext over text (already read in full), named
// path for diagnostics. Call Run to tokenize, compile, and (for top-level
// code) execute it.
func New(m *vm.Machine, path, text string) *CompileContext {
	buf := source.NewBuffer(path, text)
	top := code.NewConstruction(buf.Location())
	top.AutoExecute = true

	return &CompileContext{
		m:     m,
		tok:   source.NewTokenizer(buf),
		buf:   buf,
		stack: []*code.Construction{top},
	}
}

// Machine returns the Machine this context compiles against.
func (cc *CompileContext) Machine() *vm.Machine { return cc.m }

// Location is the tokenizer's current read position.
func (cc *CompileContext) Location() source.Location { return cc.buf.Location() }

// Run tokenizes and compiles the whole source, top-level instructions
// executing as they're emitted. Returns an error if a word definition (or
// other construction) is left unterminated at end of input.
func (cc *CompileContext) Run() error {
	cc.prev = cc.m.CompileContext()
	cc.m.SetCompileContext(cc)
	defer cc.m.SetCompileContext(cc.prev)

	for {
		t, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := cc.CompileToken(t); err != nil {
			return err
		}
	}

	if len(cc.stack) != 1 {
		return fmt.Errorf("%v: Error: unterminated word or block definition", cc.buf.Location())
	}
	return nil
}

// Top returns the construction currently being compiled into.
func (cc *CompileContext) Top() *code.Construction { return cc.stack[len(cc.stack)-1] }

// Depth reports how many nested constructions are open (1 at top level).
func (cc *CompileContext) Depth() int { return len(cc.stack) }

// PushConstruction opens a new nested construction (used by `:` to start a
// word body, and by a top-level `try` to collect its protected block).
func (cc *CompileContext) PushConstruction(c *code.Construction) { cc.stack = append(cc.stack, c) }

// PopConstruction closes and returns the innermost construction. It is an
// error to pop the top-level construction.
func (cc *CompileContext) PopConstruction() (*code.Construction, error) {
	if len(cc.stack) <= 1 {
		return nil, fmt.Errorf("%v: Error: construction stack underflow", cc.buf.Location())
	}
	n := len(cc.stack)
	c := cc.stack[n-1]
	cc.stack = cc.stack[:n-1]
	return c, nil
}

// GetNextToken returns a pushed-back token if one is pending, else reads
// the next token from the underlying tokenizer.
func (cc *CompileContext) GetNextToken() (source.Token, bool, error) {
	if n := len(cc.pending); n > 0 {
		t := cc.pending[n-1]
		cc.pending = cc.pending[:n-1]
		return t, true, nil
	}
	return cc.tok.Next()
}

// PushBackToken returns a token to the front of the stream, for built-ins
// that need one token of lookahead.
func (cc *CompileContext) PushBackToken(t source.Token) {
	cc.pending = append(cc.pending, t)
}

// Emit appends (or, in insert-at-front mode, prepends) instr to the
// current construction, auto-executing it immediately when the current
// construction is the auto-executing top level.
func (cc *CompileContext) Emit(in code.Instruction) error {
	top := cc.Top()
	top.Emit(in)
	if top.AutoExecute && !top.InsertAtFront {
		return cc.m.ExecuteCode([]code.Instruction{in})
	}
	return nil
}

// MarkLabel records a jump_target landing pad in the current construction.
func (cc *CompileContext) MarkLabel(label string) { cc.Top().MarkLabel(label) }

// SetInsertFront toggles insert-at-front mode on the current construction,
// used by loop-prologue words.
func (cc *CompileContext) SetInsertFront(front bool) { cc.Top().InsertAtFront = front }

// CompileToken compiles a single already-scanned token: numbers and
// strings emit push_constant_value; words resolve against the dictionary,
// either running immediately (if immediate) or emitting an execute. A word
// with no dictionary binding yet is emitted as an execute-by-name, resolved
// at run time (supports forward references inside recursive definitions).
func (cc *CompileContext) CompileToken(t source.Token) error {
	switch t.Type {
	case source.Number:
		v, err := source.ParseNumber(t.Text)
		if err != nil {
			return err
		}
		return cc.Emit(code.Instruction{Op: code.PushConstantValue, Operand: v, Location: t.Location})

	case source.String:
		return cc.Emit(code.Instruction{
			Op: code.PushConstantValue, Operand: value.String_(t.Text), Location: t.Location,
		})

	default:
		return cc.compileWord(t)
	}
}

func (cc *CompileContext) compileWord(t source.Token) error {
	w, ok := cc.m.Dict.Find(t.Text)
	if !ok {
		return cc.Emit(code.Instruction{Op: code.Execute, Operand: t.Text, Location: t.Location})
	}
	if w.IsImmediate() {
		return cc.m.CallHandlerIndex(w.HandlerIndex)
	}
	return cc.Emit(code.Instruction{Op: code.Execute, Operand: w.HandlerIndex, Location: t.Location})
}

// CompileUntilWords compiles tokens until the next token is a word whose
// text matches one of words; that matching token is consumed but not
// compiled, and its text is returned. Used by `[if]` to compile a branch
// up to its closing `[else]`/`[then]`.
func (cc *CompileContext) CompileUntilWords(words []string) (string, error) {
	for {
		t, ok, err := cc.GetNextToken()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%v: Error: expected one of %v before end of input", cc.buf.Location(), words)
		}
		if t.Type == source.Word {
			for _, w := range words {
				if w == t.Text {
					return t.Text, nil
				}
			}
		}
		if err := cc.CompileToken(t); err != nil {
			return "", err
		}
	}
}

// SkipUntil scans (without compiling) tokens until a word in words is seen
// at nesting depth 0, tracking depth by counting open against the last
// (closing) entry of words, so a skipped [if] ... [then] block nested
// inside the region being skipped doesn't confuse the scan. Used by [if]
// to skip the branch it decided not to compile.
func (cc *CompileContext) SkipUntil(open string, words []string) (string, error) {
	closeWord := words[len(words)-1]
	depth := 0
	for {
		t, ok, err := cc.GetNextToken()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%v: Error: expected one of %v before end of input", cc.buf.Location(), words)
		}
		if t.Type != source.Word {
			continue
		}
		if t.Text == open {
			depth++
			continue
		}
		if depth == 0 {
			for _, w := range words {
				if w == t.Text {
					return t.Text, nil
				}
			}
			continue
		}
		if t.Text == closeWord {
			depth--
		}
	}
}
