package code

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/source"
)

// Construction is an in-progress bytecode block: an optional name,
// immediate/hidden/context-managed flags, a description, a signature, and
// the location where `:` (or the top-level) opened it.
type Construction struct {
	Name           string
	HasName        bool
	Immediate      bool
	Hidden         bool
	ContextManaged bool
	Description    string
	Signature      string
	DefinedAt      source.Location

	// AutoExecute marks the top-level (script) construction: each
	// instruction appended to it runs immediately after being emitted,
	// giving top-level code classic Forth "interpret mode" semantics so
	// that an immediate word like [if] sees the value a preceding `true`/
	// `false` just pushed. Constructions opened by `:` or by a top-level
	// `try` are not auto-executing: their instructions only
	// run when later called as a word, or spliced in by the immediate
	// word that collected them. See DESIGN.md for how interpret/compile
	// mode alternates.
	AutoExecute bool

	Code []Instruction

	// InsertAtFront, when true, makes the next Emit prepend instead of
	// append. Immediate words toggle this to inject prologue code (an
	// "insertion mode").
	InsertAtFront bool

	labels map[string]int
}

func NewConstruction(at source.Location) *Construction {
	return &Construction{DefinedAt: at}
}

// Emit appends (or, in insert-at-front mode, prepends) instr to this
// construction's code and returns the index it landed at.
func (c *Construction) Emit(instr Instruction) int {
	if c.InsertAtFront {
		c.Code = append([]Instruction{instr}, c.Code...)
		return 0
	}
	c.Code = append(c.Code, instr)
	return len(c.Code) - 1
}

// MarkLabel records a jump_target landing pad at the current end of the
// code, for a later ResolveJumps pass.
func (c *Construction) MarkLabel(label string) {
	if c.labels == nil {
		c.labels = make(map[string]int)
	}
	c.labels[label] = len(c.Code)
}

// ResolveJumps sweeps the construction rewriting every jump/mark_loop_exit/
// mark_catch operand from its label string to the relative offset
// target_index - jump_index.
func (c *Construction) ResolveJumps() error {
	for i, in := range c.Code {
		switch in.Op {
		case Jump, JumpIfZero, JumpIfNotZero, MarkLoopExit, MarkCatch:
			label, ok := in.LabelOperand()
			if !ok {
				continue // already resolved to an int offset
			}
			target, found := c.labels[label]
			if !found {
				return fmt.Errorf("%v: unresolved jump label %q", in.Location, label)
			}
			c.Code[i].Operand = target - i
		}
	}
	return nil
}
