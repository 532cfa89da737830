// Package code implements sorth's bytecode instruction set and the
// in-progress "construction" that the compiler accumulates instructions
// into.
package code

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/source"
	"github.com/cstrainge/sorth/internal/value"
)

// Opcode enumerates the VM's 20 instructions.
type Opcode int

const (
	DefVariable Opcode = iota
	DefConstant
	ReadVariable
	WriteVariable
	Execute
	WordIndex
	WordExists
	PushConstantValue
	MarkLoopExit
	UnmarkLoopExit
	MarkCatch
	UnmarkCatch
	MarkContext
	ReleaseContext
	Jump
	JumpIfZero
	JumpIfNotZero
	JumpLoopStart
	JumpLoopExit
	JumpTarget
	opcodeMax
)

var opcodeNames = [...]string{
	"def_variable", "def_constant", "read_variable", "write_variable",
	"execute", "word_index", "word_exists", "push_constant_value",
	"mark_loop_exit", "unmark_loop_exit", "mark_catch", "unmark_catch",
	"mark_context", "release_context", "jump", "jump_if_zero",
	"jump_if_not_zero", "jump_loop_start", "jump_loop_exit", "jump_target",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", int(op))
}

// Instruction is one bytecode op plus its operand and source location.
// Operand's concrete type depends on Op:
//   - Execute, WordIndex, WordExists, DefVariable, DefConstant: string
//     name. Execute instead carries an int handler index when its word was
//     already defined at compile time; a string name is looked up again
//     each time the instruction runs.
//   - PushConstantValue: value.Value
//   - Jump, JumpIfZero, JumpIfNotZero, MarkLoopExit, MarkCatch: either a
//     string label (pre jump-resolution) or an int relative offset
//     (post-resolution).
//   - everything else: nil.
type Instruction struct {
	Op       Opcode
	Operand  interface{}
	Location source.Location
}

func (in Instruction) String() string {
	if in.Operand == nil {
		return in.Op.String()
	}
	return fmt.Sprintf("%v %v", in.Op, in.Operand)
}

// NameOperand returns the Execute/WordIndex/WordExists/DefVariable/DefConstant
// operand as a string, for unresolved (by-name) instructions.
func (in Instruction) NameOperand() (string, bool) {
	s, ok := in.Operand.(string)
	return s, ok
}

// IndexOperand returns an already-resolved handler index operand.
func (in Instruction) IndexOperand() (int, bool) {
	i, ok := in.Operand.(int)
	return i, ok
}

// ValueOperand returns a PushConstantValue operand.
func (in Instruction) ValueOperand() (value.Value, bool) {
	v, ok := in.Operand.(value.Value)
	return v, ok
}

// LabelOperand returns an unresolved jump label.
func (in Instruction) LabelOperand() (string, bool) {
	s, ok := in.Operand.(string)
	return s, ok
}
