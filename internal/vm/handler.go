package vm

import (
	"github.com/cstrainge/sorth/internal/code"
	"github.com/cstrainge/sorth/internal/source"
)

// Handler is one entry of the word handler table: either a native Go
// function (built-in) or a stored bytecode body (scripted word).
type Handler struct {
	Name           string
	Native         func(m *Machine) error
	Code           []code.Instruction
	ContextManaged bool
	DefinedAt      source.Location
}

func (h Handler) IsScripted() bool { return h.Native == nil }
