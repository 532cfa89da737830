package builtin

import (
	"io"

	"github.com/cstrainge/sorth/internal/vm"
)

func stdout(m *vm.Machine) io.Writer { return m.Output() }

func typeMismatch(m *vm.Machine, expected string) error {
	return vm.TypeMismatchError{Location: m.CurrentLocation().String(), Expected: expected}
}
