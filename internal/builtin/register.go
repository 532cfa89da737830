// Package builtin installs sorth's built-in word table (about 110
// primitives that expose the run-time's operations to Forth) against a
// freshly constructed Interpreter: arithmetic, stack shuffling, control
// flow (compile-time [if]/[else]/[then], begin/until/while/repeat,
// do/loop; there is no run-time if/then/else word), variable/constant/word definition,
// data definitions (#), container words (array/hash/buffer), exception
// handling (try/catch/throw/endcatch), sub-threads, and introspection.
//
// Grounded on jcorbin-gothird's core.go, which installs its own small
// built-in word table (`third`'s bootstrap words) by direct calls against
// the VM during construction; generalized here to a dedicated registration
// package since sorth's built-in surface is far larger than gothird's.
package builtin

import (
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/vm"
)

// Register installs every built-in word into it's base dictionary scope.
func Register(it *interp.Interpreter) {
	registerStack(it)
	registerArith(it)
	registerIO(it)
	registerControl(it)
	registerDataObject(it)
	registerContainers(it)
	registerThread(it)
}

// def binds a run-time native word.
func def(it *interp.Interpreter, name string, fn func(m *vm.Machine) error) {
	it.Machine.DefineWord(dictionary.Word{
		Name: name, Context: dictionary.RunTime, Type: dictionary.Internal,
	}, vm.Handler{Name: name, Native: fn})
}

// defImmediate binds a compile-time (immediate) native word: it runs during
// compilation rather than having its call emitted.
func defImmediate(it *interp.Interpreter, name string, fn func(m *vm.Machine) error) {
	it.Machine.DefineWord(dictionary.Word{
		Name: name, Context: dictionary.Immediate, Type: dictionary.Internal,
	}, vm.Handler{Name: name, Native: fn})
}
