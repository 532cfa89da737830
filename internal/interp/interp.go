// Package interp implements the Interpreter facade: owns stacks,
// dictionary, variables, sub-threads, and search paths; process_source,
// execute_word(_threaded), context marking.
//
// Grounded on jcorbin-gothird's VM type (main.go/api.go before this
// transformation): a top-level object holding the machine, an input
// queue, and construction options, generalized from a single fixed memory
// machine to sorth's dictionary+handler+variable-list VM.
package interp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cstrainge/sorth/internal/compiler"
	"github.com/cstrainge/sorth/internal/containers"
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

// Interpreter owns the VM, the search-path stack, the process-wide thread
// registry root pointer, and the cooperative exit state.
type Interpreter struct {
	Machine *vm.Machine

	searchPaths []string

	// Threads points at the shared registry owned by the root interpreter
	// of a thread tree; sub-thread clones set this to their root's
	// registry rather than each keeping their own -- child interpreters
	// share a single thread map, owned by the root ancestor.
	Threads interface{}

	// SelfID is this interpreter's own entry in the Threads registry (0 for
	// the root interpreter, which has no entry of its own). A sub-thread's
	// builtin words (thread.push/thread.pop) use it to find their own
	// queues without threading an id through every call.
	SelfID int64

	Logf func(mark, mess string, args ...interface{})
}

// Option configures a new Interpreter, via the functional-options
// construction idiom.
type Option func(*Interpreter)

// WithLogf installs a trace/log sink (internal/logio-backed in cmd/sorth).
func WithLogf(f func(mark, mess string, args ...interface{})) Option {
	return func(it *Interpreter) { it.Logf = f }
}

// WithSearchPath seeds the initial search-path stack, innermost (checked
// first) last.
func WithSearchPath(paths ...string) Option {
	return func(it *Interpreter) { it.searchPaths = append(it.searchPaths, paths...) }
}

// New builds a fresh Interpreter with an empty dictionary/machine; it marks
// no context (callers install built-ins via internal/builtin.Register
// before running any source).
func New(opts ...Option) *Interpreter {
	it := &Interpreter{Machine: vm.New(dictionary.New())}
	for _, opt := range opts {
		opt(it)
	}
	it.Machine.Logf = it.Logf
	it.Machine.SetOwner(it)
	return it
}

// Of recovers the Interpreter owning m, for built-in words (internal/
// builtin) that are only handed a *vm.Machine but need the Interpreter
// itself (search paths, the thread registry, SelfID, Clone). Returns nil
// if m has no owner set (shouldn't happen for a Machine built by New).
func Of(m *vm.Machine) *Interpreter {
	it, _ := m.Owner().(*Interpreter)
	return it
}

// Args sets sorth.args to an array of string values.
func (it *Interpreter) Args(args []string) {
	items := make([]value.Value, len(args))
	for i, a := range args {
		items[i] = value.String_(a)
	}
	arr := containers.NewArrayFrom(items)
	v := value.Ref_(value.Array, arr)
	it.Machine.DefineWord(dictionary.Word{
		Name: "sorth.args", Context: dictionary.RunTime, Type: dictionary.Internal,
	}, vm.Handler{
		Name:   "sorth.args",
		Native: func(m *vm.Machine) error { m.Push(v.Copy()); return nil },
	})
}

// ExecuteWord looks up name and calls its handler, the entry point named
// execute_word.
func (it *Interpreter) ExecuteWord(name string) error {
	return it.Machine.CallWord(name)
}

// ExecuteWordIndexed calls a word by its stable handler-table index rather
// than by name (execute_word_threaded), used by sub-thread workers, which
// capture a handler index at spawn time so later redefinition of the same
// name can't change what a running thread runs.
func (it *Interpreter) ExecuteWordIndexed(idx int) error {
	return it.Machine.CallHandlerIndex(idx)
}

// ProcessSource compiles and executes one source file: resolves path,
// pushes its parent directory as a search path, tokenizes, compiles (and,
// for top-level instructions, executes as it compiles), then pops the
// directory.
func (it *Interpreter) ProcessSource(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return err
	}

	it.pushSearchPath(filepath.Dir(abs))
	defer it.popSearchPath()

	return it.ProcessText(abs, string(text))
}

// ProcessText compiles and (at the top level) executes already-read source
// text under the given path name, used by ProcessSource and by the REPL
// (which has no backing file).
func (it *Interpreter) ProcessText(path, text string) error {
	cc := compiler.New(it.Machine, path, text)
	return cc.Run()
}

// FindFile resolves path to an existing absolute path: returned unchanged
// if already absolute and present, else resolved against the search-path
// stack innermost (most recently pushed) first.
func (it *Interpreter) FindFile(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	for i := len(it.searchPaths) - 1; i >= 0; i-- {
		candidate := filepath.Join(it.searchPaths[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(path); err == nil {
		abs, err := filepath.Abs(path)
		return abs, err
	}
	return "", fmt.Errorf("find_file: no such file %q in search paths", path)
}

// Include resolves and processes path via FindFile/ProcessSource, the
// runtime half of the include/[include] pair.
func (it *Interpreter) Include(path string) error {
	found, err := it.FindFile(path)
	if err != nil {
		return err
	}
	return it.ProcessSource(found)
}

func (it *Interpreter) pushSearchPath(dir string) { it.searchPaths = append(it.searchPaths, dir) }

func (it *Interpreter) popSearchPath() {
	if n := len(it.searchPaths); n > 0 {
		it.searchPaths = it.searchPaths[:n-1]
	}
}

// Clone builds a new Interpreter for a sub-thread: the dictionary/handler/
// variable/definition contexts are copied flat (all
// scopes collapsed into the clone's single base scope, since a thread
// never releases back past its starting point), search paths are copied,
// and Threads is shared verbatim so the clone registers in the same root
// registry. The clone gets a fresh, empty data stack; Machine is otherwise
// freshly constructed, not shared.
func (it *Interpreter) Clone() *Interpreter {
	dict := dictionary.New()
	it.Machine.Dict.Each(func(name string, w dictionary.Word) { dict.Insert(name, w) })

	m := vm.New(dict)
	it.Machine.Handlers.Each(func(_ int, h vm.Handler) { m.Handlers.Append(h) })
	it.Machine.Variables.Each(func(_ int, v value.Value) { m.Variables.Append(v.Copy()) })
	it.Machine.Definitions.Each(func(_ int, d *containers.Definition) { m.Definitions.Append(d) })
	m.Out = it.Machine.Out
	m.Logf = it.Machine.Logf

	clone := &Interpreter{
		Machine:     m,
		searchPaths: append([]string(nil), it.searchPaths...),
		Threads:     it.Threads,
		Logf:        it.Logf,
	}
	m.SetOwner(clone)
	return clone
}

// Reset releases the current dictionary/handler/variable/definition
// context and marks a fresh one, clearing all definitions made since the
// last mark without disturbing ones made before it.
func (it *Interpreter) Reset() {
	it.Machine.Dict.ReleaseContext()
	it.Machine.Handlers.Release()
	it.Machine.Variables.Release()
	it.Machine.Definitions.Release()

	it.Machine.Dict.MarkContext()
	it.Machine.Handlers.Mark()
	it.Machine.Variables.Mark()
	it.Machine.Definitions.Mark()
}
