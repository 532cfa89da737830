// Package dictionary implements sorth's Dictionary: an ordered stack of
// name->Word maps, plus the inverse (handler index -> latest bound name)
// lookup used to pretty-print bytecode.
package dictionary

import "github.com/cstrainge/sorth/internal/source"

// ExecutionContext distinguishes immediate (compile-time) words from
// ordinary run-time words.
type ExecutionContext int

const (
	RunTime ExecutionContext = iota
	Immediate
)

// WordType distinguishes user-scripted words from built-in ("internal")
// words.
type WordType int

const (
	Scripted WordType = iota
	Internal
)

// Visibility controls whether a word is listed by introspection words like
// `words`; hidden words (e.g. helper words generated by `#`) still resolve
// normally.
type Visibility int

const (
	Visible Visibility = iota
	HiddenWord
)

// Word records everything the dictionary needs about a bound name:
// execution context, type, visibility, description, signature, defining
// location, and a stable index into the VM's handler table.
type Word struct {
	Name         string
	Context      ExecutionContext
	Type         WordType
	Visibility   Visibility
	Description  string
	Signature    string
	DefinedAt    source.Location
	HandlerIndex int
}

func (w Word) IsImmediate() bool { return w.Context == Immediate }

// Dictionary is a stack of name->Word scopes. Lookup walks innermost to
// outermost; Insert always binds in the innermost (current) scope,
// overwriting any existing binding there.
type Dictionary struct {
	scopes  []map[string]Word
	inverse []string // handler index -> latest-bound name
}

// New returns a Dictionary with one (the base) scope already open. The
// base scope is never released.
func New() *Dictionary {
	d := &Dictionary{}
	d.scopes = append(d.scopes, make(map[string]Word))
	return d
}

// MarkContext pushes a new, empty scope.
func (d *Dictionary) MarkContext() {
	d.scopes = append(d.scopes, make(map[string]Word))
}

// ReleaseContext pops the innermost scope. Releasing the base scope is a
// programming error and is ignored.
func (d *Dictionary) ReleaseContext() {
	if len(d.scopes) > 1 {
		d.scopes = d.scopes[:len(d.scopes)-1]
	}
}

func (d *Dictionary) Depth() int { return len(d.scopes) }

// Insert binds name to w in the innermost scope, overwriting any existing
// binding there, and records the inverse (handler index -> name) mapping.
func (d *Dictionary) Insert(name string, w Word) {
	w.Name = name
	d.scopes[len(d.scopes)-1][name] = w
	if w.HandlerIndex >= 0 {
		for len(d.inverse) <= w.HandlerIndex {
			d.inverse = append(d.inverse, "")
		}
		d.inverse[w.HandlerIndex] = name
	}
}

// Find walks scopes innermost-out, returning the first binding found.
func (d *Dictionary) Find(name string) (Word, bool) {
	for i := len(d.scopes) - 1; i >= 0; i-- {
		if w, ok := d.scopes[i][name]; ok {
			return w, true
		}
	}
	return Word{}, false
}

// Exists reports whether name resolves to a binding.
func (d *Dictionary) Exists(name string) bool {
	_, ok := d.Find(name)
	return ok
}

// NameOf returns the latest name bound to a given handler index, the
// inverse lookup used for pretty-printing bytecode.
func (d *Dictionary) NameOf(handlerIndex int) (string, bool) {
	if handlerIndex < 0 || handlerIndex >= len(d.inverse) {
		return "", false
	}
	name := d.inverse[handlerIndex]
	return name, name != ""
}

// Each iterates all live bindings, innermost scope's bindings shadowing
// outer ones of the same name, for `words`-style introspection.
func (d *Dictionary) Each(f func(name string, w Word)) {
	seen := make(map[string]bool)
	for i := len(d.scopes) - 1; i >= 0; i-- {
		for name, w := range d.scopes[i] {
			if seen[name] {
				continue
			}
			seen[name] = true
			f(name, w)
		}
	}
}
