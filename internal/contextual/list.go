// Package contextual implements ContextualList, the generic scoped
// append-only log that backs sorth's dictionary, variable store, word
// handler table, and data definition table: a vector of per-scope segments
// with a running base index.
//
// Grounded on gothird's core.go symbols type, which interns strings into a
// stable append-only index -- generalized here to an arbitrary element
// type with scope marks, since the dictionary/handler/variable/definition
// stacks all need the same "append now, release down to a mark later"
// lifecycle, and must stay balanced as a single atomic operation across
// all four.
package contextual

// List is a scoped, append-only sequence of T. A live element's index never
// changes, so an index into this table stays stable across lookups within
// a scope. Release truncates back to the innermost mark: indices at or
// past that mark become inaccessible, and later Appends hand those same
// indices out again to new elements.
type List[T any] struct {
	items []T
	marks []int
}

// Mark pushes a new scope boundary at the current length and returns the
// index of that boundary, for symmetry with the dictionary's own scope
// stack (callers needing just "mark then release" can ignore the return).
func (l *List[T]) Mark() int {
	m := len(l.items)
	l.marks = append(l.marks, m)
	return m
}

// Release pops the innermost scope, truncating the list back to the mark
// that Mark most recently established. Releasing with no outstanding mark
// is a no-op, mirroring the dictionary's "never empties
// the base" caller discipline (the base scope is never released).
func (l *List[T]) Release() {
	if n := len(l.marks); n > 0 {
		m := l.marks[n-1]
		l.marks = l.marks[:n-1]
		var zero T
		for i := m; i < len(l.items); i++ {
			l.items[i] = zero
		}
		l.items = l.items[:m]
	}
}

// Depth reports the number of outstanding marks, for context-balance
// assertions.
func (l *List[T]) Depth() int { return len(l.marks) }

// Append adds v to the end of the list and returns its stable index.
func (l *List[T]) Append(v T) int {
	i := len(l.items)
	l.items = append(l.items, v)
	return i
}

// Len is the number of live (non-released) elements.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the element at index i and whether i is currently live.
func (l *List[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, false
	}
	return l.items[i], true
}

// Set overwrites the element at index i, reporting whether i was live.
func (l *List[T]) Set(i int, v T) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items[i] = v
	return true
}

// MarkBase returns the start index of the innermost open scope, i.e. the
// first index appended since the last Mark (0 if no scope is open).
func (l *List[T]) MarkBase() int {
	if n := len(l.marks); n > 0 {
		return l.marks[n-1]
	}
	return 0
}

// Each iterates all live elements from outermost to innermost, index order.
func (l *List[T]) Each(f func(i int, v T)) {
	for i, v := range l.items {
		f(i, v)
	}
}
