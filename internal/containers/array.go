// Package containers implements sorth's container values: Array,
// HashTable, ByteBuffer (with sub-buffer views), and DataObject (+
// Definition). All four implement value.Ref so they can be stored inside a
// value.Value and participate in its ordering/equality/hashing/deep-copy
// machinery.
//
// The shared-reference semantics (a Value holds a pointer to one of these,
// not a copy) favors explicit, small, composable types over a single
// monolithic runtime object.
package containers

import (
	"strings"

	"github.com/cstrainge/sorth/internal/value"
)

// Array is sorth's size-flexible indexed sequence of Value.
type Array struct {
	items []value.Value
}

func NewArray(size int) *Array {
	return &Array{items: make([]value.Value, size)}
}

func NewArrayFrom(items []value.Value) *Array {
	return &Array{items: items}
}

func (a *Array) Len() int { return len(a.items) }

func (a *Array) Get(i int) (value.Value, bool) {
	if i < 0 || i >= len(a.items) {
		return value.Value{}, false
	}
	return a.items[i], true
}

func (a *Array) Set(i int, v value.Value) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	a.items[i] = v
	return true
}

// InsertAt inserts v before index i (i == Len() appends).
func (a *Array) InsertAt(i int, v value.Value) bool {
	if i < 0 || i > len(a.items) {
		return false
	}
	a.items = append(a.items, value.Value{})
	copy(a.items[i+1:], a.items[i:])
	a.items[i] = v
	return true
}

// RemoveAt removes the element at index i, shifting later elements down.
func (a *Array) RemoveAt(i int) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	copy(a.items[i:], a.items[i+1:])
	a.items = a.items[:len(a.items)-1]
	return true
}

// Resize grows or shrinks the array; new slots from growth are zero-filled
// (value.None).
func (a *Array) Resize(size int) {
	if size < 0 {
		size = 0
	}
	if size <= len(a.items) {
		a.items = a.items[:size]
		return
	}
	grown := make([]value.Value, size)
	copy(grown, a.items)
	a.items = grown
}

func (a *Array) PushBack(v value.Value)  { a.items = append(a.items, v) }
func (a *Array) PushFront(v value.Value) { a.InsertAt(0, v) }

func (a *Array) PopBack() (value.Value, bool) {
	n := len(a.items)
	if n == 0 {
		return value.Value{}, false
	}
	v := a.items[n-1]
	a.items = a.items[:n-1]
	return v, true
}

func (a *Array) PopFront() (value.Value, bool) {
	if len(a.items) == 0 {
		return value.Value{}, false
	}
	v := a.items[0]
	a.RemoveAt(0)
	return v, true
}

func (a *Array) Equal(other value.Ref) bool {
	o, ok := other.(*Array)
	if !ok || len(a.items) != len(o.items) {
		return false
	}
	for i, v := range a.items {
		if !v.Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (a *Array) Hash() uint64 {
	h := value.NewHasher()
	h.WriteUint64(uint64(len(a.items)))
	for _, v := range a.items {
		h.WriteUint64(v.Hash())
	}
	return h.Sum()
}

func (a *Array) DeepCopy() value.Ref {
	items := make([]value.Value, len(a.items))
	for i, v := range a.items {
		items[i] = v.Copy()
	}
	return &Array{items: items}
}

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
