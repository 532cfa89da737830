// Package value implements sorth's tagged-sum runtime Value: the single
// type that flows across the data stack, variable slots, and container
// element slots.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the variant held by a Value. Ordering compares by Kind
// first, so the order below is also the Value total-order's primary key.
type Kind int

const (
	None Kind = iota
	Int
	Float
	Bool
	String
	ThreadID
	Structure
	Array
	HashTable
	ByteBuffer
	Token
	ByteCode
	kindMax
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case ThreadID:
		return "thread-id"
	case Structure:
		return "structure"
	case Array:
		return "array"
	case HashTable:
		return "hash-table"
	case ByteBuffer:
		return "byte-buffer"
	case Token:
		return "token"
	case ByteCode:
		return "byte-code"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Ref is implemented by the shared container payloads (structure, array,
// hash-table, byte-buffer). Deep copy, equality, and hashing all dispatch
// through this interface rather than switching on concrete container types,
// so internal/containers can add payload kinds without value.go caring.
type Ref interface {
	Equal(other Ref) bool
	Hash() uint64
	DeepCopy() Ref
	String() string
}

// Value is sorth's tagged-sum runtime value. The zero Value is None.
//
// Primitive variants (Int, Float, Bool, String, ThreadID, Token, ByteCode)
// are held directly; strings are immutable once observed per the data
// model, so copying a Value copies the Go string header cheaply. Container
// variants (Structure, Array, HashTable, ByteBuffer) hold a Ref to shared,
// mutable backing storage -- copying the Value does not copy the
// container; use Copy for that.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	ref  Ref
}

func None_() Value                { return Value{kind: None} }
func Int_(i int64) Value          { return Value{kind: Int, i: i} }
func Float_(f float64) Value      { return Value{kind: Float, f: f} }
func Bool_(b bool) Value          { return Value{kind: Bool, b: b} }
func String_(s string) Value      { return Value{kind: String, s: s} }
func ThreadID_(id int64) Value    { return Value{kind: ThreadID, i: id} }
func Token_(s string) Value       { return Value{kind: Token, s: s} }
func ByteCode_(tag string) Value  { return Value{kind: ByteCode, s: tag} }
func Ref_(k Kind, ref Ref) Value  { return Value{kind: k, ref: ref} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNone() bool { return v.kind == None }

func (v Value) AsInt() (int64, bool)   { return v.i, v.kind == Int }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == Float }
func (v Value) AsBool() (bool, bool)   { return v.b, v.kind == Bool }
func (v Value) AsString() (string, bool) {
	if v.kind == String || v.kind == Token || v.kind == ByteCode {
		return v.s, true
	}
	return "", false
}
func (v Value) AsThreadID() (int64, bool) { return v.i, v.kind == ThreadID }
func (v Value) AsRef() (Ref, bool)        { return v.ref, v.ref != nil }

// IsNumeric reports whether v is an Int or a Float, the two kinds accepted
// by arithmetic built-ins.
func (v Value) IsNumeric() bool { return v.kind == Int || v.kind == Float }

// AsFloat64 widens an Int or Float value to float64, for mixed arithmetic.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Truthy implements sorth's boolean coercion for conditional opcodes: zero
// integer, zero float, false, empty string, and None are false; everything
// else (including any container reference) is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case None:
		return false
	case Int, ThreadID:
		return v.i != 0
	case Float:
		return v.f != 0
	case Bool:
		return v.b
	case String, Token, ByteCode:
		return v.s != ""
	default:
		return v.ref != nil
	}
}

// Copy deep-copies v: container refs are replaced with DeepCopy()-ed
// payloads, primitives (including strings, which are immutable once
// observed) are copied by value.
func (v Value) Copy() Value {
	if v.ref != nil {
		cp := v
		cp.ref = v.ref.DeepCopy()
		return cp
	}
	return v
}

// Compare implements the Value total order: first by Kind, then by
// contained value. Floats use a strong total order (NaN sorts as greater
// than all other floats, including +Inf, and equal to itself) -- a
// deterministic choice for NaN ordering.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case None:
		return 0
	case Int:
		return compareInt64(v.i, o.i)
	case Float:
		return compareFloatStrong(v.f, o.f)
	case Bool:
		return compareBool(v.b, o.b)
	case String, Token, ByteCode:
		if v.s < o.s {
			return -1
		} else if v.s > o.s {
			return 1
		}
		return 0
	case ThreadID:
		return compareInt64(v.i, o.i)
	default:
		return compareRef(v.ref, o.ref)
	}
}

func compareRef(a, b Ref) int {
	if a == nil && b == nil {
		return 0
	}
	if a.Equal(b) {
		return 0
	}
	// Containers have no inherent ordering beyond equality; break ties
	// deterministically via their printed form so Compare remains total.
	as, bs := a.String(), b.String()
	if as < bs {
		return -1
	}
	return 1
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// compareFloatStrong gives IEEE-754 floats (including NaN) a total order:
// -Inf < ... < -0 < +0 < ... < +Inf < NaN, with NaN == NaN.
func compareFloatStrong(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		// distinguish -0 from +0 for a total (not just partial) order
		as, bs := math.Signbit(a), math.Signbit(b)
		if as == bs {
			return 0
		} else if as {
			return -1
		}
		return 1
	}
}

// Equal is structural equality: containers compare equal iff all elements
// compare equal in order (delegated to the Ref's Equal).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case None:
		return true
	case Int, ThreadID:
		return v.i == o.i
	case Float:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case Bool:
		return v.b == o.b
	case String, Token, ByteCode:
		return v.s == o.s
	default:
		if v.ref == nil || o.ref == nil {
			return v.ref == o.ref
		}
		return v.ref.Equal(o.ref)
	}
}

// String renders v the way built-in "." and to_string render it: numbers in
// their usual decimal form, strings without quoting, containers via their
// own String().
func (v Value) String() string {
	switch v.kind {
	case None:
		return "none"
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%g", v.f)
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case String, Token:
		return v.s
	case ByteCode:
		return "<byte-code " + v.s + ">"
	case ThreadID:
		return fmt.Sprintf("thread#%d", v.i)
	default:
		if v.ref == nil {
			return "<nil " + v.kind.String() + ">"
		}
		return v.ref.String()
	}
}
