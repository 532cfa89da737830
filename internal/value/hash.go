package value

import (
	"hash/fnv"
	"math"
)

// mixConstant folds child hashes into a container hash: a container's hash
// is the fold of its element hashes with this mixing constant. No example
// repo in the retrieval pack ships a structural hashing library (gothird's
// own `symbols` type interns strings to small integers for the dictionary,
// not for hashing arbitrary containers), so this stays on hash/fnv from the
// standard library -- see DESIGN.md.
const mixConstant = 0x9e3779b97f4a7c15

// Hasher accumulates a structural hash across a Value and any Refs it
// reaches. Consistent with Equal: structurally equal values produce equal
// hashes.
type Hasher struct {
	h uint64
}

// NewHasher returns a Hasher seeded with an FNV-1a offset basis.
func NewHasher() *Hasher {
	return &Hasher{h: fnvOffset}
}

const fnvOffset = 14695981039346656037

func (h *Hasher) mix(x uint64) {
	h.h ^= x
	h.h *= mixConstant
}

func (h *Hasher) Sum() uint64 { return h.h }

// WriteString folds a string's FNV-1a hash into the accumulator.
func (h *Hasher) WriteString(s string) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(s))
	h.mix(f.Sum64())
}

func (h *Hasher) WriteUint64(x uint64) { h.mix(x) }

// Hash computes a structural hash of v, consistent with v.Equal: equal
// values (including deep-equal containers) hash equal.
func (v Value) Hash() uint64 {
	h := NewHasher()
	v.hashInto(h)
	return h.Sum()
}

func (v Value) hashInto(h *Hasher) {
	h.WriteUint64(uint64(v.kind))
	switch v.kind {
	case None:
	case Int, ThreadID:
		h.WriteUint64(uint64(v.i))
	case Float:
		if math.IsNaN(v.f) {
			// Equal treats every NaN as equal to every other NaN, so their
			// hashes must agree too regardless of sign/payload bits.
			h.WriteUint64(math.Float64bits(math.NaN()))
		} else if v.f == 0 {
			// Equal treats -0 and +0 as equal, so both hash as +0.
			h.WriteUint64(0)
		} else {
			h.WriteUint64(math.Float64bits(v.f))
		}
	case Bool:
		if v.b {
			h.WriteUint64(1)
		} else {
			h.WriteUint64(0)
		}
	case String, Token, ByteCode:
		h.WriteString(v.s)
	default:
		if v.ref != nil {
			h.WriteUint64(v.ref.Hash())
		}
	}
}
