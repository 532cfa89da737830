package containers

import (
	"sort"
	"strings"

	"github.com/cstrainge/sorth/internal/value"
)

// HashTable maps Value to Value. Value is not a comparable Go type once
// containers are involved (Ref is an interface over slices/maps), so
// buckets are kept by structural hash with a linear equality scan inside
// each bucket -- the same "hash then confirm with Equal" shape as a
// textbook chained hash map, sized to sorth's actual key space.
type HashTable struct {
	buckets map[uint64][]hashEntry
	size    int
}

type hashEntry struct {
	key value.Value
	val value.Value
}

func NewHashTable() *HashTable {
	return &HashTable{buckets: make(map[uint64][]hashEntry)}
}

func (t *HashTable) Len() int { return t.size }

func (t *HashTable) Get(key value.Value) (value.Value, bool) {
	h := key.Hash()
	for _, e := range t.buckets[h] {
		if e.key.Equal(key) {
			return e.val, true
		}
	}
	return value.Value{}, false
}

func (t *HashTable) Exists(key value.Value) bool {
	_, ok := t.Get(key)
	return ok
}

func (t *HashTable) Set(key, val value.Value) {
	h := key.Hash()
	bucket := t.buckets[h]
	for i, e := range bucket {
		if e.key.Equal(key) {
			bucket[i].val = val
			return
		}
	}
	t.buckets[h] = append(bucket, hashEntry{key, val})
	t.size++
}

func (t *HashTable) Delete(key value.Value) bool {
	h := key.Hash()
	bucket := t.buckets[h]
	for i, e := range bucket {
		if e.key.Equal(key) {
			t.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			t.size--
			return true
		}
	}
	return false
}

// Each iterates all entries in an unspecified but stable-within-a-run
// order (sorted by the key's printed form, so output is reproducible for
// tests and "words"-style dumps).
func (t *HashTable) Each(f func(key, val value.Value)) {
	type kv struct {
		k, v value.Value
		s    string
	}
	var all []kv
	for _, bucket := range t.buckets {
		for _, e := range bucket {
			all = append(all, kv{e.key, e.val, e.key.String()})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].s < all[j].s })
	for _, e := range all {
		f(e.k, e.v)
	}
}

func (t *HashTable) Equal(other value.Ref) bool {
	o, ok := other.(*HashTable)
	if !ok || t.size != o.size {
		return false
	}
	eq := true
	t.Each(func(k, v value.Value) {
		if !eq {
			return
		}
		ov, found := o.Get(k)
		if !found || !ov.Equal(v) {
			eq = false
		}
	})
	return eq
}

func (t *HashTable) Hash() uint64 {
	// Order-independent: XOR each entry's folded hash so structurally
	// equal tables (keys inserted in any order) hash equal.
	var acc uint64
	t.Each(func(k, v value.Value) {
		h := value.NewHasher()
		h.WriteUint64(k.Hash())
		h.WriteUint64(v.Hash())
		acc ^= h.Sum()
	})
	return acc
}

func (t *HashTable) DeepCopy() value.Ref {
	cp := NewHashTable()
	t.Each(func(k, v value.Value) { cp.Set(k.Copy(), v.Copy()) })
	return cp
}

func (t *HashTable) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	t.Each(func(k, v value.Value) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k.String())
		sb.WriteString(": ")
		sb.WriteString(v.String())
	})
	sb.WriteByte('}')
	return sb.String()
}
