package containers

import (
	"strings"

	"github.com/cstrainge/sorth/internal/value"
)

// Definition is a DataObjectDefinition: the named, ordered field list (and
// parallel default values) that `#` registers and that every instance of
// the type points back to.
type Definition struct {
	Name     string
	Hidden   bool
	Fields   []string
	Defaults []value.Value
}

func NewDefinition(name string, hidden bool, fields []string, defaults []value.Value) *Definition {
	return &Definition{Name: name, Hidden: hidden, Fields: fields, Defaults: defaults}
}

func (d *Definition) FieldIndex(name string) (int, bool) {
	for i, f := range d.Fields {
		if f == name {
			return i, true
		}
	}
	return -1, false
}

// New constructs a fresh instance of this definition: a parallel vector of
// field values initialized from defaults, deep-copied at construction.
func (d *Definition) New() *DataObject {
	fields := make([]value.Value, len(d.Defaults))
	for i, v := range d.Defaults {
		fields[i] = v.Copy()
	}
	return &DataObject{def: d, fields: fields}
}

// DataObject is an instance of a Definition: a shared reference to its
// definition plus a parallel vector of field values.
type DataObject struct {
	def    *Definition
	fields []value.Value
}

func (o *DataObject) Definition() *Definition { return o.def }

func (o *DataObject) Get(i int) (value.Value, bool) {
	if i < 0 || i >= len(o.fields) {
		return value.Value{}, false
	}
	return o.fields[i], true
}

func (o *DataObject) Set(i int, v value.Value) bool {
	if i < 0 || i >= len(o.fields) {
		return false
	}
	o.fields[i] = v
	return true
}

// Each iterates (field-name, value) pairs in field-declaration order, the
// basis for the `#.iterate` built-in.
func (o *DataObject) Each(f func(name string, v value.Value)) {
	for i, name := range o.def.Fields {
		f(name, o.fields[i])
	}
}

func (o *DataObject) Equal(other value.Ref) bool {
	oo, ok := other.(*DataObject)
	if !ok || o.def != oo.def || len(o.fields) != len(oo.fields) {
		return false
	}
	for i, v := range o.fields {
		if !v.Equal(oo.fields[i]) {
			return false
		}
	}
	return true
}

func (o *DataObject) Hash() uint64 {
	h := value.NewHasher()
	h.WriteString(o.def.Name)
	for _, v := range o.fields {
		h.WriteUint64(v.Hash())
	}
	return h.Sum()
}

func (o *DataObject) DeepCopy() value.Ref {
	fields := make([]value.Value, len(o.fields))
	for i, v := range o.fields {
		fields[i] = v.Copy()
	}
	return &DataObject{def: o.def, fields: fields}
}

func (o *DataObject) String() string {
	var sb strings.Builder
	sb.WriteString(o.def.Name)
	sb.WriteByte('{')
	for i, name := range o.def.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(o.fields[i].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
