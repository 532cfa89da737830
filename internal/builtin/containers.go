package builtin

import (
	"github.com/cstrainge/sorth/internal/containers"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

func popArray(m *vm.Machine) (*containers.Array, error) {
	v, err := m.Pop()
	if err != nil {
		return nil, err
	}
	ref, ok := v.AsRef()
	if !ok {
		return nil, typeMismatch(m, "array")
	}
	a, ok := ref.(*containers.Array)
	if !ok {
		return nil, typeMismatch(m, "array")
	}
	return a, nil
}

func popHash(m *vm.Machine) (*containers.HashTable, error) {
	v, err := m.Pop()
	if err != nil {
		return nil, err
	}
	ref, ok := v.AsRef()
	if !ok {
		return nil, typeMismatch(m, "hash-table")
	}
	t, ok := ref.(*containers.HashTable)
	if !ok {
		return nil, typeMismatch(m, "hash-table")
	}
	return t, nil
}

func popBuffer(m *vm.Machine) (*containers.ByteBuffer, error) {
	v, err := m.Pop()
	if err != nil {
		return nil, err
	}
	ref, ok := v.AsRef()
	if !ok {
		return nil, typeMismatch(m, "byte-buffer")
	}
	b, ok := ref.(*containers.ByteBuffer)
	if !ok {
		return nil, typeMismatch(m, "byte-buffer")
	}
	return b, nil
}

func registerContainers(it *interp.Interpreter) {
	registerArrayWords(it)
	registerHashWords(it)
	registerBufferWords(it)
}

// --- array ---------------------------------------------------------------

func registerArrayWords(it *interp.Interpreter) {
	def(it, "array.new", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		m.Push(value.Ref_(value.Array, containers.NewArray(int(n))))
		return nil
	})

	def(it, "array.size@", func(m *vm.Machine) error {
		a, err := popArray(m)
		if err != nil {
			return err
		}
		m.Push(value.Int_(int64(a.Len())))
		return nil
	})

	def(it, "array.@", func(m *vm.Machine) error {
		i, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, ok := a.Get(int(i))
		if !ok {
			return typeMismatch(m, "in-bounds array index")
		}
		m.Push(v)
		return nil
	})

	def(it, "array.!", func(m *vm.Machine) error {
		i, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if !a.Set(int(i), v) {
			return typeMismatch(m, "in-bounds array index")
		}
		return nil
	})

	def(it, "array.push-back!", func(m *vm.Machine) error {
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		a.PushBack(v)
		return nil
	})

	def(it, "array.push-front!", func(m *vm.Machine) error {
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		a.PushFront(v)
		return nil
	})

	def(it, "array.pop-back!", func(m *vm.Machine) error {
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, ok := a.PopBack()
		if !ok {
			return typeMismatch(m, "non-empty array")
		}
		m.Push(v)
		return nil
	})

	def(it, "array.pop-front!", func(m *vm.Machine) error {
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, ok := a.PopFront()
		if !ok {
			return typeMismatch(m, "non-empty array")
		}
		m.Push(v)
		return nil
	})

	def(it, "array.insert!", func(m *vm.Machine) error {
		i, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popArray(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if !a.InsertAt(int(i), v) {
			return typeMismatch(m, "in-bounds array index")
		}
		return nil
	})

	def(it, "array.remove!", func(m *vm.Machine) error {
		i, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popArray(m)
		if err != nil {
			return err
		}
		if !a.RemoveAt(int(i)) {
			return typeMismatch(m, "in-bounds array index")
		}
		return nil
	})

	def(it, "array.resize!", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		a, err := popArray(m)
		if err != nil {
			return err
		}
		a.Resize(int(n))
		return nil
	})
}

// --- hash ------------------------------------------------------------------

func registerHashWords(it *interp.Interpreter) {
	def(it, "hash.new", func(m *vm.Machine) error {
		m.Push(value.Ref_(value.HashTable, containers.NewHashTable()))
		return nil
	})

	def(it, "hash.size@", func(m *vm.Machine) error {
		t, err := popHash(m)
		if err != nil {
			return err
		}
		m.Push(value.Int_(int64(t.Len())))
		return nil
	})

	def(it, "hash.@", func(m *vm.Machine) error {
		key, err := m.Pop()
		if err != nil {
			return err
		}
		t, err := popHash(m)
		if err != nil {
			return err
		}
		v, ok := t.Get(key)
		if !ok {
			return typeMismatch(m, "existing hash key")
		}
		m.Push(v)
		return nil
	})

	def(it, "hash.!", func(m *vm.Machine) error {
		key, err := m.Pop()
		if err != nil {
			return err
		}
		t, err := popHash(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		t.Set(key, v)
		return nil
	})

	def(it, "hash.exists?", func(m *vm.Machine) error {
		key, err := m.Pop()
		if err != nil {
			return err
		}
		t, err := popHash(m)
		if err != nil {
			return err
		}
		m.Push(value.Bool_(t.Exists(key)))
		return nil
	})

	def(it, "hash.delete!", func(m *vm.Machine) error {
		key, err := m.Pop()
		if err != nil {
			return err
		}
		t, err := popHash(m)
		if err != nil {
			return err
		}
		m.Push(value.Bool_(t.Delete(key)))
		return nil
	})
}

// --- byte-buffer -------------------------------------------------------

func registerBufferWords(it *interp.Interpreter) {
	def(it, "buffer.new", func(m *vm.Machine) error {
		n, err := popInt(m)
		if err != nil {
			return err
		}
		m.Push(value.Ref_(value.ByteBuffer, containers.NewByteBuffer(int(n))))
		return nil
	})

	def(it, "buffer.size@", func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		m.Push(value.Int_(int64(b.Size())))
		return nil
	})

	def(it, "buffer.position@", func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		m.Push(value.Int_(int64(b.Position())))
		return nil
	})

	def(it, "buffer.position!", func(m *vm.Machine) error {
		pos, err := popInt(m)
		if err != nil {
			return err
		}
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		return b.SetPosition(int(pos))
	})

	def(it, "buffer.sub-buffer", func(m *vm.Machine) error {
		size, err := popInt(m)
		if err != nil {
			return err
		}
		offset, err := popInt(m)
		if err != nil {
			return err
		}
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		sub, err := b.SubBuffer(int(offset), int(size))
		if err != nil {
			return err
		}
		m.Push(value.Ref_(value.ByteBuffer, sub))
		return nil
	})

	defWriteInt(it, "buffer.write.int8", 1)
	defWriteInt(it, "buffer.write.int16", 2)
	defWriteInt(it, "buffer.write.int32", 4)
	defWriteInt(it, "buffer.write.int64", 8)

	defReadInt(it, "buffer.read.int8", 1)
	defReadInt(it, "buffer.read.int16", 2)
	defReadInt(it, "buffer.read.int32", 4)
	defReadInt(it, "buffer.read.int64", 8)

	defWriteFloat(it, "buffer.write.float32", 4)
	defWriteFloat(it, "buffer.write.float64", 8)

	defReadFloat(it, "buffer.read.float32", 4)
	defReadFloat(it, "buffer.read.float64", 8)

	def(it, "buffer.string!", func(m *vm.Machine) error {
		maxSize, err := popInt(m)
		if err != nil {
			return err
		}
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return typeMismatch(m, "string")
		}
		return b.WriteString(int(maxSize), s)
	})

	def(it, "buffer.string@", func(m *vm.Machine) error {
		maxSize, err := popInt(m)
		if err != nil {
			return err
		}
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		s, err := b.ReadString(int(maxSize))
		if err != nil {
			return err
		}
		m.Push(value.String_(s))
		return nil
	})
}

func defWriteInt(it *interp.Interpreter, name string, width int) {
	def(it, name, func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		n, ok := v.AsInt()
		if !ok {
			return typeMismatch(m, "int")
		}
		return b.WriteInt(width, n)
	})
}

func defReadInt(it *interp.Interpreter, name string, width int) {
	def(it, name, func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		n, err := b.ReadInt(width, true)
		if err != nil {
			return err
		}
		m.Push(value.Int_(n))
		return nil
	})
}

func defWriteFloat(it *interp.Interpreter, name string, width int) {
	def(it, name, func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		f, ok := v.AsFloat64()
		if !ok {
			return typeMismatch(m, "float")
		}
		return b.WriteFloat(width, f)
	})
}

func defReadFloat(it *interp.Interpreter, name string, width int) {
	def(it, name, func(m *vm.Machine) error {
		b, err := popBuffer(m)
		if err != nil {
			return err
		}
		f, err := b.ReadFloat(width)
		if err != nil {
			return err
		}
		m.Push(value.Float_(f))
		return nil
	})
}
