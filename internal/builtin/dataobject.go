package builtin

import (
	"fmt"

	"github.com/cstrainge/sorth/internal/containers"
	"github.com/cstrainge/sorth/internal/dictionary"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/source"
	"github.com/cstrainge/sorth/internal/value"
	"github.com/cstrainge/sorth/internal/vm"
)

func popStructure(m *vm.Machine) (*containers.DataObject, error) {
	v, err := m.Pop()
	if err != nil {
		return nil, err
	}
	ref, ok := v.AsRef()
	if !ok {
		return nil, typeMismatch(m, "structure")
	}
	o, ok := ref.(*containers.DataObject)
	if !ok {
		return nil, typeMismatch(m, "structure")
	}
	return o, nil
}

// registerDataObject wires the `#` data-definition syntax and the
// primitive-level field accessors it's built on.
//
// Grounded on original_source's structure-words.cpp (word_data_definition,
// word_read_field/word_write_field, word_structure_iterate/
// word_structure_field_exists/word_structure_compare) and data_object.cpp's
// create_data_definition_words, which generates the per-field accessor
// words this registers. That C++ builds the definition from values
// already sitting on the stack, having been parsed by a script-level
// front end we don't have in the pack; here `#` does its own token
// scanning directly, since there's no bootstrap script to lean on.
func registerDataObject(it *interp.Interpreter) {
	defImmediate(it, "#", func(m *vm.Machine) error {
		cc, err := mustCtx(m)
		if err != nil {
			return err
		}

		nameTok, ok, err := cc.GetNextToken()
		if err != nil {
			return err
		}
		if !ok || nameTok.Type != source.Word {
			return fmt.Errorf("%v: Error: expected a structure name after '#'", cc.Location())
		}

		var fields []string
		var defaults []value.Value

		for {
			t, ok, err := cc.GetNextToken()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%v: Error: unterminated structure definition", cc.Location())
			}
			if t.Type == source.Word && t.Text == ";" {
				break
			}
			if t.Type != source.Word {
				return fmt.Errorf("%v: Error: expected a field name, got %q", t.Location, t.Text)
			}
			fields = append(fields, t.Text)

			// A field name may be followed by a literal default value
			// (number or string); anything else is pushed back for the
			// next field/terminator.
			dt, ok, err := cc.GetNextToken()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%v: Error: unterminated structure definition", cc.Location())
			}
			switch dt.Type {
			case source.Number:
				v, err := source.ParseNumber(dt.Text)
				if err != nil {
					return err
				}
				defaults = append(defaults, v)
			case source.String:
				defaults = append(defaults, value.String_(dt.Text))
			default:
				defaults = append(defaults, value.None_())
				cc.PushBackToken(dt)
			}
		}

		hidden := false
		if t, ok, err := cc.GetNextToken(); err != nil {
			return err
		} else if ok && t.Type == source.Word && t.Text == "hidden" {
			hidden = true
		} else if ok {
			cc.PushBackToken(t)
		}

		def := containers.NewDefinition(nameTok.Text, hidden, fields, defaults)
		m.Definitions.Append(def)

		vis := dictionary.Visible
		if hidden {
			vis = dictionary.HiddenWord
		}

		m.DefineWord(dictionary.Word{
			Name: def.Name + ".new", Context: dictionary.RunTime, Type: dictionary.Internal,
			Visibility: vis, Description: "Create a new instance of " + def.Name + ".",
			Signature: " -- " + def.Name,
		}, vm.Handler{
			Name: def.Name + ".new",
			Native: func(m *vm.Machine) error {
				m.Push(value.Ref_(value.Structure, def.New()))
				return nil
			},
		})

		for i, field := range fields {
			i := int64(i)
			base := def.Name + "." + field

			m.DefineWord(dictionary.Word{
				Name: base, Context: dictionary.RunTime, Type: dictionary.Internal, Visibility: vis,
				Description: "Index of structure field " + field + ".",
				Signature:   " -- field_index",
			}, vm.Handler{
				Name: base,
				Native: func(m *vm.Machine) error {
					m.Push(value.Int_(i))
					return nil
				},
			})

			m.DefineWord(dictionary.Word{
				Name: base + "!", Context: dictionary.RunTime, Type: dictionary.Internal, Visibility: vis,
				Description: "Write structure field " + field + ".",
				Signature:   "new_value structure -- ",
			}, vm.Handler{
				Name: base + "!",
				Native: func(m *vm.Machine) error {
					o, err := popStructure(m)
					if err != nil {
						return err
					}
					v, err := m.Pop()
					if err != nil {
						return err
					}
					o.Set(int(i), v)
					return nil
				},
			})

			m.DefineWord(dictionary.Word{
				Name: base + "@", Context: dictionary.RunTime, Type: dictionary.Internal, Visibility: vis,
				Description: "Read structure field " + field + ".",
				Signature:   "structure -- value",
			}, vm.Handler{
				Name: base + "@",
				Native: func(m *vm.Machine) error {
					o, err := popStructure(m)
					if err != nil {
						return err
					}
					v, _ := o.Get(int(i))
					m.Push(v)
					return nil
				},
			})

			m.DefineWord(dictionary.Word{
				Name: base + "!!", Context: dictionary.RunTime, Type: dictionary.Internal, Visibility: vis,
				Description: "Write structure field " + field + " via a variable slot.",
				Signature:   "new_value structure_var -- ",
			}, vm.Handler{
				Name: base + "!!",
				Native: func(m *vm.Machine) error {
					idx, err := popInt(m)
					if err != nil {
						return err
					}
					sv, ok := m.Variables.At(int(idx))
					if !ok {
						return typeMismatch(m, "valid variable index")
					}
					ref, ok := sv.AsRef()
					if !ok {
						return typeMismatch(m, "structure")
					}
					o, ok := ref.(*containers.DataObject)
					if !ok {
						return typeMismatch(m, "structure")
					}
					v, err := m.Pop()
					if err != nil {
						return err
					}
					o.Set(int(i), v)
					return nil
				},
			})

			m.DefineWord(dictionary.Word{
				Name: base + "@@", Context: dictionary.RunTime, Type: dictionary.Internal, Visibility: vis,
				Description: "Read structure field " + field + " via a variable slot.",
				Signature:   "structure_var -- value",
			}, vm.Handler{
				Name: base + "@@",
				Native: func(m *vm.Machine) error {
					idx, err := popInt(m)
					if err != nil {
						return err
					}
					sv, ok := m.Variables.At(int(idx))
					if !ok {
						return typeMismatch(m, "valid variable index")
					}
					ref, ok := sv.AsRef()
					if !ok {
						return typeMismatch(m, "structure")
					}
					o, ok := ref.(*containers.DataObject)
					if !ok {
						return typeMismatch(m, "structure")
					}
					v, _ := o.Get(int(i))
					m.Push(v)
					return nil
				},
			})
		}

		return nil
	})

	def(it, "#@", func(m *vm.Machine) error {
		o, err := popStructure(m)
		if err != nil {
			return err
		}
		idx, err := popInt(m)
		if err != nil {
			return err
		}
		v, ok := o.Get(int(idx))
		if !ok {
			return typeMismatch(m, "in-bounds field index")
		}
		m.Push(v)
		return nil
	})

	def(it, "#!", func(m *vm.Machine) error {
		o, err := popStructure(m)
		if err != nil {
			return err
		}
		idx, err := popInt(m)
		if err != nil {
			return err
		}
		v, err := m.Pop()
		if err != nil {
			return err
		}
		if !o.Set(int(idx), v) {
			return typeMismatch(m, "in-bounds field index")
		}
		return nil
	})

	def(it, "#.iterate", func(m *vm.Machine) error {
		o, err := popStructure(m)
		if err != nil {
			return err
		}
		idx, err := popInt(m)
		if err != nil {
			return err
		}
		var iterErr error
		o.Each(func(name string, v value.Value) {
			if iterErr != nil {
				return
			}
			m.Push(value.String_(name))
			m.Push(v)
			iterErr = m.CallHandlerIndex(int(idx))
		})
		return iterErr
	})

	def(it, "#.field-exists?", func(m *vm.Machine) error {
		o, err := popStructure(m)
		if err != nil {
			return err
		}
		name, err := m.Pop()
		if err != nil {
			return err
		}
		n, ok := name.AsString()
		if !ok {
			return typeMismatch(m, "string")
		}
		_, found := o.Definition().FieldIndex(n)
		m.Push(value.Bool_(found))
		return nil
	})

	def(it, "#.=", func(m *vm.Machine) error {
		a, err := popStructure(m)
		if err != nil {
			return err
		}
		b, err := popStructure(m)
		if err != nil {
			return err
		}
		m.Push(value.Bool_(a.Equal(b)))
		return nil
	})
}
