package vm

import "github.com/cstrainge/sorth/internal/dictionary"

// dictionaryWordFor builds an ordinary run-time/internal Word binding for a
// handler installed directly by the VM (def_variable/def_constant), which
// have no richer description/signature metadata available to them.
func dictionaryWordFor(name string, handlerIndex int) dictionary.Word {
	return dictionary.Word{
		Name:         name,
		Context:      dictionary.RunTime,
		Type:         dictionary.Internal,
		HandlerIndex: handlerIndex,
	}
}

// DefineWord is a convenience for callers (the compiler, builtins) that
// want to both register a handler and bind a dictionary name in one step.
func (m *Machine) DefineWord(w dictionary.Word, h Handler) int {
	idx := m.Handlers.Append(h)
	w.HandlerIndex = idx
	m.Dict.Insert(w.Name, w)
	return idx
}
