package builtin

import (
	"bytes"
	"testing"

	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTripValuePrint exercises testable property 2: for any
// value V not containing a float, parsing the text emitted by
// to_string(V) then executing yields an equal value.
func TestRoundTripValuePrint(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"int", "42"},
		{"negative_int", "-7"},
		{"bool_true", "true"},
		{"bool_false", "false"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			it := interp.New()
			Register(it)
			require.NoError(t, it.ProcessText(c.name, c.src))
			before := it.Machine.StackSnapshot()
			require.Len(t, before, 1)
			printed := before[0].String()

			it2 := interp.New()
			Register(it2)
			require.NoError(t, it2.ProcessText(c.name+"_roundtrip", printed))
			after := it2.Machine.StackSnapshot()
			require.Len(t, after, 1)

			assert.Equal(t, 0, before[0].Compare(after[0]), "round-tripped value must compare equal")
		})
	}
}

// TestVariableScopingInsideContextManagedWord exercises testable property
// 5: a variable declared inside a context-managed word is not visible (by
// name) after its word returns.
func TestVariableScopingInsideContextManagedWord(t *testing.T) {
	it := interp.New()
	Register(it)

	require.NoError(t, it.ProcessText("def", ": scoped variable x 9 x ! ;"))
	require.NoError(t, it.ProcessText("call", "scoped"))

	assert.False(t, it.Machine.Dict.Exists("x"), "x must not survive its defining word's return")

	err := it.ProcessText("use-after-scope", "x")
	assert.Error(t, err, "referencing the scoped variable afterward must fail")
	var unknown vm.UnknownWordError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "x", unknown.Name)
}

// TestVariableVisibleWhileWordRunning confirms the negative isn't true
// for a vacuous reason -- the variable genuinely exists and is usable
// while its defining word's context is still open.
func TestVariableVisibleWhileWordRunning(t *testing.T) {
	it := interp.New()
	Register(it)

	var out bytes.Buffer
	it.Machine.SetOutput(&out)

	require.NoError(t, it.ProcessText("def", ": scoped variable x 9 x ! x @ . ;"))
	require.NoError(t, it.ProcessText("call", "scoped"))
	assert.Equal(t, "9", out.String())
}
