package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDictionaryScoping exercises testable property 4: after
// mark_context, redefining a word then release_context, the earlier
// binding is restored, and find returns the most recent binding.
func TestDictionaryScoping(t *testing.T) {
	d := New()
	assert.Equal(t, 1, d.Depth())

	d.Insert("foo", Word{HandlerIndex: 1})
	w, ok := d.Find("foo")
	assert.True(t, ok)
	assert.Equal(t, 1, w.HandlerIndex)

	d.MarkContext()
	d.Insert("foo", Word{HandlerIndex: 2})
	w, ok = d.Find("foo")
	assert.True(t, ok)
	assert.Equal(t, 2, w.HandlerIndex, "find returns the most recent (innermost) binding")

	d.ReleaseContext()
	w, ok = d.Find("foo")
	assert.True(t, ok)
	assert.Equal(t, 1, w.HandlerIndex, "the earlier binding is restored after release")
}

func TestDictionaryBaseScopeNeverReleased(t *testing.T) {
	d := New()
	d.Insert("foo", Word{HandlerIndex: 1})
	d.ReleaseContext()
	d.ReleaseContext()
	assert.Equal(t, 1, d.Depth())
	_, ok := d.Find("foo")
	assert.True(t, ok)
}

func TestDictionaryFindWalksInnermostOut(t *testing.T) {
	d := New()
	d.Insert("shared", Word{HandlerIndex: 10})
	d.MarkContext()
	assert.Equal(t, false, d.Exists("missing"))

	w, ok := d.Find("shared")
	assert.True(t, ok)
	assert.Equal(t, 10, w.HandlerIndex)

	d.Insert("only-inner", Word{HandlerIndex: 20})
	assert.True(t, d.Exists("only-inner"))
	d.ReleaseContext()
	assert.False(t, d.Exists("only-inner"), "inner-scope binding is gone after release")
}

func TestNameOf(t *testing.T) {
	d := New()
	d.Insert("w1", Word{HandlerIndex: 0})
	d.Insert("w2", Word{HandlerIndex: 1})
	name, ok := d.NameOf(1)
	assert.True(t, ok)
	assert.Equal(t, "w2", name)

	_, ok = d.NameOf(5)
	assert.False(t, ok)
}
