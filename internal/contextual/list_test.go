package contextual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextBalance exercises testable property 1: for any
// source that runs to completion, mark_context/release_context effects
// balance at every layer sharing this List.
func TestContextBalance(t *testing.T) {
	var l List[int]
	assert.Equal(t, 0, l.Depth())

	l.Append(1)
	l.Mark()
	l.Append(2)
	l.Append(3)
	assert.Equal(t, 1, l.Depth())
	assert.Equal(t, 3, l.Len())

	l.Mark()
	l.Append(4)
	assert.Equal(t, 2, l.Depth())

	l.Release()
	assert.Equal(t, 1, l.Depth())
	assert.Equal(t, 3, l.Len())

	l.Release()
	assert.Equal(t, 0, l.Depth())
	assert.Equal(t, 1, l.Len())

	v, ok := l.At(0)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

// TestReleaseTruncatesLiveIndices confirms an index released by one scope
// becomes inaccessible, and that the next Append lands on the truncated
// slot and is handed that same index again.
func TestReleaseTruncatesLiveIndices(t *testing.T) {
	var l List[string]
	l.Mark()
	i := l.Append("scoped")
	l.Release()

	_, ok := l.At(i)
	assert.False(t, ok)

	j := l.Append("base")
	assert.Equal(t, i, j, "new append should reuse the truncated slot's index")

	v, ok := l.At(j)
	assert.True(t, ok)
	assert.Equal(t, "base", v)
}

func TestMarkBase(t *testing.T) {
	var l List[int]
	assert.Equal(t, 0, l.MarkBase())
	l.Append(1)
	l.Append(2)
	l.Mark()
	assert.Equal(t, 2, l.MarkBase())
	l.Append(3)
	assert.Equal(t, 2, l.MarkBase())
}
