package source

// Buffer is a character stream over one source's text, tracking
// (line, column) as runes are consumed. Line and column are both 1-based.
type Buffer struct {
	path    string
	runes   []rune
	pos     int
	line    int
	column  int
}

// NewBuffer wraps text (already fully read, as process_source reads a
// whole script file before tokenizing) under the given path name, used for
// diagnostics.
func NewBuffer(path, text string) *Buffer {
	return &Buffer{path: path, runes: []rune(text), line: 1, column: 1}
}

func (b *Buffer) Path() string { return b.path }

// Location returns the current read position.
func (b *Buffer) Location() Location {
	return Location{Path: b.path, Line: b.line, Column: b.column}
}

// AtEOF reports whether the stream is exhausted.
func (b *Buffer) AtEOF() bool { return b.pos >= len(b.runes) }

// Peek returns the next rune without consuming it.
func (b *Buffer) Peek() (rune, bool) {
	if b.pos >= len(b.runes) {
		return 0, false
	}
	return b.runes[b.pos], true
}

// PeekAt returns the rune offset runes ahead of the cursor without
// consuming anything, used by the tokenizer to look past "*" for "*\"".
func (b *Buffer) PeekAt(offset int) (rune, bool) {
	i := b.pos + offset
	if i < 0 || i >= len(b.runes) {
		return 0, false
	}
	return b.runes[i], true
}

// Next consumes and returns the next rune, advancing line/column.
func (b *Buffer) Next() (rune, bool) {
	if b.pos >= len(b.runes) {
		return 0, false
	}
	r := b.runes[b.pos]
	b.pos++
	if r == '\n' {
		b.line++
		b.column = 1
	} else {
		b.column++
	}
	return r, true
}

// IsWhitespace reports whether r is sorth whitespace: space, tab, or
// newline.
func IsWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
