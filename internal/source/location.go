// Package source implements sorth's character-stream tokenizer: a
// Buffer with line/column tracking (grounded on
// jcorbin-gothird/internal/fileinput's Input, generalized to also track
// column, which gothird's own FIRST/THIRD tokenizer never needed since it
// only ever dealt with single space-delimited words) and the Tokenizer
// that turns that stream into {number, string, word} tokens.
package source

import "fmt"

// Location names a single point in a source, for diagnostics formatted as
// "<path>:<line>:<column>: Error: ...".
type Location struct {
	Path   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}
