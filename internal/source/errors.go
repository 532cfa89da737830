package source

import "fmt"

// ParseError is a located tokenizer failure: unterminated string, unexpected
// newline in a single-line string, escape out of range.
type ParseError struct {
	Location Location
	Reason   string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%v: Error: %s", e.Location, e.Reason)
}

func parseErr(loc Location, format string, args ...interface{}) error {
	return ParseError{Location: loc, Reason: fmt.Sprintf(format, args...)}
}
