package format

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTabSize is returned by Options.Validate for a non-positive TabSize.
var ErrInvalidTabSize = errors.New("format: tab size must be positive")

// Options controls indentation of instruction lines.
type Options struct {
	// TabSize is the number of spaces per indent level when InsertSpaces is set.
	TabSize int
	// InsertSpaces selects TabSize spaces over a single tab character.
	InsertSpaces bool
}

// DefaultOptions returns four-space indentation.
func DefaultOptions() Options {
	return Options{TabSize: 4, InsertSpaces: true}
}

// Validate checks the TabSize precondition. Entry points that accept options
// from users call it before formatting anything.
func (o Options) Validate() error {
	if o.TabSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidTabSize, o.TabSize)
	}
	return nil
}

// Indent renders one indentation level. With InsertSpaces unset the result is
// a tab regardless of TabSize. With InsertSpaces set, TabSize must be positive;
// a non-positive value is a caller bug and panics.
func Indent(opt Options) string {
	if !opt.InsertSpaces {
		return "\t"
	}
	if opt.TabSize <= 0 {
		panic(fmt.Sprintf("format: Indent called with TabSize %d", opt.TabSize))
	}
	return strings.Repeat(" ", opt.TabSize)
}
