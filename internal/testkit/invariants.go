// Package testkit holds invariant checks shared by tests of several packages.
package testkit

import (
	"fmt"
	"slices"
	"strings"

	"vic/internal/format"
)

// CheckLineInvariants runs the formatter contracts on a single input line:
// 1) both formatters are idempotent
// 2) words and comment survive formatting unchanged
// 3) only instruction lines start with indentation, and it is exactly one level
// 4) output never ends with whitespace
func CheckLineInvariants(line string, opt format.Options) error {
	once := format.FormatLine(line, opt)
	if twice := format.FormatLine(once, opt); twice != once {
		return fmt.Errorf("FormatLine not idempotent for %q: %q then %q", line, once, twice)
	}
	binOnce := format.FormatBinLine(line)
	if binTwice := format.FormatBinLine(binOnce); binTwice != binOnce {
		return fmt.Errorf("FormatBinLine not idempotent for %q: %q then %q", line, binOnce, binTwice)
	}

	in := format.ParseLine(line)
	out := format.ParseLine(once)
	if !slices.Equal(in.Words, out.Words) {
		return fmt.Errorf("words changed for %q: %q -> %q", line, in.Words, out.Words)
	}
	if in.Comment != out.Comment {
		return fmt.Errorf("comment changed for %q: %+v -> %+v", line, in.Comment, out.Comment)
	}

	indent := format.Indent(opt)
	kind := format.Classify(in)
	switch {
	case kind == format.KindInstruction:
		if !strings.HasPrefix(once, indent) {
			return fmt.Errorf("instruction %q not indented: %q", line, once)
		}
		rest := strings.TrimPrefix(once, indent)
		if rest != strings.TrimLeft(rest, " \t") {
			return fmt.Errorf("instruction %q over-indented: %q", line, once)
		}
	case once != strings.TrimLeft(once, " \t"):
		return fmt.Errorf("%s line %q indented: %q", kind, line, once)
	}

	if once != strings.TrimRight(once, " \t") {
		return fmt.Errorf("trailing whitespace for %q: %q", line, once)
	}
	return nil
}
