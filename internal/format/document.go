package format

import (
	"fmt"

	"fortio.org/safecast"

	"vic/internal/dialect"
	"vic/internal/edit"
	"vic/internal/source"
)

// LineFormatter formats a single line without its terminator.
type LineFormatter func(line string) string

// FormatterFor returns the line formatter for dialect k. Asm requires valid options.
func FormatterFor(k dialect.Kind, opt Options) (LineFormatter, error) {
	switch k {
	case dialect.Bin:
		return FormatBinLine, nil
	case dialect.Asm:
		if err := opt.Validate(); err != nil {
			return nil, err
		}
		return func(line string) string { return FormatLine(line, opt) }, nil
	default:
		return nil, fmt.Errorf("format: no formatter for dialect %s", k)
	}
}

// LineEdits formats lines first..last (1-based, inclusive) of sf and returns
// one edit per line whose formatted text differs, covering that line's full
// column range. The range is clamped to the file; last <= 0 means the last line.
func LineEdits(sf *source.File, fn LineFormatter, first, last int) []edit.TextEdit {
	if sf == nil || fn == nil {
		return nil
	}
	total := sf.LineCount()
	if last <= 0 || last > total {
		last = total
	}
	first = max(first, 1)

	var edits []edit.TextEdit
	for n := first; n <= last; n++ {
		lineNum, err := safecast.Conv[uint32](n)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		sp, ok := sf.LineSpan(lineNum)
		if !ok {
			break
		}
		original := string(sf.Content[sp.Start:sp.End])
		formatted := fn(original)
		if formatted == original {
			continue
		}
		edits = append(edits, edit.TextEdit{
			Span:    sp,
			Line:    lineNum,
			NewText: formatted,
			OldText: original,
		})
	}
	return edits
}

// Document formats every line of sf and returns the new content along with
// the edits that produced it.
func Document(sf *source.File, fn LineFormatter) ([]byte, []edit.TextEdit, error) {
	edits := LineEdits(sf, fn, 1, 0)
	out, err := edit.Apply(sf.Content, edits)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", sf.Path, err)
	}
	return out, edits, nil
}
