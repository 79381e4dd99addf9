package format

import "strings"

// FormatLine formats one line of Vic assembly. Instruction lines get one
// indentation level; labels, comment-only and blank lines get none. Inner
// whitespace collapses to single spaces.
//
// FormatLine is pure and safe for concurrent use. opt must satisfy
// Options.Validate when InsertSpaces is set.
func FormatLine(line string, opt Options) string {
	return Render(ParseLine(line), opt)
}

// Render reassembles tokenized parts under opt.
func Render(p LineParts, opt Options) string {
	w := newLineWriter(estimateLen(p, opt))
	if Classify(p) == KindInstruction {
		w.writeIndent(opt)
	}
	for _, word := range p.Words {
		w.writeWord(word)
	}
	w.writeComment(p.Comment)
	return w.String()
}

// FormatBinLine formats one line of a binary listing: surrounding whitespace
// is removed and nothing else changes.
func FormatBinLine(line string) string {
	return strings.TrimSpace(line)
}

func estimateLen(p LineParts, opt Options) int {
	n := max(opt.TabSize, 1)
	for _, word := range p.Words {
		n += len(word) + 1
	}
	if p.Comment.Present {
		n += len(CommentMarker) + len(p.Comment.Text) + 1
	}
	return n
}
