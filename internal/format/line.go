package format

import (
	"strings"
	"unicode"
)

const (
	// CommentMarker starts a trailing comment. There is no escape for it.
	CommentMarker = "//"
	// LabelSuffix terminates a label word.
	LabelSuffix = ":"
)

// Comment is the optional trailing comment of a line. Present distinguishes
// "no marker" from a marker followed by nothing.
type Comment struct {
	Text    string // after the marker, trailing whitespace removed
	Present bool
}

// String renders the comment with its marker, or "" when absent.
func (c Comment) String() string {
	if !c.Present {
		return ""
	}
	return CommentMarker + c.Text
}

// LineParts is a tokenized source line.
type LineParts struct {
	Words   []string
	Comment Comment
}

// LineKind classifies a tokenized line for indentation purposes.
type LineKind uint8

const (
	KindBlank LineKind = iota
	KindComment
	KindLabel
	KindInstruction
)

func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindLabel:
		return "label"
	case KindInstruction:
		return "instruction"
	default:
		return "unknown"
	}
}

// SplitComment cuts line at the first comment marker. The prefix is returned
// untrimmed; the comment keeps its leading whitespace and loses trailing whitespace.
func SplitComment(line string) (prefix string, c Comment) {
	before, after, found := strings.Cut(line, CommentMarker)
	if !found {
		return line, Comment{}
	}
	return before, Comment{
		Text:    strings.TrimRightFunc(after, unicode.IsSpace),
		Present: true,
	}
}

// Words splits s into maximal runs of non-whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// ParseLine tokenizes a raw line into words and an optional comment.
func ParseLine(line string) LineParts {
	prefix, c := SplitComment(line)
	return LineParts{Words: Words(prefix), Comment: c}
}

// Classify inspects only the last word: a trailing ':' makes the line a label
// even when other words precede it.
func Classify(p LineParts) LineKind {
	if len(p.Words) == 0 {
		if p.Comment.Present {
			return KindComment
		}
		return KindBlank
	}
	if strings.HasSuffix(p.Words[len(p.Words)-1], LabelSuffix) {
		return KindLabel
	}
	return KindInstruction
}
