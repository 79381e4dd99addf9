// Package edit applies span-addressed text replacements to a file buffer.
//
// Edits are produced by the line formatter (one per changed line) and
// consumed by the driver when rewriting files or reporting per-line changes.
package edit

import (
	"errors"
	"fmt"
	"sort"

	"fortio.org/safecast"

	"vic/internal/source"
)

var (
	// ErrConflict is returned when two edits touch overlapping spans.
	ErrConflict = errors.New("edit: overlapping edits")
	// ErrOutOfRange is returned when an edit span does not fit the buffer.
	ErrOutOfRange = errors.New("edit: span out of range")
	// ErrStale is returned when OldText no longer matches the buffer.
	ErrStale = errors.New("edit: existing text does not match expected content")
)

// TextEdit replaces Span with NewText. OldText, when non-empty, must match the
// replaced bytes. Line is informational (1-based line the edit belongs to).
type TextEdit struct {
	Span    source.Span
	Line    uint32
	NewText string
	OldText string
}

// Apply returns a copy of content with all edits applied. Edits are sorted
// back-to-front so earlier offsets stay valid; content is not modified.
func Apply(content []byte, edits []TextEdit) ([]byte, error) {
	if len(edits) == 0 {
		return append([]byte(nil), content...), nil
	}
	sorted := append([]TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	if err := checkConflicts(sorted); err != nil {
		return nil, err
	}

	limit, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return nil, fmt.Errorf("content length overflow: %w", err)
	}

	working := append([]byte(nil), content...)
	for _, e := range sorted {
		if e.Span.End < e.Span.Start || e.Span.End > limit {
			return nil, fmt.Errorf("%w: %v (len %d)", ErrOutOfRange, e.Span, limit)
		}
		start, end := int(e.Span.Start), int(e.Span.End)
		if e.OldText != "" && string(working[start:end]) != e.OldText {
			return nil, fmt.Errorf("%w at line %d", ErrStale, e.Line)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], e.NewText...), suffix...)
	}
	return working, nil
}

// checkConflicts expects edits sorted by descending start.
func checkConflicts(sorted []TextEdit) error {
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Span.Overlaps(cur.Span) || (prev.Span.Start == cur.Span.Start && prev.Span.File == cur.Span.File) {
			return fmt.Errorf("%w: %v and %v", ErrConflict, cur.Span, prev.Span)
		}
	}
	return nil
}
