package format

// lineWriter accumulates one rendered line and owns the spacing rules:
// words are separated by exactly one space and a comment gets a leading
// space only when something precedes it on the line.
type lineWriter struct {
	buf   []byte
	words int
}

func newLineWriter(capHint int) *lineWriter {
	return &lineWriter{buf: make([]byte, 0, capHint)}
}

func (w *lineWriter) writeIndent(opt Options) {
	w.buf = append(w.buf, Indent(opt)...)
}

func (w *lineWriter) writeWord(s string) {
	if w.words > 0 {
		w.buf = append(w.buf, ' ')
	}
	w.buf = append(w.buf, s...)
	w.words++
}

func (w *lineWriter) writeComment(c Comment) {
	if !c.Present {
		return
	}
	if w.words > 0 {
		w.buf = append(w.buf, ' ')
	}
	w.buf = append(w.buf, CommentMarker...)
	w.buf = append(w.buf, c.Text...)
}

func (w *lineWriter) String() string {
	return string(w.buf)
}
