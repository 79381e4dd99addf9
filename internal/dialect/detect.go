package dialect

import (
	"bufio"
	"bytes"
)

// Detect picks the dialect for a document: the extension table first, then
// content evidence, then Asm as the fallback.
func Detect(path string, content []byte, table Extensions) Kind {
	if k := table.ByExtension(path); k != Unknown {
		return k
	}
	if k := (Classifier{}).Classify(Collect(content)).Kind; k != Unknown {
		return k
	}
	return Asm
}

// Collect gathers evidence for every line of content.
func Collect(content []byte) *Evidence {
	e := NewEvidence()
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	var lineNum uint32
	for sc.Scan() {
		lineNum++
		ObserveLine(e, lineNum, sc.Text())
	}
	return e
}
