// Package dialect decides which Vic dialect a document is written in:
// assembly (labels, mnemonics, comments) or binary listing (one bare value
// per line).
//
// Detection never changes how a line is formatted once a dialect is chosen;
// it only picks the line formatter. File extensions win over content evidence.
package dialect
