package dialect

import "strings"

const commentMarker = "//"

// ObserveLine records evidence for a single source line. Blank lines carry none.
func ObserveLine(e *Evidence, lineNum uint32, line string) {
	if e == nil {
		return
	}
	if strings.Contains(line, commentMarker) {
		e.Add(Hint{Kind: Asm, Score: 3, Reason: "comment marker `//`", Line: lineNum})
		line, _, _ = strings.Cut(line, commentMarker)
	}

	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return
	case len(fields) > 1:
		e.Add(Hint{Kind: Asm, Score: 2, Reason: "several words on one line", Line: lineNum})
	case strings.HasSuffix(fields[0], ":"):
		e.Add(Hint{Kind: Asm, Score: 4, Reason: "label `" + fields[0] + "`", Line: lineNum})
	case isNumber(fields[0]):
		e.Add(Hint{Kind: Bin, Score: 2, Reason: "bare number", Line: lineNum})
	default:
		e.Add(Hint{Kind: Asm, Score: 2, Reason: "bare mnemonic `" + fields[0] + "`", Line: lineNum})
	}
}

// isNumber accepts an optionally signed run of decimal digits.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
