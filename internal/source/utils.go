package source

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
// Возвращает новый слайс и порядковые номера (0-based) переводов строк,
// которые были \r\n; пустой результат значит, что замен не было.
func normalizeCRLF(content []byte) ([]byte, []uint32) {
	if !slices.Contains(content, '\r') {
		return content, nil
	}

	out := make([]byte, 0, len(content))
	var crlf []uint32
	var nl uint32

	i := 0
	for i < len(content) {
		switch {
		case content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n':
			out = append(out, '\n')
			crlf = append(crlf, nl)
			nl++
			i += 2
		case content[i] == '\n':
			out = append(out, '\n')
			nl++
			i++
		default:
			out = append(out, content[i])
			i++
		}
	}
	return out, crlf
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// decodeUTF16 converts BOM-prefixed UTF-16 input to UTF-8. Input without a
// UTF-16 BOM is returned untouched with a zero flag.
func decodeUTF16(content []byte) ([]byte, FileFlags, error) {
	if len(content) < 2 {
		return content, 0, nil
	}
	var endian unicode.Endianness
	var flag FileFlags
	switch {
	case content[0] == 0xFF && content[1] == 0xFE:
		endian, flag = unicode.LittleEndian, FileUTF16LE
	case content[0] == 0xFE && content[1] == 0xFF:
		endian, flag = unicode.BigEndian, FileUTF16BE
	default:
		return content, 0, nil
	}
	out, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(content)
	if err != nil {
		return nil, 0, err
	}
	return out, flag, nil
}

func encodeUTF16(content []byte, flags FileFlags) ([]byte, error) {
	var endian unicode.Endianness
	switch {
	case flags&FileUTF16LE != 0:
		endian = unicode.LittleEndian
	case flags&FileUTF16BE != 0:
		endian = unicode.BigEndian
	default:
		return content, nil
	}
	return unicode.UTF16(endian, unicode.UseBOM).NewEncoder().Bytes(content)
}

// restoreCRLF puts \r back before the newlines whose ordinals are listed in
// crlf (sorted). Formatting never adds or removes lines, so ordinals taken
// from the original file still name the same terminators.
func restoreCRLF(content []byte, crlf []uint32) []byte {
	if len(crlf) == 0 {
		return content
	}
	out := make([]byte, 0, len(content)+len(crlf))
	var nl uint32
	next := 0
	for _, b := range content {
		if b == '\n' {
			if next < len(crlf) && crlf[next] == nl {
				out = append(out, '\r')
				next++
			}
			nl++
		}
		out = append(out, b)
	}
	return out
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: находим наибольший lineIdx[i] < off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi + 1 // индекс строки (0-based)

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}

	return LineCol{Line: uint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns target relative to baseDir when target lives under it,
// and the cleaned absolute path otherwise.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}
