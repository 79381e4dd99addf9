package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and provides byte offset resolution.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk and registers it via AddBytes.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.AddBytes(path, content, 0)
}

// AddBytes normalizes raw bytes (UTF-16 -> UTF-8, BOM, CRLF) and calls Add.
// Extra flags are OR-ed into the recorded normalization flags.
func (fileSet *FileSet) AddBytes(path string, content []byte, extra FileFlags) (FileID, error) {
	content, flags, err := decodeUTF16(content)
	if err != nil {
		return 0, fmt.Errorf("%s: decode utf-16: %w", path, err)
	}
	content, hadBOM := removeBOM(content)
	content, crlf := normalizeCRLF(content)

	flags |= extra
	if hadBOM {
		flags |= FileHadBOM
	}
	if len(crlf) > 0 {
		flags |= FileNormalizedCRLF
	}
	id := fileSet.Add(path, content, flags)
	fileSet.files[id].CRLF = crlf
	return id, nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil for an unknown ID.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineCount returns the number of lines in the file. A trailing newline
// opens one more (empty) line, the way editors count them.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// LineSpan returns the span of line lineNum (1-based) without its terminator.
// ok is false when the line does not exist.
func (f *File) LineSpan(lineNum uint32) (sp Span, ok bool) {
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if lineNum == 0 || lineNum > lenLineIdx+1 {
		return Span{}, false
	}

	var start, end uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	sp, ok := f.LineSpan(lineNum)
	if !ok {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// Denormalize re-applies the encoding details stripped on load (CRLF, BOM,
// UTF-16) to content that was derived from f.Content. CRLF is restored per
// line, so files with mixed endings keep them.
func (f *File) Denormalize(content []byte) ([]byte, error) {
	out := content
	if f.Flags&FileNormalizedCRLF != 0 {
		out = restoreCRLF(out, f.CRLF)
	}
	if f.Flags&(FileUTF16LE|FileUTF16BE) != 0 {
		return encodeUTF16(out, f.Flags)
	}
	if f.Flags&FileHadBOM != 0 {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out, nil
}
