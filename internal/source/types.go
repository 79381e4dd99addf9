package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes how a file's bytes were normalized on load.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
	FileUTF16LE
	FileUTF16BE
)

// File captures metadata and content for a single source file.
// Content is always UTF-8, LF-terminated and BOM-free; Flags remember
// what was stripped so Denormalize can restore it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
	// CRLF lists the 0-based ordinals of line terminators that were \r\n.
	CRLF    []uint32
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
