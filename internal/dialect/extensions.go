package dialect

import (
	"path/filepath"
	"strings"
)

// Extensions maps lower-case file extensions (with the leading dot) to dialects.
type Extensions map[string]Kind

// DefaultExtensions returns the built-in extension table.
func DefaultExtensions() Extensions {
	return Extensions{
		".vic":    Asm,
		".vicbin": Bin,
	}
}

// ByExtension returns the dialect registered for path's extension, or Unknown.
func (t Extensions) ByExtension(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return Unknown
	}
	return t[ext]
}

// Matches reports whether path carries one of the registered extensions.
func (t Extensions) Matches(path string) bool {
	return t.ByExtension(path) != Unknown
}
