package dialect

import (
	"fmt"
	"strings"
)

// Kind is a Vic document dialect.
type Kind uint8

const (
	Unknown Kind = iota
	Asm
	Bin

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Asm:
		return "asm"
	case Bin:
		return "bin"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}

// ParseKind maps a user-supplied name to a Kind. "auto" and "" yield Unknown,
// meaning the caller should detect the dialect.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Unknown, nil
	case "asm", "assembly", "vic":
		return Asm, nil
	case "bin", "binary", "vicbin":
		return Bin, nil
	default:
		return Unknown, fmt.Errorf("invalid dialect %q (expected auto|asm|bin)", s)
	}
}
