package repl

import (
	"fmt"
	"strconv"
	"strings"

	"vic/internal/dialect"
	"vic/internal/format"
)

// Session holds the formatter settings of one REPL run. Every non-command
// input line is formatted with the current dialect and options.
type Session struct {
	Dialect dialect.Kind
	Options format.Options
	// Explain prints the tokenizer view of each line after its formatted form.
	Explain bool
}

// NewSession starts in the given dialect; Unknown falls back to Asm.
func NewSession(k dialect.Kind, opt format.Options) (*Session, error) {
	if k == dialect.Unknown {
		k = dialect.Asm
	}
	if k == dialect.Asm {
		if err := opt.Validate(); err != nil {
			return nil, err
		}
	}
	return &Session{Dialect: k, Options: opt}, nil
}

// Prompt reflects the active dialect.
func (s *Session) Prompt() string {
	return s.Dialect.String() + "> "
}

// Eval handles one line of input. Lines starting with ':' are commands.
// quit is true for :quit and :exit.
func (s *Session) Eval(input string) (output string, quit bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	fn, err := format.FormatterFor(s.Dialect, s.Options)
	if err != nil {
		return "error: " + err.Error(), false
	}
	out := visible(fn(input))
	if s.Explain {
		out += "\n" + Explain(input)
	}
	return out, false
}

func (s *Session) command(cmd string) (string, bool) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":exit", ":q":
		return "", true
	case ":help", ":h", ":?":
		return helpText, false
	case ":asm":
		s.Dialect = dialect.Asm
		if err := s.Options.Validate(); err != nil {
			s.Options.TabSize = format.DefaultOptions().TabSize
		}
		return "dialect: asm", false
	case ":bin":
		s.Dialect = dialect.Bin
		return "dialect: bin", false
	case ":tabs":
		s.Options.InsertSpaces = false
		return "indent: tab", false
	case ":spaces":
		n := s.Options.TabSize
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Sprintf("error: %q is not a number", arg), false
			}
			n = v
		}
		next := format.Options{TabSize: n, InsertSpaces: true}
		if err := next.Validate(); err != nil {
			return "error: " + err.Error(), false
		}
		s.Options = next
		return fmt.Sprintf("indent: %d spaces", n), false
	case ":explain":
		s.Explain = !s.Explain
		return "explain: " + strconv.FormatBool(s.Explain), false
	case ":show":
		return s.settings(), false
	default:
		return fmt.Sprintf("unknown command: %s (type :help for commands)", name), false
	}
}

func (s *Session) settings() string {
	indent := "tab"
	if s.Options.InsertSpaces {
		indent = fmt.Sprintf("%d spaces", s.Options.TabSize)
	}
	return fmt.Sprintf("dialect: %s, indent: %s, explain: %t", s.Dialect, indent, s.Explain)
}

// Explain describes how the tokenizer sees line.
func Explain(line string) string {
	p := format.ParseLine(line)
	var b strings.Builder
	fmt.Fprintf(&b, "  kind:    %s\n", format.Classify(p))
	fmt.Fprintf(&b, "  words:   %q\n", p.Words)
	if p.Comment.Present {
		fmt.Fprintf(&b, "  comment: %q", p.Comment.Text)
	} else {
		b.WriteString("  comment: none")
	}
	return b.String()
}

// visible makes leading tabs readable in a terminal echo.
func visible(s string) string {
	rest := strings.TrimLeft(s, "\t")
	return strings.Repeat("→   ", len(s)-len(rest)) + rest
}

const helpText = `commands:
  :asm            format as Vic assembly
  :bin            format as Vic binary
  :tabs           indent instructions with a tab
  :spaces [N]     indent instructions with N spaces
  :explain        toggle tokenizer output
  :show           print current settings
  :quit, :exit    leave
anything else is formatted and echoed back`
