package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

var commands = []string{":asm", ":bin", ":tabs", ":spaces", ":explain", ":show", ":help", ":quit", ":exit"}

// Start runs the interactive loop with line editing and history until
// :quit or Ctrl+D.
func Start(out io.Writer, s *Session, version string) error {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	historyFile := filepath.Join(os.TempDir(), ".vic_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(out, "vic %s line formatter\n", version)
	fmt.Fprintln(out, "Type ':help' for commands, Ctrl+D to quit")

	for {
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("repl: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		result, quit := s.Eval(input)
		if quit {
			return nil
		}
		fmt.Fprintln(out, result)
	}
}

// completeCommand offers REPL commands for a line that starts with ':'.
func completeCommand(line string) []string {
	if !strings.HasPrefix(line, ":") {
		return nil
	}
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}
