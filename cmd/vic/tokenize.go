package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"vic/internal/dialect"
	"vic/internal/format"
	"vic/internal/project"
	"vic/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file|->",
	Short: "Show how each line is split into words and comment",
	Long: `Tokenize prints, for every line of a Vic file, its kind (blank, comment,
label, instruction), its words and its comment as the formatter sees them.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().String("dialect", "auto", "dialect (auto|asm|bin)")
}

type tokenLine struct {
	Line    uint32   `json:"line"`
	Kind    string   `json:"kind"`
	Words   []string `json:"words"`
	Comment *string  `json:"comment,omitempty"`
}

type tokenReport struct {
	Path    string      `json:"path"`
	Dialect string      `json:"dialect"`
	Lines   []tokenLine `json:"lines"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	dialectFlag, err := cmd.Flags().GetString("dialect")
	if err != nil {
		return fmt.Errorf("failed to get dialect flag: %w", err)
	}
	kind, err := dialect.ParseKind(dialectFlag)
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	var fileID source.FileID
	if args[0] == "-" {
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("tokenize: read stdin: %w", readErr)
		}
		fileID, err = fileSet.AddBytes("<stdin>", data, source.FileVirtual)
	} else {
		fileID, err = fileSet.Load(args[0])
	}
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}

	extensions := dialect.DefaultExtensions()
	if manifest, ok, mErr := project.LoadManifest(manifestStart(args)); mErr != nil {
		return mErr
	} else if ok {
		extensions = manifest.Config.Extensions(extensions)
	}
	report, err := buildTokenReport(fileSet.Get(fileID), kind, extensions)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "pretty":
		return renderTokensPretty(cmd.OutOrStdout(), report)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown format: %s", outputFormat)
	}
}

func buildTokenReport(sf *source.File, kind dialect.Kind, extensions dialect.Extensions) (tokenReport, error) {
	if kind == dialect.Unknown {
		kind = dialect.Detect(sf.Path, sf.Content, extensions)
	}
	report := tokenReport{Path: sf.Path, Dialect: kind.String()}
	for n := 1; n <= sf.LineCount(); n++ {
		lineNum, err := safecast.Conv[uint32](n)
		if err != nil {
			return report, fmt.Errorf("line number overflow: %w", err)
		}
		text := sf.GetLine(lineNum)
		if n == sf.LineCount() && text == "" {
			break // trailing newline
		}
		p := format.ParseLine(text)
		tl := tokenLine{Line: lineNum, Kind: format.Classify(p).String(), Words: p.Words}
		if tl.Words == nil {
			tl.Words = []string{}
		}
		if kind == dialect.Bin {
			// binary lines are only trimmed; show them as one opaque word
			tl.Kind = "bin"
			tl.Words = []string{}
			if trimmed := format.FormatBinLine(text); trimmed != "" {
				tl.Words = []string{trimmed}
			}
		} else if p.Comment.Present {
			c := p.Comment.Text
			tl.Comment = &c
		}
		report.Lines = append(report.Lines, tl)
	}
	return report, nil
}

func renderTokensPretty(out io.Writer, report tokenReport) error {
	fmt.Fprintf(out, "%s (%s)\n", report.Path, report.Dialect)
	wordsWidth := 0
	cells := make([]string, len(report.Lines))
	for i, l := range report.Lines {
		quoted := make([]string, len(l.Words))
		for j, w := range l.Words {
			quoted[j] = fmt.Sprintf("%q", w)
		}
		cells[i] = strings.Join(quoted, " ")
		wordsWidth = max(wordsWidth, runewidth.StringWidth(cells[i]))
	}
	for i, l := range report.Lines {
		line := fmt.Sprintf("%4d  %-11s  %s", l.Line, l.Kind, runewidth.FillRight(cells[i], wordsWidth))
		if l.Comment != nil {
			line += fmt.Sprintf("  //%q", *l.Comment)
		}
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
