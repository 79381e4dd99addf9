package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"vic/internal/driver"
)

type fmtSummary struct {
	changed int
	errors  int
}

func summarize(results []driver.FormatResult) fmtSummary {
	var s fmtSummary
	for _, res := range results {
		switch {
		case res.Err != nil:
			s.errors++
		case res.Changed:
			s.changed++
		}
	}
	return s
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult) fmtSummary {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return summarize(results)
}

func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, check, quiet bool) fmtSummary {
	errColor := color.New(color.FgRed, color.Bold)
	needsColor := color.New(color.FgYellow)

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "%s %s: %v\n", errColor.Sprint("error:"), res.Path, res.Err)
			continue
		}
		if !res.Changed || quiet {
			continue
		}
		if check {
			fmt.Fprintf(out, "%s (%d line(s))\n", needsColor.Sprint(res.Path), len(res.Edits))
			continue
		}
		fmt.Fprintf(out, "reformatted %s\n", res.Path)
	}
	return summarize(results)
}

type jsonEdit struct {
	Line    uint32 `json:"line"`
	OldText string `json:"old"`
	NewText string `json:"new"`
}

type jsonResult struct {
	Path     string     `json:"path"`
	Dialect  string     `json:"dialect,omitempty"`
	Changed  bool       `json:"changed"`
	Cached   bool       `json:"cached,omitempty"`
	Error    string     `json:"error,omitempty"`
	CheckRun bool       `json:"check"`
	Edits    []jsonEdit `json:"edits,omitempty"`
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool) error {
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Changed:  res.Changed,
			Cached:   res.Cached,
			CheckRun: check,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			jr.Dialect = res.Dialect.String()
		}
		for _, e := range res.Edits {
			jr.Edits = append(jr.Edits, jsonEdit{Line: e.Line, OldText: e.OldText, NewText: e.NewText})
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
