package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vic/internal/driver"
	"vic/internal/observ"
	"vic/internal/watch"
)

// errCheckFailed signals `fmt --check` found unformatted files; main exits 1
// without printing it.
var errCheckFailed = errors.New("fmt: formatting changes required")

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path|-> [path...]",
	Short: "Format Vic source files",
	Long: `Format rewrites .vic and .vicbin files in place. Directories are walked
recursively. A single "-" reads stdin and writes the result to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files that need formatting and exit 1 if any")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("range", "", "format only lines FIRST:LAST (1-based, inclusive; LAST may be empty)")
	fmtCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	fmtCmd.Flags().Bool("watch", false, "keep running and re-format files when they change")
	fmtCmd.Flags().Bool("no-cache", false, "do not read or write the formatted-file cache")
	fmtCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	addFormatFlags(fmtCmd)
}

type fmtFlags struct {
	check   bool
	output  string
	stdout  bool
	jobs    int
	watch   bool
	noCache bool
	ui      uiMode
	first   int
	last    int
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var f fmtFlags
	var err error
	flags := cmd.Flags()
	if f.check, err = flags.GetBool("check"); err != nil {
		return f, err
	}
	if f.output, err = flags.GetString("format"); err != nil {
		return f, err
	}
	if f.stdout, err = flags.GetBool("stdout"); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	if f.watch, err = flags.GetBool("watch"); err != nil {
		return f, err
	}
	if f.noCache, err = flags.GetBool("no-cache"); err != nil {
		return f, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	rangeValue, err := flags.GetString("range")
	if err != nil {
		return f, err
	}
	if f.first, f.last, err = parseLineRange(rangeValue); err != nil {
		return f, err
	}

	switch f.output {
	case "text", "json":
	default:
		return f, fmt.Errorf("fmt: unsupported output format %q", f.output)
	}
	if f.stdout && f.check {
		return f, fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if f.stdout && f.output != "text" {
		return f, fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	if f.watch && (f.check || f.stdout) {
		return f, fmt.Errorf("fmt: --watch rewrites files and cannot be combined with --check or --stdout")
	}
	return f, nil
}

// parseLineRange parses "FIRST:LAST", "FIRST:" or "FIRST". An empty value
// means the whole file (0, 0).
func parseLineRange(value string) (first, last int, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, nil
	}
	lo, hi, hasColon := strings.Cut(value, ":")
	first, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || first < 1 {
		return 0, 0, fmt.Errorf("fmt: invalid --range %q: first line must be a positive number", value)
	}
	switch {
	case !hasColon:
		last = first
	case strings.TrimSpace(hi) == "":
		last = 0
	default:
		last, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || last < first {
			return 0, 0, fmt.Errorf("fmt: invalid --range %q: last line must be a number >= %d", value, first)
		}
	}
	return first, last, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	flags, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	cfg, err := resolveSettings(cmd, manifestStart(args))
	if err != nil {
		return err
	}

	opts := driver.FormatOptions{
		Check:      flags.check,
		Stdout:     flags.stdout,
		Options:    cfg.Options,
		Dialect:    cfg.Dialect,
		Extensions: cfg.Extensions,
		FirstLine:  flags.first,
		LastLine:   flags.last,
		Jobs:       flags.jobs,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
		defer func() { printTimings(cmd.ErrOrStderr(), opts.Timer) }()
	}

	if len(args) == 1 && args[0] == "-" {
		return formatStdin(cmd, opts)
	}

	if !flags.noCache && !flags.stdout {
		// cache failures only cost speed
		if cache, cacheErr := driver.OpenDiskCache("vic"); cacheErr == nil {
			opts.Cache = cache
		}
	}

	ctx := cmd.Context()
	if flags.watch {
		return watchAndFormat(ctx, cmd, args, opts, quiet)
	}

	files, err := driver.CollectSourceFiles(ctx, args, cfg.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return driver.ErrNoFiles
	}

	var results []driver.FormatResult
	if flags.output == "text" && !flags.stdout && !quiet && shouldUseTUI(flags.ui) && len(files) > 1 {
		results, err = runFormatWithUI(ctx, "vic fmt", files, opts)
	} else {
		results, err = driver.FormatFiles(ctx, files, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var summary fmtSummary
	switch {
	case flags.output == "json":
		summary = summarize(results)
		if err := renderFmtJSON(out, results, flags.check); err != nil {
			return err
		}
	case flags.stdout:
		summary = renderFmtStdout(out, errOut, results)
	default:
		summary = renderFmtText(out, errOut, results, flags.check, quiet)
	}

	if summary.errors > 0 {
		return fmt.Errorf("fmt: failed to format %d file(s)", summary.errors)
	}
	if flags.check && summary.changed > 0 {
		return errCheckFailed
	}
	return nil
}

func formatStdin(cmd *cobra.Command, opts driver.FormatOptions) error {
	if opts.Check {
		return fmt.Errorf("fmt: --check is not supported for stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("fmt: read stdin: %w", err)
	}
	res, err := driver.FormatSource(cmd.Context(), "<stdin>", data, opts)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(res.Formatted)
	return err
}

func watchAndFormat(ctx context.Context, cmd *cobra.Command, args []string, opts driver.FormatOptions, quiet bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	// initial pass
	if files, err := driver.CollectSourceFiles(ctx, args, opts.Extensions); err == nil && len(files) > 0 {
		results, err := driver.FormatFiles(ctx, files, opts)
		if err != nil {
			return err
		}
		renderFmtText(out, errOut, results, false, quiet)
	}

	w, err := watch.New(opts.Extensions, func(ctx context.Context, path string) {
		results, err := driver.FormatFiles(ctx, []string{path}, opts)
		if err != nil {
			fmt.Fprintf(errOut, "fmt: %s: %v\n", path, err)
			return
		}
		renderFmtText(out, errOut, results, false, quiet)
	}, errOut)
	if err != nil {
		return err
	}
	for _, p := range args {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("fmt: watch %s: %w", p, err)
		}
	}
	if !quiet {
		fmt.Fprintf(out, "watching %s (Ctrl+C to stop)\n", strings.Join(args, ", "))
	}
	return w.Run(ctx)
}
