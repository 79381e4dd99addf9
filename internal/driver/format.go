package driver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"vic/internal/dialect"
	"vic/internal/edit"
	"vic/internal/format"
	"vic/internal/observ"
	"vic/internal/source"
	"vic/internal/trace"
)

// FormatOptions configures code formatting.
type FormatOptions struct {
	Check   bool
	Stdout  bool
	Options format.Options
	// Dialect forces a dialect; Unknown means detect per file.
	Dialect    dialect.Kind
	Extensions dialect.Extensions
	// FirstLine..LastLine (1-based, inclusive) restricts formatting to a
	// line range. Zero FirstLine formats the whole file; LastLine <= 0
	// means the end of the file.
	FirstLine int
	LastLine  int
	Jobs      int
	Cache     *DiskCache
	Progress  ProgressSink
	Timer     *observ.Timer
}

func (o FormatOptions) ranged() bool {
	return o.FirstLine > 0
}

func (o FormatOptions) extensions() dialect.Extensions {
	if o.Extensions == nil {
		return dialect.DefaultExtensions()
	}
	return o.Extensions
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Dialect   dialect.Kind
	Changed   bool
	Cached    bool
	Err       error
	Formatted []byte
	Edits     []edit.TextEdit
}

// FormatPaths formats provided files or directories (recursively collecting
// files registered in opts.Extensions). When opts.Check is true, files are not
// modified; Changed indicates whether formatting would update the file
// contents. When opts.Stdout is true, formatted content is returned in the
// results without touching files on disk. Per-file failures land in
// FormatResult.Err; the returned error is reserved for setup failures and
// cancellation. Options are validated up front only for a forced Asm
// dialect; otherwise each file validates them once its dialect is known,
// so binary listings format even with options that assembly would reject.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Dialect == dialect.Asm {
		if err := opts.Options.Validate(); err != nil {
			return nil, err
		}
	}

	files, err := CollectSourceFiles(ctx, paths, opts.extensions())
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats an already collected list of files in parallel.
// Results keep the order of files.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "fmt", trace.CurrentSpan(ctx))
	span.WithExtra("files", strconv.Itoa(len(files)))
	ctx = trace.WithSpan(ctx, span)

	for _, path := range files {
		report(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatOnDisk(gctx, path, opts)
			return nil
		})
	}
	err := g.Wait()

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	span.WithExtra("changed", strconv.Itoa(changed))
	span.End("")
	return results, err
}

func formatOnDisk(ctx context.Context, path string, opts FormatOptions) FormatResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	started := time.Now()
	result := FormatResult{Path: path}
	defer func() {
		status := StatusDone
		if result.Err != nil {
			status = StatusError
			trace.Error(tracer, trace.ScopeFile, "file", result.Err, span.ID())
		}
		report(opts.Progress, Event{
			File:    path,
			Stage:   StageFormat,
			Status:  status,
			Changed: result.Changed,
			Err:     result.Err,
			Elapsed: time.Since(started),
		})
		span.WithExtra("dialect", result.Dialect.String()).
			WithExtra("changed", strconv.FormatBool(result.Changed)).
			WithExtra("cached", strconv.FormatBool(result.Cached))
		span.End(path)
	}()

	report(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	fileSet := source.NewFileSet()
	var fileID source.FileID
	err := opts.Timer.Track(string(StageLoad), func() error {
		var loadErr error
		fileID, loadErr = fileSet.Load(path)
		return loadErr
	})
	if err != nil {
		result.Err = err
		return result
	}
	sf := fileSet.Get(fileID)

	report(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	var normalized, out []byte
	err = opts.Timer.Track(string(StageFormat), func() error {
		var fmtErr error
		if normalized, fmtErr = formatFile(ctx, sf, opts, &result); fmtErr != nil {
			return fmtErr
		}
		out, fmtErr = sf.Denormalize(normalized)
		return fmtErr
	})
	if err != nil {
		result.Err = err
		return result
	}
	if opts.Stdout {
		result.Formatted = out
	}
	if opts.Check || opts.Stdout || !result.Changed {
		return result
	}

	report(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
	err = opts.Timer.Track(string(StageWrite), func() error {
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		return os.WriteFile(path, out, mode.Perm())
	})
	if err != nil {
		result.Err = err
		result.Changed = false
		return result
	}
	if opts.Cache != nil && !opts.ranged() {
		remember(ctx, opts.Cache, sha256.Sum256(normalized), path, result.Dialect, opts.Options)
	}
	return result
}

// FormatSource formats in-memory content (stdin) named name. The result's
// Formatted field always holds the output bytes, encoded like the input.
func FormatSource(ctx context.Context, name string, content []byte, opts FormatOptions) (FormatResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "stdin", trace.CurrentSpan(ctx))
	defer span.End(name)

	result := FormatResult{Path: name}
	fileSet := source.NewFileSet()
	fileID, err := fileSet.AddBytes(name, content, source.FileVirtual)
	if err != nil {
		return result, err
	}
	opts.Cache = nil
	sf := fileSet.Get(fileID)
	normalized, err := formatFile(ctx, sf, opts, &result)
	if err != nil {
		return result, err
	}
	result.Formatted, err = sf.Denormalize(normalized)
	return result, err
}

// formatFile formats sf and fills result's Dialect, Changed, Cached and Edits.
// The returned bytes are normalized like sf.Content. Content that is already
// formatted is remembered in opts.Cache.
func formatFile(ctx context.Context, sf *source.File, opts FormatOptions, result *FormatResult) ([]byte, error) {
	kind := opts.Dialect
	if kind == dialect.Unknown {
		kind = dialect.Detect(sf.Path, sf.Content, opts.extensions())
	}
	result.Dialect = kind

	fn, err := format.FormatterFor(kind, opts.Options)
	if err != nil {
		return nil, err
	}

	useCache := opts.Cache != nil && !opts.ranged()
	if useCache && opts.Cache.Known(CacheKey(sf.Hash, kind, opts.Options)) {
		result.Cached = true
		return sf.Content, nil
	}

	var edits []edit.TextEdit
	if opts.ranged() {
		edits = format.LineEdits(sf, fn, opts.FirstLine, opts.LastLine)
	} else {
		edits = format.LineEdits(sf, fn, 1, 0)
	}
	normalized, err := edit.Apply(sf.Content, edits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sf.Path, err)
	}
	result.Edits = edits
	result.Changed = !bytes.Equal(normalized, sf.Content)

	tracer := trace.FromContext(ctx)
	if tracer.Level().ShouldEmit(trace.ScopeLine, trace.KindPoint) {
		for _, e := range edits {
			trace.Point(tracer, trace.ScopeLine, "line", fmt.Sprintf("%s:%d", sf.Path, e.Line), trace.CurrentSpan(ctx))
		}
	}

	if useCache && !result.Changed {
		remember(ctx, opts.Cache, sf.Hash, sf.Path, kind, opts.Options)
	}
	return normalized, nil
}

// remember stores a verdict for content. A failed write only costs a cache
// miss next run, so it is traced rather than reported as a file error.
func remember(ctx context.Context, cache *DiskCache, contentHash [32]byte, path string, kind dialect.Kind, opt format.Options) {
	if err := cache.Remember(CacheKey(contentHash, kind, opt), path, kind, opt); err != nil {
		trace.Error(trace.FromContext(ctx), trace.ScopeFile, "cache", fmt.Errorf("%s: %w", path, err), trace.CurrentSpan(ctx))
	}
}
