package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vic/internal/dialect"
	"vic/internal/format"
	"vic/internal/observ"
	"vic/internal/trace"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func TestCollectSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.vic", "")
	writeFile(t, dir, "a/c.vicbin", "")
	writeFile(t, dir, "a/readme.md", "")
	writeFile(t, dir, ".git/x.vic", "")
	explicit := writeFile(t, dir, "notes.txt", "")

	files, err := CollectSourceFiles(context.Background(), []string{dir, explicit, dir}, dialect.DefaultExtensions())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a", "c.vicbin"),
		filepath.Join(dir, "b.vic"),
		filepath.Join(dir, "notes.txt"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestFormatPathsRewrites(t *testing.T) {
	dir := t.TempDir()
	asm := writeFile(t, dir, "prog.vic", "loop:\nadd   one  // inc\n  jump loop\n")
	bin := writeFile(t, dir, "prog.vicbin", "  101  \n  \n")
	clean := writeFile(t, dir, "clean.vic", "start:\n    load x\n")

	sink := &recordingSink{}
	timer := observ.NewTimer()
	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Options:  format.DefaultOptions(),
		Progress: sink,
		Timer:    timer,
		Jobs:     2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	byPath := map[string]FormatResult{}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		byPath[r.Path] = r
	}
	if !byPath[asm].Changed || byPath[asm].Dialect != dialect.Asm {
		t.Errorf("asm result = %+v", byPath[asm])
	}
	if got := readFile(t, asm); got != "loop:\n    add one // inc\n    jump loop\n" {
		t.Errorf("asm file = %q", got)
	}
	if got := readFile(t, bin); got != "101\n\n" {
		t.Errorf("bin file = %q", got)
	}
	if byPath[clean].Changed || len(byPath[clean].Edits) != 0 {
		t.Errorf("clean result = %+v", byPath[clean])
	}
	if len(sink.events) == 0 {
		t.Error("no progress events")
	}
	if len(timer.Report().Stages) == 0 {
		t.Error("timer recorded nothing")
	}
}

func TestFormatPathsCheckLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	body := "add   one\n"
	path := writeFile(t, dir, "a.vic", body)

	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{
		Check:   true,
		Options: format.Options{InsertSpaces: false, TabSize: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed {
		t.Error("check should report change")
	}
	if e := results[0].Edits; len(e) != 1 || e[0].Line != 1 || e[0].NewText != "\tadd one" {
		t.Errorf("edits = %+v", e)
	}
	if got := readFile(t, path); got != body {
		t.Errorf("check modified file: %q", got)
	}
}

func TestFormatPathsRange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.vic", "a  b\nc  d\ne  f\n")
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{
		Stdout:    true,
		Options:   format.Options{TabSize: 2, InsertSpaces: true},
		FirstLine: 2,
		LastLine:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(results[0].Formatted); got != "a  b\n  c d\ne  f\n" {
		t.Errorf("formatted = %q", got)
	}
	if got := readFile(t, path); got != "a  b\nc  d\ne  f\n" {
		t.Errorf("stdout mode modified file: %q", got)
	}
}

func TestFormatPathsPreservesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.vic", "\xEF\xBB\xBFl:\r\n  add  x\r\n")
	if _, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Options: format.DefaultOptions()}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "\xEF\xBB\xBFl:\r\n    add x\r\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFormatPathsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "")
	if _, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Options: format.DefaultOptions()}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("err = %v, want ErrNoFiles", err)
	}
	path := writeFile(t, dir, "a.vic", "x\n")
	badTab := format.Options{TabSize: 0, InsertSpaces: true}
	if _, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Options: badTab, Dialect: dialect.Asm}); !errors.Is(err, format.ErrInvalidTabSize) {
		t.Errorf("err = %v, want ErrInvalidTabSize", err)
	}
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Options: badTab})
	if err != nil {
		t.Fatalf("auto dialect: %v", err)
	}
	if !errors.Is(results[0].Err, format.ErrInvalidTabSize) {
		t.Errorf("result err = %v, want ErrInvalidTabSize", results[0].Err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{path}, FormatOptions{Options: format.DefaultOptions()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFormatPathsBinIgnoresIndentOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.vicbin", "  7\n12  \n")
	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Options: format.Options{TabSize: 0, InsertSpaces: true}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil || results[0].Dialect != dialect.Bin {
		t.Fatalf("results = %+v", results)
	}
	if got := readFile(t, path); got != "7\n12\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFormatSourceKeepsMixedLineEndings(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"unchanged", "a:\r\nb:\n", "a:\r\nb:\n", false},
		{"edited", "start:\r\n  stop\n", "start:\r\n    stop\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FormatSource(context.Background(), "<stdin>", []byte(tt.in), FormatOptions{Options: format.DefaultOptions(), Dialect: dialect.Asm})
			if err != nil {
				t.Fatal(err)
			}
			if res.Changed != tt.changed {
				t.Errorf("changed = %v, want %v", res.Changed, tt.changed)
			}
			if string(res.Formatted) != tt.want {
				t.Errorf("formatted = %q, want %q", res.Formatted, tt.want)
			}
		})
	}
}

func TestCacheWriteFailureIsTraced(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cache, err := NewDiskCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	// a regular file where the verdict directory should go
	if err := os.RemoveAll(cacheDir); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "cache", "")
	path := writeFile(t, dir, "src/a.vic", "stop:\n")

	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&buf, trace.LevelError, trace.FormatText))
	results, err := FormatPaths(ctx, []string{path}, FormatOptions{Options: format.DefaultOptions(), Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil {
		t.Fatalf("cache failure leaked into result: %v", results[0].Err)
	}
	if !strings.Contains(buf.String(), "! file cache") || !strings.Contains(buf.String(), "a.vic") {
		t.Errorf("cache failure not traced:\n%s", buf.String())
	}
}

func TestFormatSourceDetectsDialect(t *testing.T) {
	res, err := FormatSource(context.Background(), "<stdin>", []byte("  7\n  12\n"), FormatOptions{Options: format.DefaultOptions()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Dialect != dialect.Bin {
		t.Errorf("dialect = %s, want bin", res.Dialect)
	}
	if !bytes.Equal(res.Formatted, []byte("7\n12\n")) {
		t.Errorf("formatted = %q", res.Formatted)
	}
}

func TestFormatPathsUsesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "src/a.vic", "add  x\n")
	opts := FormatOptions{Options: format.DefaultOptions(), Cache: cache}

	first, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !first[0].Changed || first[0].Cached {
		t.Fatalf("first run = %+v", first[0])
	}
	second, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Changed || !second[0].Cached {
		t.Fatalf("second run = %+v", second[0])
	}

	// different options miss the cache
	opts.Options = format.Options{TabSize: 2, InsertSpaces: true}
	third, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached || !third[0].Changed {
		t.Fatalf("third run = %+v", third[0])
	}
}
