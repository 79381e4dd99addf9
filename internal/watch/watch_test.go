package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vic/internal/dialect"
)

func TestWatcherHandlesMatchingWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prog.vic")
	if err := os.WriteFile(target, []byte("add  x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []string
	got := make(chan struct{}, 8)
	w, err := New(dialect.DefaultExtensions(), func(_ context.Context, path string) {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
		got <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 20 * time.Millisecond
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("add  y\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, name := range seen {
		if name != "prog.vic" {
			t.Errorf("handler called for %s", name)
		}
	}
}

func TestWatchedFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.vic")
	sibling := filepath.Join(dir, "b.vic")
	for _, p := range []string{target, sibling} {
		if err := os.WriteFile(p, []byte("stop\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got := make(chan string, 8)
	w, err := New(dialect.DefaultExtensions(), func(_ context.Context, path string) {
		got <- filepath.Base(path)
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 20 * time.Millisecond
	if err := w.Add(target); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(sibling, []byte("add  x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// the target write is handled after the sibling's, so its arrival
	// means the sibling event was already dispatched
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(target, []byte("add  y\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-got:
		if name != "a.vic" {
			t.Errorf("handler called for %s", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called for the watched file")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	close(got)
	for name := range got {
		if name != "a.vic" {
			t.Errorf("handler called for %s", name)
		}
	}
}

func TestAddMissingPath(t *testing.T) {
	w, err := New(dialect.DefaultExtensions(), func(context.Context, string) {}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = w.Run(ctx)
	}()
	if err := w.Add(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Add of missing path succeeded")
	}
}
