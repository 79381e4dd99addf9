package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vic/internal/dialect"
)

// DefaultDebounce is how long a path must stay quiet before it is handled.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called with a changed source file.
type Handler func(ctx context.Context, path string)

// Watcher re-runs a handler for Vic sources that are written or created
// under the watched roots.
type Watcher struct {
	watcher  *fsnotify.Watcher
	table    dialect.Extensions
	handle   Handler
	stderr   io.Writer
	Debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRun
	files   map[string]struct{} // explicitly named files
	trees   map[string]struct{} // directories watched recursively
	wg      sync.WaitGroup
}

type pendingRun struct {
	timer *time.Timer
}

// New creates a watcher for files registered in table.
func New(table dialect.Extensions, handle Handler, stderr io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Watcher{
		watcher:  fsWatcher,
		table:    table,
		handle:   handle,
		stderr:   stderr,
		Debounce: DefaultDebounce,
		pending:  make(map[string]*pendingRun),
		files:    make(map[string]struct{}),
		trees:    make(map[string]struct{}),
	}, nil
}

// Add starts watching path. Directories are watched recursively, files
// through their parent directory (editors often replace files on save);
// siblings of a watched file are not handled.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.mu.Lock()
		w.files[absPath(path)] = struct{}{}
		w.mu.Unlock()
		return w.watcher.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !d.IsDir() {
			return nil
		}
		// Skip hidden directories
		if strings.HasPrefix(d.Name(), ".") && p != path {
			return filepath.SkipDir
		}
		w.mu.Lock()
		w.trees[absPath(p)] = struct{}{}
		w.mu.Unlock()
		return w.watcher.Add(p)
	})
}

// wanted reports whether path was named explicitly or lives directly in a
// recursively watched directory and has a registered extension.
func (w *Watcher) wanted(path string) bool {
	w.mu.Lock()
	_, named := w.files[absPath(path)]
	w.mu.Unlock()
	return named || (w.table.Matches(path) && w.inTree(path))
}

func (w *Watcher) inTree(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.trees[filepath.Dir(absPath(path))]
	return ok
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Run processes events until ctx is done, then waits for in-flight handlers
// and closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.mu.Lock()
		for path, run := range w.pending {
			if run.timer.Stop() {
				w.wg.Done()
			}
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.wg.Wait()
		_ = w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.dispatch(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.stderr, "watch: %v\n", err)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.inTree(event.Name) {
				return
			}
			if err := w.Add(event.Name); err != nil {
				fmt.Fprintf(w.stderr, "watch: %s: %v\n", event.Name, err)
			}
			return
		}
	}
	// Only handle write and create events
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.wanted(event.Name) {
		return
	}

	path := event.Name
	w.mu.Lock()
	defer w.mu.Unlock()
	if run, ok := w.pending[path]; ok && run.timer.Stop() {
		run.timer.Reset(w.Debounce)
		return
	}
	// a fired run may still be waiting for mu; it only clears its own entry
	run := &pendingRun{}
	w.wg.Add(1)
	run.timer = time.AfterFunc(w.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == run {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ctx.Err() == nil {
			w.handle(ctx, path)
		}
	})
	w.pending[path] = run
}
