package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vic/internal/dialect"
)

// ErrNoFiles is returned when the given paths contain no Vic sources.
var ErrNoFiles = errors.New("format: no source files found")

// CollectSourceFiles expands paths into a sorted, de-duplicated list of files
// whose extension is registered in table. Directories are walked recursively;
// hidden directories (".git", ".cache") are skipped. Files named explicitly are
// kept even without a known extension, so `vic fmt notes.txt --dialect asm` works.
func CollectSourceFiles(ctx context.Context, paths []string, table dialect.Extensions) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if table.Matches(path) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
