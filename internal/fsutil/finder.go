// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FindFiles returns the regular files, or symlinks to regular files, directly inside dir whose base name
// matches pattern, sorted lexicographically. An empty dir means the current
// directory; returned paths keep dir as their prefix.
func FindFiles(dir string, pattern string) ([]string, error) {
	if pattern == "" {
		panic("pattern must not be empty")
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := os.ReadDir(listDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", listDir, err)
	}

	var files []string
	for _, e := range entries {
		if ok, _ := filepath.Match(pattern, e.Name()); !ok {
			continue
		}
		if !isRegular(filepath.Join(listDir, e.Name()), e) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// isRegular reports whether e is a regular file, following a symlink to its
// target. Dangling links are not regular files.
func isRegular(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
