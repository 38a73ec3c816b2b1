package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type FileInfo struct {
	Name    string
	Path    string // canonical absolute path
	Size    int64
	ModTime time.Time
}

type WalkResult struct {
	Files  int
	Errors []error
}

// Walk sends every regular file under rootPath to out, in directory order.
// Symlinks to regular files are sent with their resolved target path;
// symlinked directories are not descended. out is not closed.
func Walk(ctx context.Context, rootPath string, exclusions []string, out chan<- FileInfo) (*WalkResult, error) {
	result := &WalkResult{
		Errors: make([]error, 0),
	}

	root, err := Canonical(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// If error is on the root path, return it (don't continue walking)
			if path == root {
				return err
			}
			// Skip permission errors and continue walking
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			result.Errors = append(result.Errors, err)
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}

		if path != root && shouldExclude(relPath, exclusions) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, ok, err := regularFile(path, d)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}
		if !ok {
			return nil
		}

		select {
		case out <- info:
			result.Files++
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

// Canonical returns the absolute, symlink-free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// regularFile reports whether the entry is (or links to) a regular file
// and, if so, describes it.
func regularFile(path string, d fs.DirEntry) (FileInfo, bool, error) {
	switch {
	case d.Type().IsRegular():
		info, err := d.Info()
		if err != nil {
			return FileInfo{}, false, err
		}
		return FileInfo{
			Name:    d.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}, true, nil

	case d.Type()&fs.ModeSymlink != 0:
		target, err := Canonical(path)
		if err != nil {
			return FileInfo{}, false, err
		}
		info, err := os.Stat(target)
		if err != nil {
			return FileInfo{}, false, err
		}
		if !info.Mode().IsRegular() {
			return FileInfo{}, false, nil
		}
		return FileInfo{
			Name:    d.Name(),
			Path:    target,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}, true, nil
	}

	// devices, sockets, pipes
	return FileInfo{}, false, nil
}

func shouldExclude(relPath string, exclusions []string) bool {
	for _, pattern := range exclusions {
		// Handle directory exclusions (patterns ending with /)
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			parts := strings.Split(relPath, string(filepath.Separator))
			for _, part := range parts {
				if matched, _ := filepath.Match(dirPattern, part); matched {
					return true
				}
			}
			continue
		}

		matched, err := filepath.Match(pattern, filepath.Base(relPath))
		if err == nil && matched {
			return true
		}
		// Patterns with a separator match against the full relative path
		if strings.Contains(pattern, "/") {
			matched, err := filepath.Match(pattern, relPath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}
