package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dupetree/internal/progress"
	"dupetree/internal/tree"
	"dupetree/internal/walker"
)

// Options configures a scan.
type Options struct {
	// Exclude holds walker patterns; a trailing / marks a directory.
	Exclude []string
	// Hasher computes content digests for size ties.
	Hasher tree.Hasher
	// AbortOnError stops the scan at the first unreadable file instead of
	// skipping it.
	AbortOnError bool
	// Progress receives a status update per file; nil disables it.
	Progress *progress.Counter
	// Buffer is the capacity of the walker-to-tree channel.
	Buffer int
}

// Result is the outcome of a scan.
type Result struct {
	Tree       *tree.Tree
	Root       string
	Visited    int
	Skipped    []error
	WalkErrors []error
	Duration   time.Duration
}

// Run walks root and inserts every file found into a new comparison tree.
// Walking runs concurrently with insertion; insertions themselves happen
// one at a time on a single goroutine.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	if opts.Hasher == nil {
		return nil, errors.New("scan: no hasher configured")
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	absRoot, err := walker.Canonical(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	start := time.Now()
	result := &Result{
		Tree: tree.New(opts.Hasher),
		Root: absRoot,
	}

	files := make(chan walker.FileInfo, opts.Buffer)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(files)

		walkResult, err := walker.Walk(groupCtx, absRoot, opts.Exclude, files)
		if err != nil {
			return err
		}
		result.WalkErrors = walkResult.Errors
		return nil
	})

	group.Go(func() error {
		for info := range files {
			result.Visited++

			if err := insert(result, info, opts); err != nil {
				return err
			}

			if opts.Progress != nil {
				opts.Progress.Update(info.Path, result.Visited, result.Tree.Hashed(), len(result.Skipped))
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	slog.Info("scan finished",
		"root", absRoot,
		"files", result.Visited,
		"nodes", result.Tree.Len(),
		"hashed", result.Tree.Hashed(),
		"skipped", len(result.Skipped),
		"duration", result.Duration,
	)

	return result, nil
}

func insert(result *Result, info walker.FileInfo, opts Options) error {
	err := result.Tree.Insert(tree.NewFile(info.Name, info.Path, info.Size))
	if err == nil {
		return nil
	}

	var hashErr *tree.HashError
	if !errors.As(err, &hashErr) || opts.AbortOnError {
		return fmt.Errorf("scan aborted: %w", err)
	}

	slog.Warn("skipping file", "path", hashErr.Path, "evicted", hashErr.Evicted, "error", hashErr.Err)
	result.Skipped = append(result.Skipped, err)
	return nil
}
