package scan

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupetree/internal/hash"
	"dupetree/internal/progress"
	"dupetree/internal/tree"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func sha256Options(t *testing.T) Options {
	t.Helper()
	algo, err := hash.Lookup("sha256")
	require.NoError(t, err)
	return Options{Hasher: hash.Func(algo)}
}

func TestRun_FindsDuplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":          "hello world",
		"sub/b.txt":      "hello world",
		"sub/deep/c.txt": "hello world",
		"d.txt":          "hello there",
		"e.txt":          "unique and longer",
		"empty1":         "",
		"empty2":         "",
	})

	result, err := Run(context.Background(), root, sha256Options(t))
	require.NoError(t, err)

	assert.Equal(t, 7, result.Visited)
	assert.Equal(t, 7, result.Tree.Files())
	assert.Empty(t, result.Skipped)

	groups := result.Tree.Duplicates()
	require.Len(t, groups, 2)

	assert.Equal(t, int64(0), groups[0].Size)
	assert.Len(t, groups[0].Files, 2)

	assert.Equal(t, int64(11), groups[1].Size)
	names := make([]string, 0, 3)
	for _, f := range groups[1].Files {
		names = append(names, f.Name)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, names)
}

func TestRun_Exclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.txt":      "same",
		"skip/copy.txt": "same",
		"other.tmp":     "same",
	})

	opts := sha256Options(t)
	opts.Exclude = []string{"skip/", "*.tmp"}

	result, err := Run(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Visited)
	assert.Empty(t, result.Tree.Duplicates())
}

func TestRun_NoHasher(t *testing.T) {
	_, err := Run(context.Background(), t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestRun_MissingRoot(t *testing.T) {
	_, err := Run(context.Background(), "/nonexistent/root", sha256Options(t))
	assert.Error(t, err)
}

// flakyHasher fails for one path and hashes everything else by content.
func flakyHasher(t *testing.T, bad string) tree.Hasher {
	algo, err := hash.Lookup("sha256")
	require.NoError(t, err)
	return func(path string) ([]byte, error) {
		if filepath.Base(path) == bad {
			return nil, fs.ErrPermission
		}
		return hash.HashFile(path, algo)
	}
}

func TestRun_SkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "same",
		"b.txt": "same",
		"c.txt": "same",
	})

	opts := Options{Hasher: flakyHasher(t, "b.txt")}
	result, err := Run(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Visited)
	require.Len(t, result.Skipped, 1)

	var hashErr *tree.HashError
	require.True(t, errors.As(result.Skipped[0], &hashErr))
	assert.Equal(t, "b.txt", filepath.Base(hashErr.Path))
	assert.ErrorIs(t, result.Skipped[0], fs.ErrPermission)

	assert.False(t, hashErr.Evicted)

	groups := result.Tree.Duplicates()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Files, 2)
	assert.Equal(t, "a.txt", groups[0].Files[0].Name)
	assert.Equal(t, "c.txt", groups[0].Files[1].Name)
}

func TestRun_SkipsUnreadableFirstOfSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "aaa",
		"b.txt": "bbb",
		"c.txt": "bbb",
		"d.txt": "ddd",
	})

	// a.txt is walked first and becomes the node every later file ties with.
	opts := Options{Hasher: flakyHasher(t, "a.txt")}
	result, err := Run(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Visited)
	require.Len(t, result.Skipped, 1)

	var hashErr *tree.HashError
	require.True(t, errors.As(result.Skipped[0], &hashErr))
	assert.Equal(t, "a.txt", filepath.Base(hashErr.Path))
	assert.True(t, hashErr.Evicted)

	assert.Equal(t, 3, result.Tree.Files())
	assert.Equal(t, 2, result.Tree.Len())

	groups := result.Tree.Duplicates()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Files, 2)
	assert.Equal(t, "b.txt", groups[0].Files[0].Name)
	assert.Equal(t, "c.txt", groups[0].Files[1].Name)
}

func TestRun_AbortsOnUnreadable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "same",
		"b.txt": "same",
	})

	opts := Options{Hasher: flakyHasher(t, "b.txt"), AbortOnError: true}
	_, err := Run(context.Background(), root, opts)
	require.Error(t, err)

	var hashErr *tree.HashError
	assert.True(t, errors.As(err, &hashErr))
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, root, sha256Options(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Progress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b.txt": "bb"})

	var buf bytes.Buffer
	opts := sha256Options(t)
	opts.Progress = progress.New(&buf, true)

	_, err := Run(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "files")
}
