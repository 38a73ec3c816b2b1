package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
)

// Hasher returns the content digest of the file at path.
type Hasher func(path string) ([]byte, error)

// HashError reports a file that could not be opened or fully read while
// computing its digest.
type HashError struct {
	Path string
	Err  error

	// Evicted is set when the file was already in the tree and has been
	// replaced by the descriptor being inserted.
	Evicted bool
}

func (e *HashError) Error() string {
	// os errors repeat the path
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return fmt.Sprintf("failed to hash %s: %s: %v", e.Path, pathErr.Op, pathErr.Err)
	}
	return fmt.Sprintf("failed to hash %s: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error {
	return e.Err
}

// File describes one discovered regular file.
type File struct {
	Name string
	Path string // canonical absolute path
	Size int64

	// Hash is nil until ComputeHash succeeds.
	Hash []byte

	// Next links the following member of a duplicate chain.
	Next *File

	// HasDupes is set on the chain head only.
	HasDupes bool
}

// NewFile returns a descriptor with no digest and no duplicates.
func NewFile(name, path string, size int64) *File {
	return &File{
		Name: name,
		Path: path,
		Size: size,
	}
}

// ComputeHash fills in Hash using h. Once a digest is stored further calls
// are no-ops and never reopen the file.
func (f *File) ComputeHash(h Hasher) error {
	if f.Hash != nil {
		return nil
	}

	sum, err := h(f.Path)
	if err != nil {
		return &HashError{Path: f.Path, Err: err}
	}

	slog.Debug("hashed file", "path", f.Path, "size", f.Size)
	f.Hash = sum
	return nil
}

// Chain returns f followed by every descriptor linked behind it.
func (f *File) Chain() []*File {
	var chain []*File
	for cur := f; cur != nil; cur = cur.Next {
		chain = append(chain, cur)
	}
	return chain
}

// link appends dup to the tail of f's duplicate chain.
func (f *File) link(dup *File) {
	tail := f
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = dup
	f.HasDupes = true
}
