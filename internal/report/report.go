// Package report renders the duplicate groups found by a scan.
package report

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	merkletree "github.com/txaty/go-merkletree"

	"dupetree/internal/hash"
	"dupetree/internal/scan"
)

const generator = "dupetree"

type Group struct {
	Size   int64    `json:"size"`
	Hash   string   `json:"hash"`
	Wasted int64    `json:"wasted"`
	Files  []string `json:"files"`
}

type Report struct {
	Generator   string    `json:"generator"`
	Created     time.Time `json:"created"`
	Root        string    `json:"root"`
	Algorithm   string    `json:"algorithm"`
	Files       int       `json:"files"`
	Hashed      int       `json:"hashed"`
	Skipped     []string  `json:"skipped,omitempty"`
	Groups      []Group   `json:"groups"`
	Wasted      int64     `json:"wasted"`
	Fingerprint string    `json:"fingerprint"`
}

// Build collects the duplicate groups of a finished scan.
func Build(result *scan.Result, algorithm string) (*Report, error) {
	r := &Report{
		Generator: generator,
		Created:   time.Now(),
		Root:      result.Root,
		Algorithm: algorithm,
		Files:     result.Visited,
		Hashed:    result.Tree.Hashed(),
		Groups:    make([]Group, 0),
	}

	for _, err := range result.Skipped {
		r.Skipped = append(r.Skipped, err.Error())
	}

	for _, g := range result.Tree.Duplicates() {
		group := Group{
			Size:   g.Size,
			Hash:   hex.EncodeToString(g.Hash),
			Wasted: g.Wasted(),
			Files:  make([]string, 0, len(g.Files)),
		}
		for _, f := range g.Files {
			group.Files = append(group.Files, f.Path)
		}
		r.Groups = append(r.Groups, group)
		r.Wasted += group.Wasted
	}

	fingerprint, err := Fingerprint(r.Groups)
	if err != nil {
		return nil, err
	}
	r.Fingerprint = fingerprint

	return r, nil
}

// Duplicates returns the number of files that have an identical earlier copy.
func (r *Report) Duplicates() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Files) - 1
	}
	return n
}

type groupBlock struct {
	size   int64
	digest []byte
}

func (b groupBlock) Serialize() ([]byte, error) {
	buf := make([]byte, 8, 8+len(b.digest))
	binary.BigEndian.PutUint64(buf, uint64(b.size))
	return append(buf, b.digest...), nil
}

// Fingerprint is the merkle root over the (size, digest) pairs of groups,
// in report order. Two scans with the same duplicate sets share it.
func Fingerprint(groups []Group) (string, error) {
	blocks := make([]merkletree.DataBlock, 0, len(groups))
	for _, g := range groups {
		digest, err := hex.DecodeString(g.Hash)
		if err != nil {
			return "", fmt.Errorf("failed to decode group hash: %w", err)
		}
		blocks = append(blocks, groupBlock{size: g.Size, digest: digest})
	}

	switch len(blocks) {
	case 0:
		return "", nil
	case 1:
		// the merkle tree needs at least two leaves
		data, _ := blocks[0].Serialize()
		leaf, err := hash.XXHashFunc(data)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(leaf), nil
	}

	tree, err := merkletree.New(&merkletree.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     merkletree.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build fingerprint: %w", err)
	}

	return hex.EncodeToString(tree.Root), nil
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
