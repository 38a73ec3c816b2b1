package hash

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	stdhash "hash"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "sha256"

// Algorithm describes a content digest usable for duplicate detection.
type Algorithm struct {
	Name          string
	Size          int
	Cryptographic bool
	New           func() stdhash.Hash
}

var algorithms = map[string]*Algorithm{
	"sha256": {
		Name:          "sha256",
		Size:          sha256.Size,
		Cryptographic: true,
		New:           sha256.New,
	},
	"sha512": {
		Name:          "sha512",
		Size:          sha512.Size,
		Cryptographic: true,
		New:           sha512.New,
	},
	"sha3-256": {
		Name:          "sha3-256",
		Size:          32,
		Cryptographic: true,
		New:           sha3.New256,
	},
	"blake3": {
		Name:          "blake3",
		Size:          32,
		Cryptographic: true,
		New:           func() stdhash.Hash { return blake3.New() },
	},
	// Fast, but not collision resistant. Only for trusted trees.
	"xxhash": {
		Name:          "xxhash",
		Size:          8,
		Cryptographic: false,
		New:           func() stdhash.Hash { return xxhash.New() },
	},
}

// Lookup returns the algorithm registered under name (case-insensitive).
// An empty name selects DefaultAlgorithm.
func Lookup(name string) (*Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultAlgorithm
	}

	algo, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
	return algo, nil
}

// Algorithms lists all registered algorithms sorted by name.
func Algorithms() []*Algorithm {
	list := make([]*Algorithm, 0, len(algorithms))
	for _, algo := range algorithms {
		list = append(list, algo)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// HashFile streams the file at path through algo and returns the raw digest.
// The file handle never outlives the call.
func HashFile(path string, algo *Algorithm) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := algo.New()
	buf := make([]byte, bufferSize)

	for {
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	return h.Sum(nil), nil
}

// Func binds algo to HashFile, yielding the path-to-digest function
// the comparison tree expects.
func Func(algo *Algorithm) func(path string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		return HashFile(path, algo)
	}
}

// XXHashFunc is a custom hash function adapter for go-merkletree
// It converts []byte input to xxHash []byte output
func XXHashFunc(data []byte) ([]byte, error) {
	sum := xxhash.Sum64(data)

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return buf, nil
}
