package hash

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestHashFile_SmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	algo, err := Lookup("sha256")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	digest, err := HashFile(testFile, algo)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	expected := sha256.Sum256(content)
	if !bytes.Equal(digest, expected[:]) {
		t.Errorf("Hash mismatch: expected %x, got %x", expected, digest)
	}
}

func TestHashFile_LargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	// Larger than the streaming buffer
	size := 1024 * 1024
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}

	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	algo, _ := Lookup("xxhash")
	digest, err := HashFile(testFile, algo)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	h := xxhash.New()
	h.Write(data)
	if !bytes.Equal(digest, h.Sum(nil)) {
		t.Errorf("Hash mismatch: expected %x, got %x", h.Sum(nil), digest)
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	algo, _ := Lookup(DefaultAlgorithm)
	_, err := HashFile("/nonexistent/file.txt", algo)
	if err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected not-exist cause, got %v", err)
	}
}

func TestHashFile_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "empty.txt")

	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	for _, algo := range Algorithms() {
		digest, err := HashFile(testFile, algo)
		if err != nil {
			t.Fatalf("%s: HashFile failed: %v", algo.Name, err)
		}
		if len(digest) != algo.Size {
			t.Errorf("%s: expected %d byte digest, got %d", algo.Name, algo.Size, len(digest))
		}
	}
}

func TestLookup(t *testing.T) {
	algo, err := Lookup("")
	if err != nil {
		t.Fatalf("Lookup of empty name failed: %v", err)
	}
	if algo.Name != DefaultAlgorithm {
		t.Errorf("Expected default %q, got %q", DefaultAlgorithm, algo.Name)
	}

	algo, err = Lookup(" BLAKE3 ")
	if err != nil {
		t.Fatalf("Lookup should be case-insensitive: %v", err)
	}
	if algo.Name != "blake3" {
		t.Errorf("Expected blake3, got %q", algo.Name)
	}

	if _, err := Lookup("md4"); err == nil {
		t.Error("Lookup should fail for unknown algorithm")
	}
}

func TestAlgorithms_Sorted(t *testing.T) {
	list := Algorithms()
	if len(list) != 5 {
		t.Fatalf("Expected 5 algorithms, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("Algorithms not sorted: %s before %s", list[i-1].Name, list[i].Name)
		}
	}
}

func TestFunc(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "a.txt")
	if err := os.WriteFile(testFile, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	algo, _ := Lookup("sha512")
	digest, err := Func(algo)(testFile)
	if err != nil {
		t.Fatalf("Func failed: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("Expected 64 bytes, got %d", len(digest))
	}
}

func TestXXHashFunc(t *testing.T) {
	data := []byte("test data")

	hashBytes, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}

	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}

	hashBytes2, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed on second call: %v", err)
	}

	if !bytes.Equal(hashBytes, hashBytes2) {
		t.Error("XXHashFunc should be deterministic")
	}
}
