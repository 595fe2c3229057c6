package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestHashFile_SmallFileHashedWhole(t *testing.T) {
	dir := t.TempDir()
	content := []byte("hello reconciliation")
	path := writeFile(t, dir, "small.txt", content)

	got, err := New().HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("fingerprint = %s, want %s", got, want)
	}
}

func TestHashFile_LargeFileUsesPrefixOnly(t *testing.T) {
	dir := t.TempDir()

	prefix := make([]byte, 2048)
	for i := range prefix {
		prefix[i] = byte(i % 251)
	}
	large := append(append([]byte{}, prefix...), []byte("tail beyond the limit")...)

	largePath := writeFile(t, dir, "large.bin", large)
	prefixPath := writeFile(t, dir, "prefix.bin", prefix)

	h := NewWithPrefix(2048)

	largeHash, err := h.HashFile(largePath)
	if err != nil {
		t.Fatalf("HashFile(large): %v", err)
	}
	prefixHash, err := h.HashFile(prefixPath)
	if err != nil {
		t.Fatalf("HashFile(prefix): %v", err)
	}

	if largeHash != prefixHash {
		t.Error("file above the limit should hash identically to its prefix")
	}

	fullSum := sha256.Sum256(large)
	if largeHash == hex.EncodeToString(fullSum[:]) {
		t.Error("file above the limit must not be hashed in full")
	}
}

func TestHashFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.txt", []byte("same content"))

	h := New()
	first, err := h.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	second, err := h.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	if first != second {
		t.Errorf("fingerprints differ across runs: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint should be 64 hex characters, got %d", len(first))
	}
}

func TestHashFile_MissingFileIsError(t *testing.T) {
	_, err := New().HashFile(filepath.Join(t.TempDir(), "vanished.txt"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestShort(t *testing.T) {
	full := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	if got := Short(full); got != "0123456789abcdef012" {
		t.Errorf("Short = %q", got)
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short of short input = %q", got)
	}
}
