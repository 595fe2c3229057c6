// Package hasher computes content fingerprints for files.
//
// Fingerprints are hex-encoded SHA-256 digests. Files below the configured
// prefix limit are hashed in full; larger files are fingerprinted by their
// leading bytes only, which bounds the worst-case I/O cost of indexing very
// large files. Two files compare equal only on the full fingerprint string;
// the shortened form returned by Short is for display.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const (
	blockSize = 512
	maxBlocks = 20480

	// DefaultPrefixBytes is the default hashing limit: 10 MiB, expressed as
	// a fixed number of fixed-size blocks.
	DefaultPrefixBytes = blockSize * maxBlocks

	readBufferSize = 64 * 1024
)

// Hasher fingerprints file contents up to a configurable prefix limit.
type Hasher struct {
	prefixBytes int64
}

// New returns a Hasher with the default 10 MiB prefix limit.
func New() *Hasher {
	return NewWithPrefix(DefaultPrefixBytes)
}

// NewWithPrefix returns a Hasher that reads at most prefixBytes of each
// file. Values below one block are raised to a single block so the limit
// is always block-aligned.
func NewWithPrefix(prefixBytes int64) *Hasher {
	if prefixBytes < blockSize {
		prefixBytes = blockSize
	}
	return &Hasher{prefixBytes: prefixBytes}
}

// HashFile returns the hex SHA-256 fingerprint of the file at path.
// Files smaller than the prefix limit are hashed whole; larger files are
// hashed over their first prefixBytes only.
//
// An unreadable or vanished file is an error, never an empty fingerprint:
// recording a sentinel hash would make unrelated unreadable files compare
// equal during reconciliation.
func (h *Hasher) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if info.Size() >= h.prefixBytes {
		reader = io.LimitReader(file, h.prefixBytes)
	}

	return hashReader(reader)
}

// hashReader digests the reader with a fixed-size buffer and returns the
// hex encoded sum.
func hashReader(r io.Reader) (string, error) {
	digest := sha256.New()
	buffer := make([]byte, readBufferSize)

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			if _, werr := digest.Write(buffer[:n]); werr != nil {
				return "", fmt.Errorf("write to digest: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// Short returns the display form of a fingerprint: its first 19 hex
// characters. It must never be used for equality joins.
func Short(fingerprint string) string {
	if len(fingerprint) <= 19 {
		return fingerprint
	}
	return fingerprint[:19]
}
