// Package scanner walks one directory tree and emits an index Record per
// regular file, applying glob ignore patterns against the path relative to
// the root.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/harrison/dirmerge/internal/hasher"
	"github.com/harrison/dirmerge/internal/index"
	"github.com/harrison/dirmerge/internal/logger"
)

// Scanner walks a single tree root.
type Scanner struct {
	root   string
	side   index.Side
	ignore []string
	hasher *hasher.Hasher
	log    *logger.ConsoleLogger
}

// New creates a Scanner for root, which must be an existing directory.
// The root is resolved to an absolute path so records carry a stable
// side_root across working directories.
func New(root string, side index.Side, ignore []string, h *hasher.Hasher, log *logger.ConsoleLogger) (*Scanner, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	return &Scanner{
		root:   absRoot,
		side:   side,
		ignore: ignore,
		hasher: h,
		log:    log,
	}, nil
}

// Root returns the resolved absolute tree root.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the tree in a single pass and calls emit for every file that
// survives the ignore filter. When computeHash is false the emitted
// records carry an empty fingerprint, deferring hashing to the absorb
// optimizer.
//
// Any unreadable path or failed hash aborts the scan; per-file retry or
// isolation is deliberately not attempted.
func (s *Scanner) Scan(computeHash bool, emit func(index.Record) error) error {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		if s.isIgnored(filepath.ToSlash(relPath)) {
			s.log.Infof("Skipping file: %s", relPath)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		rec := index.Record{
			Side:     s.side,
			Size:     info.Size(),
			SideRoot: s.root,
			RelPath:  relPath,
		}

		if computeHash {
			s.log.Infof("Hashing file: %s", path)
			rec.Hash, err = s.hasher.HashFile(path)
			if err != nil {
				return fmt.Errorf("hash %s: %w", path, err)
			}
		} else {
			s.log.Debugf("Sized file: %s", path)
		}

		return emit(rec)
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.root, err)
	}
	return nil
}

// isIgnored matches the slash-separated relative path against the ignore
// globs.
func (s *Scanner) isIgnored(relPath string) bool {
	for _, pattern := range s.ignore {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		// Patterns without a separator also apply to the base name, so
		// ".DS_Store" matches at any depth.
		if matched, _ := doublestar.Match(pattern, filepath.Base(relPath)); matched {
			return true
		}
	}
	return false
}
