// Package index stores FileRecords for both sides of a reconciliation in
// a SQLite database, partitioned by side and queryable by hash, size and
// relative path.
//
// Caching policy: a store file that already exists on disk is reused
// verbatim and scanning is skipped entirely. This makes repeated runs
// against the same store name fast, but produces stale results if the
// underlying trees changed between runs; delete or rename the store file
// to force a re-scan. Callers decide via Exists before opening.
package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store manages the SQLite database holding both index partitions.
type Store struct {
	db   *sql.DB
	path string
}

// Exists reports whether a store file is already present at path. This is
// the cache probe described in the package comment: a true result means a
// prior run's index will be reused and no scanning should happen.
func Exists(path string) bool {
	if path == ":memory:" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open opens (or creates) the store at path and ensures the schema exists.
// Parent directories are created for file-backed stores.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks instead of
	// failing when another invocation is initializing the same file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records a population run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, rootA, rootB, mode string) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO scan_runs (id, root_a, root_b, mode, started_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, rootA, rootB, mode, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("record scan run: %w", err)
	}
	return id, nil
}

// Insert commits one record. Each insert is its own transaction, so a
// crash mid-population leaves a consistent, partially filled index. A
// second record for the same (side, rel_path) violates the unique
// constraint and is an error, never a silent overwrite.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	query := `INSERT INTO files (side, hash, size, side_root, rel_path) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, string(rec.Side), rec.Hash, rec.Size, rec.SideRoot, rec.RelPath)
	if err != nil {
		return fmt.Errorf("insert record %s:%s: %w", rec.Side, rec.RelPath, err)
	}
	return nil
}

// SetHash updates the fingerprint of an already indexed record, used by
// the absorb optimizer once a deferred hash has been computed.
func (s *Store) SetHash(ctx context.Context, side Side, sideRoot, relPath, hash string) error {
	query := `UPDATE files SET hash = ? WHERE side = ? AND side_root = ? AND rel_path = ?`
	res, err := s.db.ExecContext(ctx, query, hash, string(side), sideRoot, relPath)
	if err != nil {
		return fmt.Errorf("update hash for %s:%s: %w", side, relPath, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no record for %s:%s", side, relPath)
	}
	return nil
}

// Records returns every record on one side, ordered by relative path.
func (s *Store) Records(ctx context.Context, side Side) ([]Record, error) {
	query := `SELECT side, hash, size, side_root, rel_path FROM files WHERE side = ? ORDER BY rel_path`
	return s.queryRecords(ctx, query, string(side))
}

// SizeMatches returns the side-A records whose size equals the size of at
// least one side-B record. Only these are candidates for sharing content
// with B, so absorb hashes just this subset.
func (s *Store) SizeMatches(ctx context.Context) ([]Record, error) {
	query := `SELECT side, hash, size, side_root, rel_path
		FROM files
		WHERE side = 'a' AND size IN (SELECT size FROM files WHERE side = 'b')
		ORDER BY rel_path`
	return s.queryRecords(ctx, query)
}

// Roots recovers the tree roots from a populated index, one per side.
// Used when a cached store is reused and no roots were given on the
// command line.
func (s *Store) Roots(ctx context.Context) (rootA, rootB string, err error) {
	query := `SELECT side_root FROM files WHERE side = ? LIMIT 1`

	if err := s.db.QueryRowContext(ctx, query, string(SideA)).Scan(&rootA); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("index holds no records for side A")
		}
		return "", "", fmt.Errorf("query side A root: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, string(SideB)).Scan(&rootB); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("index holds no records for side B")
		}
		return "", "", fmt.Errorf("query side B root: %w", err)
	}
	return rootA, rootB, nil
}

// UnhashedCount returns the number of records on one side still carrying
// an empty fingerprint, as left behind by an absorb population.
func (s *Store) UnhashedCount(ctx context.Context, side Side) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM files WHERE side = ? AND hash = ''`
	if err := s.db.QueryRowContext(ctx, query, string(side)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unhashed records: %w", err)
	}
	return n, nil
}

// Count returns the number of records on one side.
func (s *Store) Count(ctx context.Context, side Side) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM files WHERE side = ?`
	if err := s.db.QueryRowContext(ctx, query, string(side)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// QueryContext exposes read access for the reconciliation engine's named
// relation queries. The engine only runs after population completes, so
// these reads never overlap the single writer.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var side string
		if err := rows.Scan(&side, &rec.Hash, &rec.Size, &rec.SideRoot, &rec.RelPath); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		rec.Side = Side(side)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return records, nil
}
