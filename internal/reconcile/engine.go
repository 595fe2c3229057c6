// Package reconcile derives the four file relations (Changed, Missing,
// Moved and Duplicate) from a populated index.
//
// Every relation is a pure read over the store through a named,
// parameterized query function; the index is immutable by the time the
// engine runs, so the relations may be computed in any order.
package reconcile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/dirmerge/internal/index"
)

// Changed is a pair whose relative path matches on both sides while the
// content differs.
type Changed struct {
	RelPath string
	HashA   string
	HashB   string
}

// Missing is a record on one side whose content has no counterpart on the
// other side.
type Missing struct {
	Hash     string
	SideRoot string
	RelPath  string
}

// Moved is a pair whose content matches across sides under different
// relative paths.
type Moved struct {
	Hash  string
	PathA string
	PathB string
}

// DuplicateGroup collects all records on one side sharing one fingerprint,
// ordered by (side_root, rel_path) so interactive resolution sees the same
// candidate order on every run.
type DuplicateGroup struct {
	Hash  string
	Paths []string
}

// Result is the full classification of both trees.
type Result struct {
	Changed     []Changed
	Missing     []Missing
	Moved       []Moved
	DuplicatesA []DuplicateGroup
	DuplicatesB []DuplicateGroup
}

// Engine computes relations over an index store.
type Engine struct {
	store *index.Store
}

// NewEngine creates an Engine reading from store.
func NewEngine(store *index.Store) *Engine {
	return &Engine{store: store}
}

// Reconcile computes all four relations. Changed is computed first because
// Missing excludes every path Changed already claims: a changed file must
// not additionally be reported missing. When aOnly is true, Missing holds
// only the files absent from side A, the mode used when merging everything
// toward A.
func (e *Engine) Reconcile(ctx context.Context, aOnly bool) (*Result, error) {
	changed, err := e.ChangedFiles(ctx)
	if err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(changed))
	for _, c := range changed {
		exclude = append(exclude, c.RelPath)
	}

	missing, err := e.MissingFiles(ctx, exclude, aOnly)
	if err != nil {
		return nil, err
	}
	moved, err := e.MovedFiles(ctx)
	if err != nil {
		return nil, err
	}
	dupsA, err := e.DuplicateGroups(ctx, index.SideA)
	if err != nil {
		return nil, err
	}
	dupsB, err := e.DuplicateGroups(ctx, index.SideB)
	if err != nil {
		return nil, err
	}

	return &Result{
		Changed:     changed,
		Missing:     missing,
		Moved:       moved,
		DuplicatesA: dupsA,
		DuplicatesB: dupsB,
	}, nil
}

// ChangedFiles returns the pairs matched by relative path whose
// fingerprints differ. An unhashed side-A record still pairs here: absorb
// only skips hashing files whose size matches nothing in B, so a same-path
// pair with one empty fingerprint necessarily differs in size and
// therefore in content.
func (e *Engine) ChangedFiles(ctx context.Context) ([]Changed, error) {
	query := `SELECT a.hash, b.hash, a.rel_path
		FROM files a
		JOIN files b ON b.rel_path = a.rel_path
		WHERE a.side = 'a' AND b.side = 'b' AND b.hash != a.hash
		ORDER BY a.rel_path`

	rows, err := e.store.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query changed: %w", err)
	}
	defer rows.Close()

	var changed []Changed
	for rows.Next() {
		var c Changed
		if err := rows.Scan(&c.HashA, &c.HashB, &c.RelPath); err != nil {
			return nil, fmt.Errorf("scan changed row: %w", err)
		}
		changed = append(changed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changed rows: %w", err)
	}
	return changed, nil
}

// MissingFiles returns the records whose fingerprint does not occur on the
// other side, skipping excludePaths (the paths Changed already claims) and
// skipping records that were never hashed, since an empty fingerprint
// carries no content claim. With aOnly set, only the B-side records absent
// from A are returned.
func (e *Engine) MissingFiles(ctx context.Context, excludePaths []string, aOnly bool) ([]Missing, error) {
	notInA, err := e.missingFrom(ctx, index.SideB, excludePaths)
	if err != nil {
		return nil, err
	}
	if aOnly {
		return notInA, nil
	}

	notInB, err := e.missingFrom(ctx, index.SideA, excludePaths)
	if err != nil {
		return nil, err
	}
	return append(notInA, notInB...), nil
}

// missingFrom returns records on side `from` whose hash has no counterpart
// on the opposite side. The exclusion set is applied in memory while
// scanning rows; inlining it into the query as placeholders would cap the
// Changed relation at SQLite's bound-variable limit.
func (e *Engine) missingFrom(ctx context.Context, from index.Side, excludePaths []string) ([]Missing, error) {
	query := `SELECT hash, side_root, rel_path
		FROM files
		WHERE side = ? AND hash != ''
		AND hash NOT IN (SELECT hash FROM files WHERE side = ?)
		ORDER BY rel_path`

	rows, err := e.store.QueryContext(ctx, query, string(from), string(from.Other()))
	if err != nil {
		return nil, fmt.Errorf("query missing: %w", err)
	}
	defer rows.Close()

	excluded := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excluded[p] = struct{}{}
	}

	var missing []Missing
	for rows.Next() {
		var m Missing
		if err := rows.Scan(&m.Hash, &m.SideRoot, &m.RelPath); err != nil {
			return nil, fmt.Errorf("scan missing row: %w", err)
		}
		if _, ok := excluded[m.RelPath]; ok {
			continue
		}
		missing = append(missing, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missing rows: %w", err)
	}
	return missing, nil
}

// MovedFiles returns the cross-side hash join restricted to differing
// paths. Paths that occur with the same hash on both sides are anchored:
// every join row touching an anchored path is dropped, otherwise an
// unchanged file would be misreported as moved merely because another copy
// of the same content exists elsewhere.
func (e *Engine) MovedFiles(ctx context.Context) ([]Moved, error) {
	query := `WITH hashjoin AS (
			SELECT a.hash AS hash, a.rel_path AS a_path, b.rel_path AS b_path
			FROM files a
			JOIN files b ON b.hash = a.hash
			WHERE a.side = 'a' AND b.side = 'b' AND a.hash != ''
		),
		anchored AS (
			SELECT a_path FROM hashjoin WHERE a_path = b_path
		)
		SELECT hash, a_path, b_path
		FROM hashjoin
		WHERE a_path != b_path
		AND a_path NOT IN (SELECT a_path FROM anchored)
		AND b_path NOT IN (SELECT a_path FROM anchored)
		ORDER BY a_path, b_path`

	rows, err := e.store.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query moved: %w", err)
	}
	defer rows.Close()

	var moved []Moved
	for rows.Next() {
		var m Moved
		if err := rows.Scan(&m.Hash, &m.PathA, &m.PathB); err != nil {
			return nil, fmt.Errorf("scan moved row: %w", err)
		}
		moved = append(moved, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moved rows: %w", err)
	}
	return moved, nil
}

// DuplicateGroups returns, for one side, every fingerprint occurring more
// than once together with all its full paths. Grouping is an explicit
// in-memory step over the sorted row set; groups are ordered by hash and
// members by (side_root, rel_path), so repeated runs over identical trees
// present candidates in the same order.
func (e *Engine) DuplicateGroups(ctx context.Context, side index.Side) ([]DuplicateGroup, error) {
	query := `SELECT hash, side_root, rel_path
		FROM files
		WHERE side = ? AND hash != ''
		AND hash IN (
			SELECT hash FROM files
			WHERE side = ? AND hash != ''
			GROUP BY hash
			HAVING COUNT(*) > 1
		)
		ORDER BY hash, side_root, rel_path`

	rows, err := e.store.QueryContext(ctx, query, string(side), string(side))
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	byHash := map[string]int{}
	for rows.Next() {
		var hash, sideRoot, relPath string
		if err := rows.Scan(&hash, &sideRoot, &relPath); err != nil {
			return nil, fmt.Errorf("scan duplicate row: %w", err)
		}

		idx, ok := byHash[hash]
		if !ok {
			idx = len(groups)
			byHash[hash] = idx
			groups = append(groups, DuplicateGroup{Hash: hash})
		}
		groups[idx].Paths = append(groups[idx].Paths, filepath.Join(sideRoot, relPath))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate rows: %w", err)
	}
	return groups, nil
}
