package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	assert.False(t, Exists(path))

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.True(t, Exists(path))
	assert.False(t, Exists(":memory:"))
}

func TestInsertAndRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	records := []Record{
		{Side: SideA, Hash: "h1", Size: 10, SideRoot: "/tree/a", RelPath: "docs/one.txt"},
		{Side: SideA, Hash: "h2", Size: 20, SideRoot: "/tree/a", RelPath: "docs/two.txt"},
		{Side: SideB, Hash: "h1", Size: 10, SideRoot: "/tree/b", RelPath: "moved/one.txt"},
	}
	for _, rec := range records {
		require.NoError(t, store.Insert(ctx, rec))
	}

	aRecords, err := store.Records(ctx, SideA)
	require.NoError(t, err)
	require.Len(t, aRecords, 2)
	assert.Equal(t, "docs/one.txt", aRecords[0].RelPath)
	assert.Equal(t, "h1", aRecords[0].Hash)
	assert.Equal(t, int64(10), aRecords[0].Size)

	bCount, err := store.Count(ctx, SideB)
	require.NoError(t, err)
	assert.Equal(t, 1, bCount)
}

func TestInsert_PathCollisionIsError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := Record{Side: SideA, Hash: "h1", Size: 10, SideRoot: "/tree/a", RelPath: "same.txt"}
	require.NoError(t, store.Insert(ctx, rec))

	rec.Hash = "other"
	err := store.Insert(ctx, rec)
	assert.Error(t, err, "duplicate (side, rel_path) must not silently overwrite")

	// The same path on the other side is fine.
	rec.Side = SideB
	assert.NoError(t, store.Insert(ctx, rec))
}

func TestInsert_SameHashTwicePerSideIsAllowed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Hash: "dup", Size: 5, SideRoot: "/a", RelPath: "x/1.bin"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Hash: "dup", Size: 5, SideRoot: "/a", RelPath: "x/2.bin"}))

	n, err := store.Count(ctx, SideA)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSetHash(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Size: 7, SideRoot: "/a", RelPath: "f.bin"}))
	require.NoError(t, store.SetHash(ctx, SideA, "/a", "f.bin", "computed"))

	records, err := store.Records(ctx, SideA)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "computed", records[0].Hash)

	err = store.SetHash(ctx, SideA, "/a", "missing.bin", "x")
	assert.Error(t, err)
}

func TestSizeMatches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Size: 100, SideRoot: "/a", RelPath: "candidate.bin"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Size: 999, SideRoot: "/a", RelPath: "unique-size.bin"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideB, Hash: "bh", Size: 100, SideRoot: "/b", RelPath: "peer.bin"}))

	matches, err := store.SizeMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "candidate.bin", matches[0].RelPath)
}

func TestUnhashedCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Size: 100, SideRoot: "/a", RelPath: "deferred.bin"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Hash: "h", Size: 5, SideRoot: "/a", RelPath: "done.bin"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideB, Hash: "h", Size: 5, SideRoot: "/b", RelPath: "done.bin"}))

	n, err := store.UnhashedCount(ctx, SideA)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.UnhashedCount(ctx, SideB)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRoots(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _, err := store.Roots(ctx)
	assert.Error(t, err, "empty index has no roots")

	require.NoError(t, store.Insert(ctx, Record{Side: SideA, Hash: "h", Size: 1, SideRoot: "/tree/a", RelPath: "f"}))
	require.NoError(t, store.Insert(ctx, Record{Side: SideB, Hash: "h", Size: 1, SideRoot: "/tree/b", RelPath: "f"}))

	rootA, rootB, err := store.Roots(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/tree/a", rootA)
	assert.Equal(t, "/tree/b", rootB)
}

func TestBeginRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.BeginRun(ctx, "/tree/a", "/tree/b", "full")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	other, err := store.BeginRun(ctx, "/tree/a", "/tree/b", "absorb")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}
