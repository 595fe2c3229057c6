package resolve

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/dirmerge/internal/reconcile"
)

// scriptedChooser answers each group with a canned removal list.
type scriptedChooser struct {
	answers [][]string
	err     error
	calls   int
}

func (c *scriptedChooser) Choose(hash string, paths []string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	answer := c.answers[c.calls]
	c.calls++
	return answer, nil
}

func TestDedupPlan_MarksChosenDeletions(t *testing.T) {
	groups := []reconcile.DuplicateGroup{
		{Hash: "h1", Paths: []string{"/a/x/1.bin", "/a/x/2.bin", "/a/y/3.bin"}},
		{Hash: "h2", Paths: []string{"/a/p.txt", "/a/q.txt"}},
	}
	chooser := &scriptedChooser{answers: [][]string{
		{"/a/x/2.bin", "/a/y/3.bin"}, // keep 1.bin
		{},                           // keep all
	}}

	actions, err := DedupPlan(groups, chooser)
	require.NoError(t, err)
	require.Len(t, actions, 5)

	assert.Equal(t, DedupAction{Path: "/a/x/1.bin", Delete: false}, actions[0])
	assert.Equal(t, DedupAction{Path: "/a/x/2.bin", Delete: true}, actions[1])
	assert.Equal(t, DedupAction{Path: "/a/y/3.bin", Delete: true}, actions[2])
	assert.Equal(t, DedupAction{Path: "/a/p.txt", Delete: false}, actions[3])
	assert.Equal(t, DedupAction{Path: "/a/q.txt", Delete: false}, actions[4])
}

func TestDedupPlan_ChooserErrorPropagates(t *testing.T) {
	groups := []reconcile.DuplicateGroup{{Hash: "h", Paths: []string{"/a/1", "/a/2"}}}
	sentinel := errors.New("cancelled")

	_, err := DedupPlan(groups, &scriptedChooser{err: sentinel})
	assert.ErrorIs(t, err, sentinel)
}

func TestSyncPlan_TransfersTowardTheOtherRoot(t *testing.T) {
	missing := []reconcile.Missing{
		{Hash: "h1", SideRoot: "/tree/a", RelPath: "docs/a-only.txt"},
		{Hash: "h2", SideRoot: "/tree/b", RelPath: "pics/b-only.jpg"},
	}

	actions, err := SyncPlan(missing, []string{"/tree/a", "/tree/b"}, ModeCopy)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, SyncAction{
		SourcePath: filepath.Join("/tree/a", "docs/a-only.txt"),
		RelPath:    "docs/a-only.txt",
		DestRoot:   "/tree/b",
		Mode:       ModeCopy,
	}, actions[0])
	assert.Equal(t, "/tree/a", actions[1].DestRoot)
}

func TestSyncPlan_MoveMode(t *testing.T) {
	missing := []reconcile.Missing{{Hash: "h", SideRoot: "/tree/b", RelPath: "f.txt"}}

	actions, err := SyncPlan(missing, []string{"/tree/a", "/tree/b"}, ModeMove)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, ModeMove, actions[0].Mode)
}

func TestSyncPlan_RootCountIsUsageError(t *testing.T) {
	_, err := SyncPlan(nil, []string{"/only-one"}, ModeCopy)
	assert.ErrorIs(t, err, ErrRootCount)

	_, err = SyncPlan(nil, []string{"/a", "/b", "/c"}, ModeCopy)
	assert.ErrorIs(t, err, ErrRootCount)
}

func TestSyncPlan_UnknownRootIsError(t *testing.T) {
	missing := []reconcile.Missing{{Hash: "h", SideRoot: "/elsewhere", RelPath: "f.txt"}}

	_, err := SyncPlan(missing, []string{"/tree/a", "/tree/b"}, ModeCopy)
	assert.Error(t, err)
}
