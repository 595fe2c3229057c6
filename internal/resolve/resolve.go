// Package resolve turns relations into structured action lists: deletion
// directives for duplicate groups and copy/move directives for missing
// files. It emits data, never script text; consumers decide how to apply
// the directives (a consumer executing a move is expected to create the
// destination's parent directories).
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/harrison/dirmerge/internal/reconcile"
)

// ErrRootCount is returned when resolution is given anything other than
// exactly two tree roots.
var ErrRootCount = errors.New("exactly two tree roots are required")

// Mode selects how a missing file is transferred.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeMove Mode = "move"
)

// DedupAction is one duplicate-group member with the decision applied:
// Delete marks the copies the chooser rejected.
type DedupAction struct {
	Path   string
	Delete bool
}

// SyncAction directs one missing file from the tree it was found in to the
// other tree, preserving its relative path.
type SyncAction struct {
	SourcePath string // absolute path of the existing file
	RelPath    string
	DestRoot   string
	Mode       Mode
}

// Chooser decides, for one duplicate group, which member paths to delete.
// The interactive CLI chooser implements this; tests script it.
type Chooser interface {
	Choose(hash string, paths []string) (remove []string, err error)
}

// DedupPlan walks the duplicate groups in order, asks the chooser about
// each, and returns one action per group member. Group and member order
// come from the engine and are stable across runs, so an interactive
// session sees identical prompts for identical trees.
func DedupPlan(groups []reconcile.DuplicateGroup, chooser Chooser) ([]DedupAction, error) {
	var actions []DedupAction
	for _, group := range groups {
		remove, err := chooser.Choose(group.Hash, group.Paths)
		if err != nil {
			return nil, fmt.Errorf("resolve duplicate group %s: %w", group.Hash, err)
		}

		doomed := make(map[string]bool, len(remove))
		for _, path := range remove {
			doomed[path] = true
		}
		for _, path := range group.Paths {
			actions = append(actions, DedupAction{Path: path, Delete: doomed[path]})
		}
	}
	return actions, nil
}

// SyncPlan converts the Missing relation into transfer directives between
// the two roots. Each missing file is sent from the root it lives in to
// the other root under the same relative path.
func SyncPlan(missing []reconcile.Missing, roots []string, mode Mode) ([]SyncAction, error) {
	if len(roots) != 2 {
		return nil, fmt.Errorf("%w, got %d", ErrRootCount, len(roots))
	}

	var actions []SyncAction
	for _, m := range missing {
		var dest string
		switch m.SideRoot {
		case roots[0]:
			dest = roots[1]
		case roots[1]:
			dest = roots[0]
		default:
			return nil, fmt.Errorf("missing file root %s is not one of the supplied roots", m.SideRoot)
		}

		actions = append(actions, SyncAction{
			SourcePath: filepath.Join(m.SideRoot, m.RelPath),
			RelPath:    m.RelPath,
			DestRoot:   dest,
			Mode:       mode,
		})
	}
	return actions, nil
}
