// Package report renders reconciliation results and action lists for the
// console.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/dirmerge/internal/hasher"
	"github.com/harrison/dirmerge/internal/reconcile"
	"github.com/harrison/dirmerge/internal/resolve"
)

// Printer writes human-readable output. Hashes are shown in their short
// display form only; equality was already decided on full fingerprints.
type Printer struct {
	w       io.Writer
	heading *color.Color
	danger  *color.Color
	safe    *color.Color
}

// NewPrinter creates a Printer for w. Color is enabled only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		danger:  color.New(color.FgRed),
		safe:    color.New(color.FgGreen),
	}
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		p.heading.DisableColor()
		p.danger.DisableColor()
		p.safe.DisableColor()
	}
	return p
}

// PrintResult renders all four relations.
func (p *Printer) PrintResult(res *reconcile.Result) {
	p.heading.Fprintln(p.w, "Moved:")
	if len(res.Moved) == 0 {
		fmt.Fprintln(p.w, "\t(none)")
	}
	for _, m := range res.Moved {
		fmt.Fprintf(p.w, "\t%s  %s -> %s\n", hasher.Short(m.Hash), m.PathA, m.PathB)
	}

	p.heading.Fprintln(p.w, "Changed:")
	if len(res.Changed) == 0 {
		fmt.Fprintln(p.w, "\t(none)")
	}
	for _, c := range res.Changed {
		fmt.Fprintf(p.w, "\t%s  %s != %s\n", c.RelPath, hasher.Short(c.HashA), hasher.Short(c.HashB))
	}

	p.heading.Fprintln(p.w, "Missing:")
	if len(res.Missing) == 0 {
		fmt.Fprintln(p.w, "\t(none)")
	}
	for _, m := range res.Missing {
		fmt.Fprintf(p.w, "\t%s  %s (in %s)\n", hasher.Short(m.Hash), m.RelPath, m.SideRoot)
	}

	p.heading.Fprintln(p.w, "Duplicates:")
	if len(res.DuplicatesA) == 0 && len(res.DuplicatesB) == 0 {
		fmt.Fprintln(p.w, "\t(none)")
	}
	p.printDuplicates(res.DuplicatesA)
	p.printDuplicates(res.DuplicatesB)
}

func (p *Printer) printDuplicates(groups []reconcile.DuplicateGroup) {
	for _, group := range groups {
		fmt.Fprintf(p.w, "\t%s\n", hasher.Short(group.Hash))
		for _, path := range group.Paths {
			fmt.Fprintf(p.w, "\t\t%s\n", path)
		}
	}
}

// PrintDedupActions renders a dedup action list, deletions in red and
// kept files in green.
func (p *Printer) PrintDedupActions(actions []resolve.DedupAction) {
	if len(actions) == 0 {
		fmt.Fprintln(p.w, "No duplicates found")
		return
	}
	for _, action := range actions {
		if action.Delete {
			p.danger.Fprintf(p.w, "delete  %s\n", action.Path)
		} else {
			p.safe.Fprintf(p.w, "keep    %s\n", action.Path)
		}
	}
}

// PrintSyncActions renders a sync action list.
func (p *Printer) PrintSyncActions(actions []resolve.SyncAction) {
	if len(actions) == 0 {
		fmt.Fprintln(p.w, "No files missing from either location")
		return
	}
	for _, action := range actions {
		fmt.Fprintf(p.w, "%-4s  %s -> %s\n", action.Mode, action.SourcePath, action.DestRoot)
	}
	fmt.Fprintf(p.w, "%d files to transfer\n", len(actions))
}
