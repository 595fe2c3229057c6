package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/dirmerge/internal/hasher"
)

// LineReader defines interface for reading user input (for testing)
type LineReader interface {
	ReadString(delim byte) (string, error)
}

func newBufioReader(r io.Reader) LineReader {
	return bufio.NewReader(r)
}

// menuChooser resolves duplicate groups interactively: one numbered menu
// per group, the selected entry is kept and the rest are marked for
// deletion. It implements resolve.Chooser.
type menuChooser struct {
	out    io.Writer
	reader LineReader
}

func newMenuChooser(out io.Writer, reader LineReader) *menuChooser {
	return &menuChooser{out: out, reader: reader}
}

// Choose prompts for one duplicate group and returns the paths to remove.
// 'a' keeps every copy, 'n' keeps none.
func (c *menuChooser) Choose(hash string, paths []string) ([]string, error) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(c.out, "\nDuplicate group %s: which one should we keep?\n", hasher.Short(hash))
	for i, path := range paths {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, path)
	}
	cyan.Fprintf(c.out, "Keep (1-%d), 'a' for all, 'n' for none: ", len(paths))

	for {
		input, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read selection: %w", err)
		}
		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "a":
			return nil, nil
		case "n":
			return append([]string(nil), paths...), nil
		}

		selection, err := strconv.Atoi(input)
		if err == nil && selection >= 1 && selection <= len(paths) {
			remove := make([]string, 0, len(paths)-1)
			for i, path := range paths {
				if i != selection-1 {
					remove = append(remove, path)
				}
			}
			return remove, nil
		}

		fmt.Fprint(c.out, "Didn't catch that, try again: ")
	}
}
