package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
)

// ErrSnapshotsDiffer is returned by diff when the dumps are not identical.
var ErrSnapshotsDiffer = errors.New("snapshots differ")

// NewDumpCommand creates the dump command.
func NewDumpCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <snapshot>",
		Short: "Print the nodes of a snapshot in order",
		Long: `Print one line per node in ascending range order: the range key, the
subtree max, height and level, followed by the node's intervals.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				tree, err := e.loadSnapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return writeDump(cmd.OutOrStdout(), tree)
			})
		},
	}
}

func writeDump(w io.Writer, tree *intervaltree.Tree) error {
	for n := range tree.Nodes() {
		c, err := n.Collection()
		if err != nil {
			return fmt.Errorf("node %s: %w", n.Key(), err)
		}

		ivs := make([]string, 0, c.Len())
		for iv := range c.All() {
			ivs = append(ivs, iv.String())
		}

		fmt.Fprintf(w, "%s max=%s height=%d level=%d %s\n",
			n.Key(), n.Max(), n.Height(), n.Level(), strings.Join(ivs, " "))
	}

	return nil
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare the dumps of two snapshots",
		Long: `Print a line diff of the dumps of two snapshots. Exits with an error when
they differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				dumps := make([]string, len(args))

				for i, path := range args {
					tree, err := e.loadSnapshot(cmd.Context(), path)
					if err != nil {
						return err
					}

					var sb strings.Builder
					if err := writeDump(&sb, tree); err != nil {
						return err
					}

					dumps[i] = sb.String()
				}

				if !renderDiff(cmd.OutOrStdout(), dumps[0], dumps[1]) {
					return ErrSnapshotsDiffer
				}

				return nil
			})
		},
	}
}

// renderDiff writes the changed lines of a against b and reports whether
// they are identical.
func renderDiff(out io.Writer, a, b string) bool {
	dmp := diffmatchpatch.New()

	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lines)

	identical := true

	for _, d := range diffs {
		prefix, paint := "  ", color.New(color.Reset)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, paint, identical = "- ", color.New(color.FgRed), false
		case diffmatchpatch.DiffInsert:
			prefix, paint, identical = "+ ", color.New(color.FgGreen), false
		case diffmatchpatch.DiffEqual:
			continue
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(d.Text, "\n"), "\n") {
			paint.Fprintln(out, prefix+line)
		}
	}

	if identical {
		fmt.Fprintln(out, "snapshots are identical")
	}

	return identical
}
