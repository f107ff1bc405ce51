package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// NewOverlapCommand creates the overlap command.
func NewOverlapCommand(globals *Globals) *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "overlap <snapshot> <interval>",
		Short: "List intervals intersecting a query",
		Long: `List every stored interval sharing at least one point with the query,
in tree order.

Examples:
  intervaltree overlap events.ivt "[10,20]"
  intervaltree overlap events.ivt "(-inf,5)" --kind double`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				return runQuery(cmd, e, args[0], args[1], kindName, "overlap",
					func(tree *intervaltree.Tree, q interval.Interval) ([]interval.Interval, error) {
						return tree.Overlap(q)
					})
			})
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "kind of the query interval (default: tree kind, long for mixed trees)")

	return cmd
}

// NewFindCommand creates the find command.
func NewFindCommand(globals *Globals) *cobra.Command {
	var kindName, filterName string

	cmd := &cobra.Command{
		Use:   "find <snapshot> <interval>",
		Short: "List intervals equal to a query",
		Long: `List the stored intervals the filter considers equal to the query.

Filters:
  equal        identical bounds, flags, label and kind
  strictEqual  equal, restricted to the query kind
  weakEqual    strictEqual within a kind, interval across kinds
  interval     same normalized range

Examples:
  intervaltree find events.ivt "[10,20]@deploy"
  intervaltree find events.ivt "[10,20]" --filter interval`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				return runQuery(cmd, e, args[0], args[1], kindName, "find",
					func(tree *intervaltree.Tree, q interval.Interval) ([]interval.Interval, error) {
						if filterName == "" {
							return tree.Find(q)
						}

						filter, err := interval.LookupFilter(filterName)
						if err != nil {
							return nil, err
						}

						return tree.FindWith(q, filter)
					})
			})
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "kind of the query interval (default: tree kind, long for mixed trees)")
	cmd.Flags().StringVar(&filterName, "filter", "", "filter name (default: the snapshot filter)")

	return cmd
}

type queryFunc func(tree *intervaltree.Tree, q interval.Interval) ([]interval.Interval, error)

func runQuery(cmd *cobra.Command, e *env, snapshot, text, kindName, op string, query queryFunc) error {
	tree, err := e.loadSnapshot(cmd.Context(), snapshot)
	if err != nil {
		return err
	}

	q, err := parseQuery(tree, text, kindName)
	if err != nil {
		return err
	}

	var found []interval.Interval

	err = e.observe(cmd.Context(), op, func(context.Context) (int, error) {
		found, err = query(tree, q)

		return len(found), err
	})
	if err != nil {
		return err
	}

	renderIntervals(cmd.OutOrStdout(), found)

	return nil
}

// parseQuery reads text in interval notation with kindName, falling back
// to the tree kind and to long for mixed trees.
func parseQuery(tree *intervaltree.Tree, text, kindName string) (interval.Interval, error) {
	kind := tree.Configuration().Kind()

	if kindName != "" {
		parsed, err := numeric.ParseKind(kindName)
		if err != nil {
			return interval.Interval{}, err
		}

		kind = parsed
	}

	if kind == numeric.Invalid {
		kind = numeric.Long
	}

	q, err := interval.Parse(kind, text)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("query: %w", err)
	}

	return q, nil
}

func renderIntervals(out io.Writer, ivs []interval.Interval) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Interval", "Kind", "Label"})

	for i, iv := range ivs {
		tbl.AppendRow(table.Row{i + 1, iv.String(), iv.Kind().String(), iv.Label()})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d", len(ivs))})
	tbl.Render()
}
