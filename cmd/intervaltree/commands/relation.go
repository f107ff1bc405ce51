package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// NewRelationCommand creates the relation command.
func NewRelationCommand() *cobra.Command {
	var (
		kindA, kindB string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "relation <a> <b>",
		Short: "Classify two intervals by Allen's relations",
		Long: `Print the first of Allen's relations that holds between a and b.

Examples:
  intervaltree relation "[1,5]" "[3,8]"
  intervaltree relation "[1,5]" "[1.5,2]" --kind-b double`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseWithKind(args[0], kindA)
			if err != nil {
				return err
			}

			b, err := parseWithKind(args[1], kindB)
			if err != nil {
				return err
			}

			var cmp compare.Comparator = compare.Promoting{}
			if strict {
				cmp = compare.Strict{}
			}

			rel, err := interval.DetermineRelation(a, b, cmp)
			if err != nil {
				return err
			}

			paint := color.New(color.FgGreen, color.Bold)
			if rel == interval.RelationUndefined {
				paint = color.New(color.FgYellow)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", a, paint.Sprint(rel), b)

			return nil
		},
	}

	cmd.Flags().StringVar(&kindA, "kind-a", "long", "numeric kind of a")
	cmd.Flags().StringVar(&kindB, "kind-b", "long", "numeric kind of b")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject intervals of different kinds")

	return cmd
}

func parseWithKind(text, kindName string) (interval.Interval, error) {
	kind, err := numeric.ParseKind(kindName)
	if err != nil {
		return interval.Interval{}, err
	}

	return interval.Parse(kind, text)
}
