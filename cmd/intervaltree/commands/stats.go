package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
	"github.com/Sumatoshi-tech/intervaltree/pkg/observability"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(globals *Globals) *cobra.Command {
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "Report the shape of a snapshot",
		Long: `Print the configuration and shape of a snapshot and verify its invariants.

With --metrics the tree, the collection cache and the operations of this
invocation are also gathered as Prometheus metric families.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				tree, err := e.loadSnapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				verifyErr := tree.Verify()

				renderStats(out, tree, verifyErr)

				if withMetrics {
					if err := renderMetrics(out, e, args[0], tree); err != nil {
						return err
					}
				}

				return verifyErr
			})
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "also print Prometheus metric families")

	return cmd
}

func renderStats(out io.Writer, tree *intervaltree.Tree, verifyErr error) {
	cfg := tree.Configuration()
	stats := tree.Stats()

	kind := "mixed"
	if cfg.Kind().Valid() {
		kind = cfg.Kind().String()
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Property", "Value"})
	tbl.AppendRows([]table.Row{
		{"kind", kind},
		{"comparator", cfg.Comparator().Name()},
		{"filter", cfg.Filter().Name()},
		{"collections", cfg.Factory().Name()},
		{"auto balancing", cfg.AutoBalancing()},
		{"intervals", humanize.Comma(int64(stats.Intervals))},
		{"nodes", humanize.Comma(int64(stats.Nodes))},
		{"leaves", humanize.Comma(int64(stats.Leaves))},
		{"height", stats.Height},
		{"max imbalance", stats.MaxImbalance},
		{"avg depth", fmt.Sprintf("%.2f", stats.AvgDepth)},
	})
	tbl.Render()

	if verifyErr != nil {
		color.New(color.FgRed).Fprintf(out, "invariants violated: %v\n", verifyErr)

		return
	}

	color.New(color.FgGreen).Fprintln(out, "invariants hold")
}

func renderMetrics(out io.Writer, e *env, name string, tree *intervaltree.Tree) error {
	registry := e.providers.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if err := registry.Register(observability.NewTreeCollector(name, tree)); err != nil {
		return fmt.Errorf("register tree collector: %w", err)
	}

	if factory, ok := tree.Configuration().Factory().(*collection.PersistentFactory); ok {
		if err := registry.Register(observability.NewCacheCollector(name, factory)); err != nil {
			return fmt.Errorf("register cache collector: %w", err)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Type", "Value"})

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64

			switch {
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}

			tbl.AppendRow(table.Row{mf.GetName(), mf.GetType().String(), humanize.Ftoa(value)})
		}
	}

	tbl.Render()

	return nil
}
