package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
)

// ErrMissingOutput is returned when build has no snapshot path.
var ErrMissingOutput = errors.New("missing --output snapshot path")

type buildOptions struct {
	output           string
	kind             string
	collection       string
	compress         bool
	noBalance        bool
	writeCollections bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand(globals *Globals) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build <dataset.{yaml,json}>",
		Short: "Index a dataset into a snapshot",
		Long: `Insert every interval of a YAML or JSON dataset into a tree and save it.

Flags override the tree section of the config file; the dataset kind
overrides the configured kind.

Examples:
  intervaltree build events.yaml -o events.ivt
  intervaltree build events.json -o events.ivt --compress --collection list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return globals.withEnv(cmd, func(e *env) error {
				return runBuild(cmd, e, args[0], opts, globals.Quiet)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "snapshot file to write")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "numeric kind or \"mixed\" (default: dataset, then config)")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "node collection: set or list")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "LZ4-compress the snapshot body")
	cmd.Flags().BoolVar(&opts.noBalance, "no-balance", false, "disable AVL rebalancing")
	cmd.Flags().BoolVar(&opts.writeCollections, "write-collections", false,
		"embed collections even when a store holds them")

	return cmd
}

func runBuild(cmd *cobra.Command, e *env, path string, opts *buildOptions, quiet bool) error {
	if opts.output == "" {
		return ErrMissingOutput
	}

	ds, err := readDataset(path)
	if err != nil {
		return err
	}

	kindName := e.cfg.Tree.Kind

	switch {
	case opts.kind != "":
		kindName = opts.kind
	case ds.Kind != "":
		kindName = ds.Kind
	}

	if opts.collection != "" {
		e.cfg.Tree.Collection = opts.collection
	}

	if cmd.Flags().Changed("no-balance") {
		e.cfg.Tree.AutoBalancing = !opts.noBalance
	}

	if cmd.Flags().Changed("write-collections") {
		e.cfg.Tree.WriteCollections = opts.writeCollections
	}

	compress := e.cfg.Tree.Compress || opts.compress

	ivs, err := ds.intervals(kindName)
	if err != nil {
		return err
	}

	b, err := e.builder(kindName)
	if err != nil {
		return err
	}

	tree, err := b.Build()
	if err != nil {
		return err
	}

	var added int

	err = e.observe(cmd.Context(), "build", func(context.Context) (int, error) {
		added, err = tree.InsertAll(ivs...)

		return added, err
	})
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}

	if err := tree.Verify(); err != nil {
		return err
	}

	size, err := e.saveSnapshot(cmd.Context(), tree, opts.output, compress)
	if err != nil {
		return err
	}

	if !quiet {
		printBuildSummary(cmd, tree, len(ivs), added, opts.output, size)
	}

	return nil
}

func printBuildSummary(cmd *cobra.Command, tree *intervaltree.Tree, read, added int, output string, size int64) {
	stats := tree.Stats()

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %s of %s intervals into %s nodes (height %d)\n",
		humanize.Comma(int64(added)), humanize.Comma(int64(read)),
		humanize.Comma(int64(stats.Nodes)), stats.Height)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, humanize.Bytes(uint64(size)))
}
