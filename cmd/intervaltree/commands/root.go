// Package commands implements the intervaltree CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/intervaltree/pkg/version"
)

// Globals holds the persistent flags shared by every command.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	LogJSON    bool
}

// NewRootCommand assembles the intervaltree command tree.
func NewRootCommand() *cobra.Command {
	globals := &Globals{}

	rootCmd := &cobra.Command{
		Use:   "intervaltree",
		Short: "Build and query interval tree snapshots",
		Long: `intervaltree indexes numeric intervals in an augmented AVL tree.

Commands:
  build     Index a YAML or JSON dataset into a snapshot
  overlap   List intervals intersecting a query
  find      List intervals equal to a query
  relation  Classify two intervals by Allen's relations
  stats     Report the shape of a snapshot
  dump      Print the nodes of a snapshot in order
  diff      Compare the dumps of two snapshots
  validate  Check a dataset against the dataset schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigPath, "config", "", "path to an intervaltree.yaml config file")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&globals.LogJSON, "log-json", false, "write logs as JSON")

	rootCmd.AddCommand(
		NewBuildCommand(globals),
		NewOverlapCommand(globals),
		NewFindCommand(globals),
		NewRelationCommand(),
		NewStatsCommand(globals),
		NewDumpCommand(globals),
		NewDiffCommand(globals),
		NewValidateCommand(globals),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("intervaltree"))
		},
	}
}
