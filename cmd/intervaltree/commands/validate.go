package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDataset is returned when a dataset violates the schema or
// cannot be converted into intervals.
var ErrInvalidDataset = errors.New("invalid dataset")

// NewValidateCommand creates the validate command.
func NewValidateCommand(globals *Globals) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <dataset.{yaml,json}>",
		Short: "Check a dataset against the dataset schema",
		Long: `Validate a dataset against the embedded JSON schema, then parse every
interval with the dataset kind to catch values the schema cannot express
(empty ranges, sentinels, out of range numbers).

Examples:
  intervaltree validate events.yaml
  intervaltree validate --no-color events.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runValidate(cmd.OutOrStdout(), args[0], globals.Quiet)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(out io.Writer, path string, quiet bool) error {
	var doc any

	if err := readDocument(path, &doc); err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(datasetSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		color.New(color.FgRed).Fprintf(out, "%s: dataset does not match the schema\n", path)

		for _, verr := range result.Errors() {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", verr.Field(), verr.Description())
		}

		return fmt.Errorf("%w: %d schema violations", ErrInvalidDataset, len(result.Errors()))
	}

	ds, err := readDataset(path)
	if err != nil {
		return err
	}

	kindName := ds.Kind
	if kindName == "" {
		kindName = "mixed"
	}

	ivs, err := ds.intervals(kindName)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "%s: %v\n", path, err)

		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	if !quiet {
		color.New(color.FgGreen).Fprintf(out, "%s: valid, %d intervals\n", path, len(ivs))
	}

	return nil
}
