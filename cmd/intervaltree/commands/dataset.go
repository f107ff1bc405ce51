package commands

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/intervaltree/pkg/config"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

//go:embed dataset.schema.json
var datasetSchema []byte

// ErrUnsupportedDataset is returned for dataset files that are neither
// YAML nor JSON.
var ErrUnsupportedDataset = errors.New("unsupported dataset format")

// Dataset is the document a tree is built from.
type Dataset struct {
	// Kind is a numeric kind name or "mixed". Empty means the configured kind.
	Kind      string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Intervals []interval.Record `json:"intervals"      yaml:"intervals"`
}

// readDocument decodes a YAML or JSON file, chosen by extension, into out.
func readDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err = dec.Decode(out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDataset, filepath.Base(path))
	}

	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

func readDataset(path string) (*Dataset, error) {
	var ds Dataset

	if err := readDocument(path, &ds); err != nil {
		return nil, err
	}

	return &ds, nil
}

// intervals converts the records. Records without a kind take the dataset
// kind, or long in a mixed dataset.
func (ds *Dataset) intervals(kindName string) ([]interval.Interval, error) {
	kind, err := config.TreeConfig{Kind: kindName}.NumericKind()
	if err != nil {
		return nil, err
	}

	if kind == numeric.Invalid {
		kind = numeric.Long
	}

	out := make([]interval.Interval, 0, len(ds.Intervals))

	for i, rec := range ds.Intervals {
		iv, err := interval.FromRecord(rec, kind)
		if err != nil {
			return nil, fmt.Errorf("interval %d: %w", i, err)
		}

		out = append(out, iv)
	}

	return out, nil
}
