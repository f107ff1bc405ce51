// Package persist stores interval collections outside the tree: codecs for
// collection documents and a directory-backed collection.Persistor.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// File extensions for supported codecs.
const (
	jsonExtension   = ".json"
	gobExtension    = ".gob"
	binaryExtension = ".ivl"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// ErrUnknownCodec is returned by CodecByName for unregistered names.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec defines how a collection's intervals are serialized.
type Codec interface {
	// Encode writes the intervals to the writer.
	Encode(w io.Writer, ivs []interval.Interval) error
	// Decode reads intervals written by Encode.
	Decode(r io.Reader) ([]interval.Interval, error)
	// Extension returns the file extension for this codec (e.g., ".json", ".gob").
	Extension() string
}

// CodecByName returns the codec for "json", "gob" or "binary".
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return NewJSONCodec(), nil
	case "gob":
		return NewGobCodec(), nil
	case "binary":
		return NewBinaryCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSONCodec writes intervals as an array of interval.Record documents.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, ivs []interval.Interval) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(toRecords(ivs))
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader) ([]interval.Interval, error) {
	var records []interval.Record

	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return fromRecords(records)
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec implements Codec using gob encoding of interval records.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode using gob encoding.
func (c *GobCodec) Encode(w io.Writer, ivs []interval.Interval) error {
	err := gob.NewEncoder(w).Encode(toRecords(ivs))
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using gob decoding.
func (c *GobCodec) Decode(r io.Reader) ([]interval.Interval, error) {
	var records []interval.Record

	err := gob.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}

	return fromRecords(records)
}

// Extension implements Codec.Extension for gob files.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// BinaryCodec uses the compact interval list encoding shared with tree
// snapshots.
type BinaryCodec struct{}

// NewBinaryCodec creates a binary codec.
func NewBinaryCodec() *BinaryCodec {
	return &BinaryCodec{}
}

// Encode implements Codec.Encode.
func (c *BinaryCodec) Encode(w io.Writer, ivs []interval.Interval) error {
	if err := interval.WriteList(w, ivs); err != nil {
		return fmt.Errorf("binary encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *BinaryCodec) Decode(r io.Reader) ([]interval.Interval, error) {
	ivs, err := interval.ReadList(interval.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("binary decode: %w", err)
	}

	return ivs, nil
}

// Extension implements Codec.Extension for binary files.
func (c *BinaryCodec) Extension() string {
	return binaryExtension
}

func toRecords(ivs []interval.Interval) []interval.Record {
	records := make([]interval.Record, len(ivs))
	for i, iv := range ivs {
		records[i] = interval.ToRecord(iv)
	}

	return records
}

// fromRecords requires every record to name its kind.
func fromRecords(records []interval.Record) ([]interval.Interval, error) {
	ivs := make([]interval.Interval, 0, len(records))

	for i, r := range records {
		iv, err := interval.FromRecord(r, numeric.Invalid)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		ivs = append(ivs, iv)
	}

	return ivs, nil
}
