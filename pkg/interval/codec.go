package interval

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// ErrCorruptRecord is returned when binary interval data cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt interval record")

// Flag bits of an encoded interval.
const (
	flagOpenStart byte = 1 << iota
	flagOpenEnd
)

const (
	// maxLabelLength bounds the label length accepted by the decoder.
	maxLabelLength = 1 << 16
	// listPrealloc caps the capacity reserved from an untrusted count.
	listPrealloc = 1024
)

// Reader is the input accepted by the decoders.
type Reader interface {
	io.Reader
	io.ByteReader
}

// AppendValue appends the binary form of v: a kind byte followed by a
// zig-zag varint for integral kinds or the IEEE-754 bits for floating kinds.
// Null is encoded as the kind byte alone.
func AppendValue(buf []byte, v numeric.Value) []byte {
	buf = append(buf, byte(v.Kind()))

	switch {
	case v.Kind().Integral():
		buf = binary.AppendVarint(buf, v.Int64())
	case v.Kind().Floating():
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v.Float64()))
	}

	return buf
}

// ReadValue decodes a value written by AppendValue.
func ReadValue(r Reader) (numeric.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return numeric.Null, fmt.Errorf("%w: value kind: %w", ErrCorruptRecord, err)
	}

	kind := numeric.Kind(tag)

	switch {
	case kind == numeric.Invalid:
		return numeric.Null, nil
	case kind.Integral():
		i, err := binary.ReadVarint(r)
		if err != nil {
			return numeric.Null, fmt.Errorf("%w: %s value: %w", ErrCorruptRecord, kind, err)
		}

		return numeric.OfInt(kind, i), nil
	case kind.Floating():
		var raw [8]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return numeric.Null, fmt.Errorf("%w: %s value: %w", ErrCorruptRecord, kind, err)
		}

		return numeric.OfFloat(kind, math.Float64frombits(binary.BigEndian.Uint64(raw[:]))), nil
	default:
		return numeric.Null, fmt.Errorf("%w: unknown kind %d", ErrCorruptRecord, tag)
	}
}

// AppendInterval appends the binary form of iv: kind, raw start, raw end,
// flag byte and length-prefixed label.
func AppendInterval(buf []byte, iv Interval) []byte {
	buf = append(buf, byte(iv.kind))
	buf = AppendValue(buf, iv.start)
	buf = AppendValue(buf, iv.end)

	var flags byte
	if iv.openStart {
		flags |= flagOpenStart
	}

	if iv.openEnd {
		flags |= flagOpenEnd
	}

	buf = append(buf, flags)
	buf = binary.AppendUvarint(buf, uint64(len(iv.label)))

	return append(buf, iv.label...)
}

// ReadInterval decodes an interval written by AppendInterval. The interval is
// rebuilt through New, so its normalized bounds are recomputed.
func ReadInterval(r Reader) (Interval, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: interval kind: %w", ErrCorruptRecord, err)
	}

	kind := numeric.Kind(tag)
	if !kind.Valid() {
		return Interval{}, fmt.Errorf("%w: unknown kind %d", ErrCorruptRecord, tag)
	}

	start, err := ReadValue(r)
	if err != nil {
		return Interval{}, err
	}

	end, err := ReadValue(r)
	if err != nil {
		return Interval{}, err
	}

	flags, err := r.ReadByte()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: flags: %w", ErrCorruptRecord, err)
	}

	label, err := readString(r)
	if err != nil {
		return Interval{}, err
	}

	iv, err := New(kind, start, end,
		WithOpen(flags&flagOpenStart != 0, flags&flagOpenEnd != 0), WithLabel(label))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return iv, nil
}

func readString(r Reader) (string, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		return "", fmt.Errorf("%w: string length: %w", ErrCorruptRecord, err)
	}

	if size > maxLabelLength {
		return "", fmt.Errorf("%w: string length %d exceeds %d", ErrCorruptRecord, size, maxLabelLength)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("%w: string: %w", ErrCorruptRecord, err)
	}

	return string(data), nil
}

// AppendList appends a count-prefixed sequence of intervals.
func AppendList(buf []byte, ivs []Interval) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ivs)))

	for _, iv := range ivs {
		buf = AppendInterval(buf, iv)
	}

	return buf
}

// WriteList writes ivs to w in the AppendList format.
func WriteList(w io.Writer, ivs []Interval) error {
	_, err := w.Write(AppendList(nil, ivs))

	return err
}

// ReadList decodes a list written by WriteList or AppendList.
func ReadList(r Reader) ([]Interval, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: list length: %w", ErrCorruptRecord, err)
	}

	ivs := make([]Interval, 0, min(count, listPrealloc))

	for range count {
		iv, err := ReadInterval(r)
		if err != nil {
			return nil, err
		}

		ivs = append(ivs, iv)
	}

	return ivs, nil
}

// MarshalList returns the binary list form of ivs.
func MarshalList(ivs []Interval) []byte {
	return AppendList(nil, ivs)
}

// UnmarshalList decodes data produced by MarshalList. Trailing bytes are an error.
func UnmarshalList(data []byte) ([]Interval, error) {
	r := bytes.NewReader(data)

	ivs, err := ReadList(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, r.Len())
	}

	return ivs, nil
}

// NewReader adapts r for the decoders, buffering it when needed.
func NewReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}

	return bufio.NewReader(r)
}
