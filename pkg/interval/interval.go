// Package interval provides the immutable interval value stored by the tree.
//
// An Interval keeps its raw endpoints and open/closed flags together with the
// normalized closed range [NormStart, NormEnd] derived from them. Open ends
// are moved inward by one representable step and unbounded ends resolve to the
// kind's sentinels, so two intervals covering the same values always share the
// same normalized range and unique identifier.
package interval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// ErrIllegalTimeInterval is returned when the normalized end precedes the normalized start.
var ErrIllegalTimeInterval = errors.New("illegal time interval")

// Interval is a validated numeric range. The zero Interval is not valid; use
// New or Of. Intervals are comparable with == which is their language-level
// equality.
type Interval struct {
	kind      numeric.Kind
	start     numeric.Value
	end       numeric.Value
	normStart numeric.Value
	normEnd   numeric.Value
	openStart bool
	openEnd   bool
	label     string
}

// Option configures interval construction.
type Option func(*options)

type options struct {
	label     string
	openStart bool
	openEnd   bool
}

// OpenStart excludes the start value.
func OpenStart() Option {
	return func(o *options) { o.openStart = true }
}

// OpenEnd excludes the end value.
func OpenEnd() Option {
	return func(o *options) { o.openEnd = true }
}

// Open excludes both endpoints.
func Open() Option {
	return func(o *options) {
		o.openStart = true
		o.openEnd = true
	}
}

// WithOpen sets both flags explicitly.
func WithOpen(openStart, openEnd bool) Option {
	return func(o *options) {
		o.openStart = openStart
		o.openEnd = openEnd
	}
}

// WithLabel attaches an identifying label. Labels take part in equality, so
// two intervals over the same range with different labels are distinct.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// New validates and normalizes an interval of the declared kind. Null
// endpoints are unbounded. Values of other kinds are converted into kind.
func New(kind numeric.Kind, start, end numeric.Value, opts ...Option) (Interval, error) {
	var cfg options

	for _, opt := range opts {
		opt(&cfg)
	}

	validStart, err := kind.Validate(start, true)
	if err != nil {
		return Interval{}, fmt.Errorf("start: %w", err)
	}

	validEnd, err := kind.Validate(end, false)
	if err != nil {
		return Interval{}, fmt.Errorf("end: %w", err)
	}

	iv := Interval{
		kind:      kind,
		start:     rawValue(kind, validStart),
		end:       rawValue(kind, validEnd),
		normStart: kind.Norm(validStart, cfg.openStart, true),
		normEnd:   kind.Norm(validEnd, cfg.openEnd, false),
		openStart: cfg.openStart,
		openEnd:   cfg.openEnd,
		label:     cfg.label,
	}

	if (compare.Promoting{}).Compare(iv.normEnd, iv.normStart) < 0 {
		return Interval{}, fmt.Errorf("%w: %s normalizes to [%s,%s]",
			ErrIllegalTimeInterval, iv, iv.normStart, iv.normEnd)
	}

	return iv, nil
}

// rawValue keeps real endpoints and maps sentinels back to Null.
func rawValue(kind numeric.Kind, v numeric.Value) numeric.Value {
	if kind.IsSentinel(v) {
		return numeric.Null
	}

	return v
}

// Of builds an interval whose kind follows the Go type of its endpoints.
func Of[T numeric.Number](start, end T, opts ...Option) (Interval, error) {
	return New(numeric.KindOf[T](), numeric.From(start), numeric.From(end), opts...)
}

// Unbounded builds the interval covering every value of kind.
func Unbounded(kind numeric.Kind, opts ...Option) (Interval, error) {
	return New(kind, numeric.Null, numeric.Null, opts...)
}

// FromTimes builds a long interval over Unix milliseconds. Zero times are unbounded.
func FromTimes(start, end time.Time, opts ...Option) (Interval, error) {
	startValue, endValue := numeric.Null, numeric.Null

	if !start.IsZero() {
		startValue = numeric.FromInt64(start.UnixMilli())
	}

	if !end.IsZero() {
		endValue = numeric.FromInt64(end.UnixMilli())
	}

	return New(numeric.Long, startValue, endValue, opts...)
}

// Must panics if err is non-nil. It is intended for literals in tests and
// examples.
func Must(iv Interval, err error) Interval {
	if err != nil {
		panic(err)
	}

	return iv
}

// Kind returns the declared numeric kind.
func (iv Interval) Kind() numeric.Kind { return iv.kind }

// Start returns the raw start, Null when unbounded.
func (iv Interval) Start() numeric.Value { return iv.start }

// End returns the raw end, Null when unbounded.
func (iv Interval) End() numeric.Value { return iv.end }

// NormStart returns the inclusive normalized start.
func (iv Interval) NormStart() numeric.Value { return iv.normStart }

// NormEnd returns the inclusive normalized end.
func (iv Interval) NormEnd() numeric.Value { return iv.normEnd }

// OpenStart reports whether the start value is excluded.
func (iv Interval) OpenStart() bool { return iv.openStart }

// OpenEnd reports whether the end value is excluded.
func (iv Interval) OpenEnd() bool { return iv.openEnd }

// Label returns the interval label, empty when none was set.
func (iv Interval) Label() string { return iv.label }

// Valid reports whether iv was produced by a constructor.
func (iv Interval) Valid() bool { return iv.kind.Valid() }

// Equal reports language-level equality: same kind, raw endpoints, flags and label.
func (iv Interval) Equal(other Interval) bool { return iv == other }

// UniqueIdentifier returns the canonical "[normStart,normEnd]" key shared by
// every interval covering the same normalized range.
func (iv Interval) UniqueIdentifier() string {
	return "[" + iv.normStart.String() + "," + iv.normEnd.String() + "]"
}

// String renders the raw interval, for example "[1,5)" or "(-inf,3]@label".
func (iv Interval) String() string {
	var sb strings.Builder

	if iv.openStart {
		sb.WriteByte('(')
	} else {
		sb.WriteByte('[')
	}

	if iv.start.IsNull() {
		sb.WriteString("-inf")
	} else {
		sb.WriteString(iv.start.String())
	}

	sb.WriteByte(',')

	if iv.end.IsNull() {
		sb.WriteString("+inf")
	} else {
		sb.WriteString(iv.end.String())
	}

	if iv.openEnd {
		sb.WriteByte(')')
	} else {
		sb.WriteByte(']')
	}

	if iv.label != "" {
		sb.WriteByte(labelSeparator)
		sb.WriteString(iv.label)
	}

	return sb.String()
}
