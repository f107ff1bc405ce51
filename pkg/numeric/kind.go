// Package numeric unifies the numeric kinds an interval can be declared over.
//
// A Value is a closed tagged variant over byte, short, int, long, float and
// double. Every kind reserves a minimum and a maximum sentinel that stand for
// an unbounded interval end; the sentinels and the values directly adjacent to
// them can never be supplied as real endpoints.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors.
var (
	// ErrIllegalTimePoint is returned when a value cannot be used as an interval endpoint.
	ErrIllegalTimePoint = errors.New("illegal time point")

	// ErrUnknownKind is returned for a kind outside the supported set.
	ErrUnknownKind = errors.New("unknown numeric kind")

	// ErrParseValue is returned when text cannot be parsed into a value.
	ErrParseValue = errors.New("cannot parse numeric value")
)

// Kind identifies the numeric type of a value. The declaration order is the
// promotion hierarchy: a wider kind has a larger rank.
type Kind uint8

// Supported kinds, narrowest first.
const (
	Invalid Kind = iota
	Byte
	Short
	Int
	Long
	Float
	Double
)

// kindNames maps kinds to their canonical names.
var kindNames = [...]string{
	Invalid: "invalid",
	Byte:    "byte",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

// Kinds lists every valid kind in promotion order.
func Kinds() []Kind {
	return []Kind{Byte, Short, Int, Long, Float, Double}
}

// String returns the canonical kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves a kind by its canonical name (case-insensitive).
// "integer" and "int32" style aliases are accepted for convenience.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "byte", "int8":
		return Byte, nil
	case "short", "int16":
		return Short, nil
	case "int", "integer", "int32":
		return Int, nil
	case "long", "int64":
		return Long, nil
	case "float", "float32":
		return Float, nil
	case "double", "float64":
		return Double, nil
	default:
		return Invalid, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= Byte && k <= Double
}

// Integral reports whether k stores integers.
func (k Kind) Integral() bool {
	return k >= Byte && k <= Long
}

// Floating reports whether k stores IEEE-754 values.
func (k Kind) Floating() bool {
	return k == Float || k == Double
}

// Wider returns the wider of two kinds according to the promotion hierarchy.
func Wider(a, b Kind) Kind {
	if a > b {
		return a
	}

	return b
}

// Min returns the kind's reserved minimum, standing for an unbounded start.
func (k Kind) Min() Value {
	switch k {
	case Byte:
		return Value{kind: k, i: math.MinInt8}
	case Short:
		return Value{kind: k, i: math.MinInt16}
	case Int:
		return Value{kind: k, i: math.MinInt32}
	case Long:
		return Value{kind: k, i: math.MinInt64}
	case Float:
		return Value{kind: k, f: -math.MaxFloat32}
	case Double:
		return Value{kind: k, f: -math.MaxFloat64}
	default:
		return Null
	}
}

// Max returns the kind's reserved maximum, standing for an unbounded end.
func (k Kind) Max() Value {
	switch k {
	case Byte:
		return Value{kind: k, i: math.MaxInt8}
	case Short:
		return Value{kind: k, i: math.MaxInt16}
	case Int:
		return Value{kind: k, i: math.MaxInt32}
	case Long:
		return Value{kind: k, i: math.MaxInt64}
	case Float:
		return Value{kind: k, f: math.MaxFloat32}
	case Double:
		return Value{kind: k, f: math.MaxFloat64}
	default:
		return Null
	}
}

// IsSentinel reports whether v is the kind's minimum or maximum sentinel.
func (k Kind) IsSentinel(v Value) bool {
	return v == k.Min() || v == k.Max()
}

// Reserved reports whether v is a sentinel or the value adjacent to one.
func (k Kind) Reserved(v Value) bool {
	if k.IsSentinel(v) {
		return true
	}

	return v == k.step(k.Min(), true) || v == k.step(k.Max(), false)
}

// Next returns the smallest representable value strictly greater than v.
// Sentinels are returned unchanged.
func (k Kind) Next(v Value) Value {
	if k.IsSentinel(v) {
		return v
	}

	return k.step(v, true)
}

// Prev returns the largest representable value strictly smaller than v.
// Sentinels are returned unchanged.
func (k Kind) Prev(v Value) Value {
	if k.IsSentinel(v) {
		return v
	}

	return k.step(v, false)
}

// step moves v by one representable unit without any sentinel guard.
func (k Kind) step(v Value, up bool) Value {
	switch {
	case k.Integral():
		if up {
			return Value{kind: k, i: v.i + 1}
		}

		return Value{kind: k, i: v.i - 1}
	case k == Float:
		target := float32(math.Inf(-1))
		if up {
			target = float32(math.Inf(1))
		}

		return Value{kind: k, f: canonicalZero(float64(math.Nextafter32(float32(v.f), target)))}
	case k == Double:
		target := math.Inf(-1)
		if up {
			target = math.Inf(1)
		}

		return Value{kind: k, f: canonicalZero(math.Nextafter(v.f, target))}
	default:
		return v
	}
}
