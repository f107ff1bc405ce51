package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// bit sizes used when formatting and parsing floating values.
const (
	float32Bits = 32
	float64Bits = 64
)

// Number lists the Go types that map directly onto a Kind.
type Number interface {
	int8 | int16 | int32 | int64 | int | float32 | float64
}

// Value is a numeric value tagged with its kind. The zero Value is null and
// stands for an unbounded endpoint.
//
// Integral kinds keep their value in i, floating kinds in f. Values are
// comparable with == and usable as map keys (NaN is never stored).
type Value struct {
	kind Kind
	i    int64
	f    float64
}

// Null is the unbounded value.
var Null = Value{}

// FromInt8 returns a byte value.
func FromInt8(v int8) Value { return Value{kind: Byte, i: int64(v)} }

// FromInt16 returns a short value.
func FromInt16(v int16) Value { return Value{kind: Short, i: int64(v)} }

// FromInt32 returns an int value.
func FromInt32(v int32) Value { return Value{kind: Int, i: int64(v)} }

// FromInt64 returns a long value.
func FromInt64(v int64) Value { return Value{kind: Long, i: v} }

// FromFloat32 returns a float value.
func FromFloat32(v float32) Value { return Value{kind: Float, f: canonicalZero(float64(v))} }

// FromFloat64 returns a double value.
func FromFloat64(v float64) Value { return Value{kind: Double, f: canonicalZero(v)} }

// From converts a Go number into a Value. int maps to Long.
func From[T Number](v T) Value {
	switch x := any(v).(type) {
	case int8:
		return FromInt8(x)
	case int16:
		return FromInt16(x)
	case int32:
		return FromInt32(x)
	case int64:
		return FromInt64(x)
	case int:
		return FromInt64(int64(x))
	case float32:
		return FromFloat32(x)
	case float64:
		return FromFloat64(x)
	default:
		return Null
	}
}

// KindOf returns the Kind a Go number type maps to.
func KindOf[T Number]() Kind {
	var zero T

	return From(zero).kind
}

// Kind returns the value's kind, Invalid for null.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the unbounded value.
func (v Value) IsNull() bool { return v.kind == Invalid }

// Int64 returns the value as an int64, truncating floating values.
func (v Value) Int64() int64 {
	if v.kind.Floating() {
		return int64(v.f)
	}

	return v.i
}

// Float64 returns the value as a float64.
func (v Value) Float64() float64 {
	if v.kind.Integral() {
		return float64(v.i)
	}

	return v.f
}

// String returns the canonical representation of v. The result is stable for
// every kind and round-trips through Parse.
func (v Value) String() string {
	switch v.kind {
	case Invalid:
		return "null"
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, float32Bits)
	case Double:
		return strconv.FormatFloat(v.f, 'g', -1, float64Bits)
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// GoString implements fmt.GoStringer.
func (v Value) GoString() string {
	return fmt.Sprintf("numeric.Value{%s:%s}", v.kind, v)
}

// Parse reads text as a value of kind k. "", "*" and "null" yield Null;
// "inf", "+inf" and "-inf" yield infinite doubles which Validate maps onto the
// kind's sentinels.
func Parse(k Kind, text string) (Value, error) {
	trimmed := strings.TrimSpace(text)

	switch strings.ToLower(trimmed) {
	case "", "*", "null":
		return Null, nil
	case "inf", "+inf", "infinity", "+infinity":
		return Value{kind: Double, f: math.Inf(1)}, nil
	case "-inf", "-infinity":
		return Value{kind: Double, f: math.Inf(-1)}, nil
	}

	switch {
	case k.Integral():
		parsed, err := strconv.ParseInt(trimmed, 10, bitSize(k))
		if err != nil {
			return Null, fmt.Errorf("%w: %q as %s: %w", ErrParseValue, text, k, err)
		}

		return Value{kind: k, i: parsed}, nil
	case k.Floating():
		parsed, err := strconv.ParseFloat(trimmed, bitSize(k))
		if err != nil {
			return Null, fmt.Errorf("%w: %q as %s: %w", ErrParseValue, text, k, err)
		}

		if math.IsNaN(parsed) {
			return Value{kind: k, f: parsed}, nil
		}

		return Value{kind: k, f: canonicalZero(parsed)}, nil
	default:
		return Null, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
}

// bitSize returns the storage width of k in bits.
func bitSize(k Kind) int {
	switch k {
	case Byte:
		return 8
	case Short:
		return 16
	case Int, Float:
		return 32
	default:
		return 64
	}
}

// canonicalZero folds negative zero onto positive zero so that equal values
// share one canonical string.
func canonicalZero(f float64) float64 {
	if f == 0 {
		return 0
	}

	return f
}

// OfInt builds an integral value of kind k. It returns Null for non-integral kinds.
func OfInt(k Kind, i int64) Value {
	if !k.Integral() {
		return Null
	}

	return Value{kind: k, i: i}
}

// OfFloat builds a floating value of kind k. It returns Null for non-floating kinds.
func OfFloat(k Kind, f float64) Value {
	if !k.Floating() {
		return Null
	}

	return Value{kind: k, f: canonicalZero(f)}
}
