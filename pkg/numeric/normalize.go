package numeric

import (
	"fmt"
	"math"
)

// Validate maps v onto kind k for use as an interval endpoint.
//
// Null resolves to the minimum sentinel for a start and to the maximum for an
// end. Positive and negative infinity resolve to the maximum and minimum
// sentinel. NaN, the sentinels themselves and their adjacent values are
// rejected with ErrIllegalTimePoint. Values outside the range of k saturate to
// its bounds and are therefore rejected as well.
func (k Kind) Validate(v Value, isStart bool) (Value, error) {
	if !k.Valid() {
		return Null, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	if v.IsNull() {
		if isStart {
			return k.Min(), nil
		}

		return k.Max(), nil
	}

	if v.kind.Floating() {
		switch {
		case math.IsNaN(v.f):
			return Null, fmt.Errorf("%w: NaN is not a valid %s", ErrIllegalTimePoint, k)
		case math.IsInf(v.f, 1):
			return k.Max(), nil
		case math.IsInf(v.f, -1):
			return k.Min(), nil
		}
	}

	converted := k.convert(v)
	if k.Reserved(converted) {
		return Null, fmt.Errorf("%w: %s is reserved for %s", ErrIllegalTimePoint, v, k)
	}

	return converted, nil
}

// Norm returns the closed representation of an endpoint. An open start moves
// to the next representable value, an open end to the previous one. Sentinels
// are never shifted.
func (k Kind) Norm(v Value, open, isStart bool) Value {
	if !open || k.IsSentinel(v) {
		return v
	}

	if isStart {
		return k.Next(v)
	}

	return k.Prev(v)
}

// convert re-tags v as kind k, saturating values that do not fit.
func (k Kind) convert(v Value) Value {
	if v.kind == k {
		return v
	}

	switch {
	case k.Integral():
		low, high := k.Min().i, k.Max().i

		if v.kind.Floating() {
			truncated := math.Trunc(v.f)

			switch {
			case truncated <= float64(low):
				return Value{kind: k, i: low}
			case truncated >= float64(high):
				return Value{kind: k, i: high}
			default:
				return Value{kind: k, i: int64(truncated)}
			}
		}

		return Value{kind: k, i: min(max(v.i, low), high)}
	case k == Float:
		f := v.Float64()

		switch {
		case f > math.MaxFloat32:
			return k.Max()
		case f < -math.MaxFloat32:
			return k.Min()
		default:
			return Value{kind: k, f: canonicalZero(float64(float32(f)))}
		}
	default:
		return Value{kind: k, f: canonicalZero(v.Float64())}
	}
}
