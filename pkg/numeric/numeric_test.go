package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	parsed, err := ParseKind("Integer")
	require.NoError(t, err)
	assert.Equal(t, Int, parsed)

	_, err = ParseKind("decimal")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestWider(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Long, Wider(Int, Long))
	assert.Equal(t, Double, Wider(Double, Byte))
	assert.Equal(t, Float, Wider(Long, Float))
	assert.Equal(t, Short, Wider(Short, Short))
}

func TestFrom_KindInference(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Byte, From(int8(1)).Kind())
	assert.Equal(t, Short, From(int16(1)).Kind())
	assert.Equal(t, Int, From(int32(1)).Kind())
	assert.Equal(t, Long, From(int64(1)).Kind())
	assert.Equal(t, Long, From(1).Kind())
	assert.Equal(t, Float, From(float32(1)).Kind())
	assert.Equal(t, Double, From(1.0).Kind())
	assert.Equal(t, Long, KindOf[int]())
}

func TestValidate_NullResolvesToSentinels(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		start, err := kind.Validate(Null, true)
		require.NoError(t, err)
		assert.Equal(t, kind.Min(), start)

		end, err := kind.Validate(Null, false)
		require.NoError(t, err)
		assert.Equal(t, kind.Max(), end)
	}
}

func TestValidate_RejectsReservedValues(t *testing.T) {
	t.Parallel()

	_, err := Long.Validate(FromInt64(math.MaxInt64), false)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	_, err = Long.Validate(FromInt64(math.MaxInt64-1), false)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	_, err = Long.Validate(FromInt64(math.MinInt64+1), true)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	value, err := Long.Validate(FromInt64(math.MaxInt64-2), false)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-2), value.Int64())

	_, err = Double.Validate(FromFloat64(math.MaxFloat64), false)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	_, err = Double.Validate(FromFloat64(math.Nextafter(math.MaxFloat64, 0)), false)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	_, err = Byte.Validate(FromInt8(math.MinInt8+1), true)
	require.ErrorIs(t, err, ErrIllegalTimePoint)
}

func TestValidate_NaNAndInfinity(t *testing.T) {
	t.Parallel()

	_, err := Double.Validate(FromFloat64(math.NaN()), true)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	value, err := Double.Validate(FromFloat64(math.Inf(1)), true)
	require.NoError(t, err)
	assert.Equal(t, Double.Max(), value)

	value, err = Long.Validate(FromFloat64(math.Inf(-1)), false)
	require.NoError(t, err)
	assert.Equal(t, Long.Min(), value)
}

func TestValidate_Conversion(t *testing.T) {
	t.Parallel()

	value, err := Long.Validate(FromInt32(42), true)
	require.NoError(t, err)
	assert.Equal(t, FromInt64(42), value)

	value, err = Int.Validate(FromFloat64(3.9), true)
	require.NoError(t, err)
	assert.Equal(t, FromInt32(3), value)

	value, err = Double.Validate(FromInt64(7), true)
	require.NoError(t, err)
	assert.Equal(t, FromFloat64(7), value)

	// Out of range saturates onto the sentinel and is rejected.
	_, err = Byte.Validate(FromInt64(1000), true)
	require.ErrorIs(t, err, ErrIllegalTimePoint)

	_, err = Float.Validate(FromFloat64(1e300), true)
	require.ErrorIs(t, err, ErrIllegalTimePoint)
}

func TestNorm(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FromInt64(2), Long.Norm(FromInt64(1), true, true))
	assert.Equal(t, FromInt64(4), Long.Norm(FromInt64(5), true, false))
	assert.Equal(t, FromInt64(5), Long.Norm(FromInt64(5), false, false))

	assert.Equal(t, Long.Max(), Long.Norm(Long.Max(), true, false))
	assert.Equal(t, Long.Min(), Long.Norm(Long.Min(), true, true))

	next := Double.Norm(FromFloat64(1), true, true)
	assert.Equal(t, math.Nextafter(1, 2), next.Float64())

	prev := Float.Norm(FromFloat32(1), true, false)
	assert.Equal(t, float64(math.Nextafter32(1, 0)), prev.Float64())
}

func TestNextPrev_Sentinels(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		assert.Equal(t, kind.Max(), kind.Next(kind.Max()))
		assert.Equal(t, kind.Min(), kind.Prev(kind.Min()))
	}
}

func TestValue_StringRoundTrip(t *testing.T) {
	t.Parallel()

	values := []Value{
		FromInt8(-3),
		FromInt16(300),
		FromInt32(-70000),
		FromInt64(1 << 40),
		FromFloat32(0.1),
		FromFloat64(0.1),
		FromFloat64(-2.5e-10),
	}

	for _, value := range values {
		parsed, err := Parse(value.Kind(), value.String())
		require.NoError(t, err)
		assert.Equal(t, value, parsed, value.String())
	}

	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "0.1", FromFloat32(0.1).String())
}

func TestValue_NegativeZeroIsCanonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FromFloat64(0), FromFloat64(math.Copysign(0, -1)))
	assert.Equal(t, "0", FromFloat64(math.Copysign(0, -1)).String())
}

func TestParse_SpecialTokens(t *testing.T) {
	t.Parallel()

	value, err := Parse(Long, "*")
	require.NoError(t, err)
	assert.True(t, value.IsNull())

	value, err = Parse(Long, "-inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(value.Float64(), -1))

	_, err = Parse(Int, "12x")
	require.ErrorIs(t, err, ErrParseValue)

	_, err = Parse(Byte, "300")
	require.ErrorIs(t, err, ErrParseValue)
}
