package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
)

func TestFilters(t *testing.T) {
	t.Parallel()

	cmp := compare.Promoting{}

	query := Must(Of[int64](2, 4))
	same := Must(Of[int64](2, 4))
	openForm := Must(Of[int64](1, 5, Open()))
	labelled := Must(Of[int64](2, 4, WithLabel("x")))
	otherKind := Must(Of[int32](2, 4))

	tests := []struct {
		filter    Filter
		candidate Interval
		want      bool
	}{
		{FilterEqual, same, true},
		{FilterEqual, openForm, false},
		{FilterEqual, labelled, false},
		{FilterStrictEqual, same, true},
		{FilterStrictEqual, otherKind, false},
		{FilterInterval, openForm, true},
		{FilterInterval, labelled, true},
		{FilterInterval, otherKind, true},
		{FilterWeakEqual, same, true},
		{FilterWeakEqual, openForm, false},
		{FilterWeakEqual, otherKind, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.filter.Match(cmp, tc.candidate, query),
			"%s(%s, %s)", tc.filter.Name(), tc.candidate, query)
	}
}

func TestFilterInterval_StrictComparator(t *testing.T) {
	t.Parallel()

	query := Must(Of[int64](2, 4))

	assert.False(t, FilterInterval.Match(compare.Strict{}, Must(Of[int32](2, 4)), query))
	assert.False(t, FilterWeakEqual.Match(compare.Strict{}, Must(Of[int32](2, 4)), query))
}

func TestFilterRegistry(t *testing.T) {
	t.Parallel()

	for _, name := range []string{FilterNameEqual, FilterNameStrictEqual, FilterNameWeakEqual, FilterNameInterval} {
		f, err := LookupFilter(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
		assert.True(t, f.Valid())
	}

	_, err := LookupFilter("fuzzy")
	require.ErrorIs(t, err, ErrUnknownFilter)

	labelOnly := NewFilter("test-label-only", func(_ compare.Comparator, candidate, query Interval) bool {
		return candidate.Label() == query.Label()
	})
	RegisterFilter(labelOnly)

	f, err := LookupFilter("test-label-only")
	require.NoError(t, err)
	assert.True(t, f.Match(compare.Promoting{}, Must(Of[int64](1, 2)), Must(Of[int64](8, 9))))
}
