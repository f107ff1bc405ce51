package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

func iv(start, end int64, opts ...interval.Option) interval.Interval {
	return interval.Must(interval.Of(start, end, opts...))
}

func TestSet_Deduplicates(t *testing.T) {
	t.Parallel()

	s := NewSet()

	assert.True(t, s.Add(iv(5, 10)))
	assert.False(t, s.Add(iv(5, 10)))
	assert.True(t, s.Add(iv(5, 10, interval.WithLabel("b"))))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(iv(5, 10)))

	assert.True(t, s.Remove(iv(5, 10)))
	assert.False(t, s.Remove(iv(5, 10)))
	assert.Equal(t, []interval.Interval{iv(5, 10, interval.WithLabel("b"))}, s.Values())
}

func TestList_KeepsDuplicates(t *testing.T) {
	t.Parallel()

	l := NewList()

	assert.True(t, l.Add(iv(5, 10)))
	assert.True(t, l.Add(iv(5, 10)))
	assert.Equal(t, 2, l.Len())

	assert.True(t, l.Remove(iv(5, 10)))
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Contains(iv(5, 10)))
}

func TestBulkOperations(t *testing.T) {
	t.Parallel()

	a, b, c := iv(1, 2), iv(1, 2, interval.WithLabel("b")), iv(1, 2, interval.WithLabel("c"))

	for _, kind := range []Kind{KindSet, KindList} {
		coll := kind.New()

		assert.True(t, coll.AddAll(a, b, c), kind)
		assert.True(t, coll.RetainAll(a, c), kind)
		assert.Equal(t, []interval.Interval{a, c}, coll.Values(), kind)
		assert.False(t, coll.RetainAll(a, c), kind)

		assert.True(t, coll.RemoveAll(c, b), kind)
		assert.Equal(t, []interval.Interval{a}, coll.Values(), kind)
		assert.False(t, coll.RemoveAll(c), kind)

		coll.Clear()
		assert.Zero(t, coll.Len(), kind)
		assert.False(t, coll.Contains(a), kind)
	}
}

func TestAll_IteratesInInsertionOrder(t *testing.T) {
	t.Parallel()

	s := NewSet(iv(3, 4), iv(1, 2))

	var got []interval.Interval
	for v := range s.All() {
		got = append(got, v)
	}

	assert.Equal(t, []interval.Interval{iv(3, 4), iv(1, 2)}, got)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseKind("list")
	require.NoError(t, err)
	assert.Equal(t, KindList, kind)

	_, err = ParseKind("bag")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestFactoryRegistry(t *testing.T) {
	t.Parallel()

	f, err := LookupFactory("list")
	require.NoError(t, err)
	assert.Equal(t, "list", f.Name())
	assert.IsType(t, &List{}, f.New())
	assert.False(t, f.UseWeakReferences())
	assert.Nil(t, f.Observer())

	loaded, err := f.Load("[1,2]")
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())

	_, err = LookupFactory("persistent-set")
	require.ErrorIs(t, err, ErrUnknownFactory)

	assert.Equal(t, "set", MemoryFactory(KindSet).Name())
}
