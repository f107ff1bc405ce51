package intervaltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

const scenarioUpper = 50

func closed(start, end int64) interval.Interval {
	return interval.Must(interval.Of(start, end))
}

func longTree(t *testing.T) *Tree {
	t.Helper()

	tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindSet).Build()
	require.NoError(t, err)

	return tree
}

func insertAll(t *testing.T, tree *Tree, ivs ...interval.Interval) {
	t.Helper()

	for _, iv := range ivs {
		_, err := tree.Insert(iv)
		require.NoError(t, err)
	}
}

func keys(tree *Tree) []string {
	var out []string

	for n := range tree.Nodes() {
		out = append(out, n.Key())
	}

	return out
}

func TestOverlap_PrunesByStart(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 5), closed(2, 5), closed(3, 5))

	got, err := tree.Overlap(closed(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{closed(1, 5), closed(2, 5)}, got)
	require.NoError(t, tree.Verify())
}

func TestFind_ExactRangeOnly(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 5), closed(2, 5), closed(3, 5))

	got, err := tree.Find(closed(2, 5))
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{closed(2, 5)}, got)

	got, err = tree.Find(closed(2, 4))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsert_CollectionKindDecidesDuplicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind collection.Kind
		size int
	}{
		{collection.KindSet, 1},
		{collection.KindList, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(tt.kind).Build()
			require.NoError(t, err)

			insertAll(t, tree, closed(5, 10), closed(5, 10))

			assert.Equal(t, tt.size, tree.Size())
			assert.Equal(t, 1, tree.NodeCount())
			require.NoError(t, tree.Verify())
		})
	}
}

func TestInsert_OpenBoundsShareNodeWithClosedEquivalent(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	open := interval.Must(interval.Of(int64(1), int64(5), interval.OpenStart()))
	insertAll(t, tree, open, closed(2, 5))

	assert.Equal(t, []string{"[2,5]"}, keys(tree))
	assert.Equal(t, 2, tree.Size())

	got, err := tree.FindWith(closed(2, 5), interval.FilterInterval)
	require.NoError(t, err)
	assert.ElementsMatch(t, []interval.Interval{open, closed(2, 5)}, got)
}

func TestRemove_LastIntervalDropsNode(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 5), closed(2, 5), closed(3, 5))

	removed, err := tree.Remove(closed(2, 5))
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, []string{"[1,5]", "[3,5]"}, keys(tree))

	got, err := tree.Find(closed(2, 5))
	require.NoError(t, err)
	assert.Empty(t, got)

	removed, err = tree.Remove(closed(2, 5))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, tree.Size())
	require.NoError(t, tree.Verify())
}

func TestOverlap_PrefixIntervals(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	for k := int64(1); k <= scenarioUpper; k++ {
		insertAll(t, tree, closed(1, k))
	}

	require.NoError(t, tree.Verify())

	for k := int64(1); k <= scenarioUpper; k++ {
		got, err := tree.Overlap(closed(k, k))
		require.NoError(t, err)
		assert.Len(t, got, scenarioUpper-int(k)+1, "k=%d", k)
	}
}

func TestOverlapFunc_StopsEarly(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 10), closed(2, 10), closed(3, 10))

	var seen []interval.Interval

	err := tree.OverlapFunc(closed(5, 5), func(iv interval.Interval) bool {
		seen = append(seen, iv)

		return len(seen) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{closed(1, 10), closed(2, 10)}, seen)
}

func TestOverlap_UnboundedQuery(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(-100, -50), closed(0, 0), closed(40, 90))

	all := interval.Must(interval.Unbounded(numeric.Long))

	got, err := tree.Overlap(all)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	insertAll(t, tree, all)

	got, err = tree.Overlap(closed(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{all}, got)
}

func TestContains(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	labelled := interval.Must(interval.Of(int64(1), int64(2), interval.WithLabel("a")))
	insertAll(t, tree, labelled)

	ok, err := tree.Contains(labelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tree.Contains(closed(1, 2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStrictTree_RejectsOtherKinds(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 2))

	_, err := tree.Insert(interval.Must(interval.Of(int32(1), int32(2))))
	require.ErrorIs(t, err, compare.ErrKindMismatch)

	_, err = tree.Overlap(interval.Must(interval.Of(1.0, 2.0)))
	require.ErrorIs(t, err, compare.ErrKindMismatch)

	_, err = tree.Insert(interval.Interval{})
	require.ErrorIs(t, err, interval.ErrIllegalTimeInterval)
	assert.Equal(t, 1, tree.Size())
}

func TestMixedTree_PromotesAcrossKinds(t *testing.T) {
	t.Parallel()

	tree, err := NewBuilder().UseMixedNumbers().CollectionKind(collection.KindList).Build()
	require.NoError(t, err)

	ints := interval.Must(interval.Of(int32(1), int32(5)))
	doubles := interval.Must(interval.Of(2.5, 3.5))
	longs := interval.Must(interval.Of(int64(6), int64(9)))
	insertAll(t, tree, ints, doubles, longs)

	got, err := tree.Overlap(interval.Must(interval.Of(3.0, 3.0)))
	require.NoError(t, err)
	assert.Equal(t, []interval.Interval{ints, doubles}, got)
	require.NoError(t, tree.Verify())
}

func TestClear(t *testing.T) {
	t.Parallel()

	tree := longTree(t)
	insertAll(t, tree, closed(1, 2), closed(3, 4))

	require.NoError(t, tree.Clear())
	assert.True(t, tree.IsEmpty())
	assert.Zero(t, tree.Size())
	assert.Zero(t, tree.Height())
	require.NoError(t, tree.Verify())
}

func TestIterators(t *testing.T) {
	t.Parallel()

	tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindList).Build()
	require.NoError(t, err)

	want := []interval.Interval{closed(1, 3), closed(1, 3), closed(2, 2), closed(4, 8)}
	insertAll(t, tree, want[3], want[0], want[2], want[1])

	got, err := tree.Intervals()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	it := tree.IntervalIterator()
	count := 0

	for it.Next() {
		count++
	}

	require.NoError(t, it.Err())
	assert.Equal(t, len(want), count)

	nodes := tree.NodeIterator()
	require.True(t, nodes.HasNext())
	assert.Equal(t, "[1,3]", nodes.Next().Key())
}

func TestBuilder_RejectsIncompleteConfiguration(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().CollectionKind(collection.KindSet).Build()
	require.ErrorIs(t, err, ErrIllegalConfiguration)

	_, err = NewBuilder().UsePredefinedType(numeric.Long).Build()
	require.ErrorIs(t, err, ErrIllegalConfiguration)

	_, err = NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindSet).
		Filter(interval.Filter{}).Build()
	require.ErrorIs(t, err, ErrIllegalConfiguration)
}

func TestBuilder_PersistorFollowsCollectionKind(t *testing.T) {
	t.Parallel()

	cfg, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindList).
		Persistor(collection.NewMapPersistor()).Configuration()
	require.NoError(t, err)

	assert.True(t, cfg.UsesPersistor())
	assert.Equal(t, "persistent-list", cfg.Factory().Name())
	assert.Equal(t, numeric.Long, cfg.Kind())
	assert.True(t, cfg.AutoBalancing())
}
