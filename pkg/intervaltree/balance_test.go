package intervaltree

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

const (
	randomIntervals = 600
	randomDomain    = 400
	randomMaxLength = 40
	randomQueries   = 200
)

func randomInterval(rng *rand.Rand) interval.Interval {
	start := rng.Int64N(randomDomain)

	return closed(start, start+rng.Int64N(randomMaxLength))
}

// bruteOverlap scans every interval with the relation predicate.
func bruteOverlap(stored []interval.Interval, q interval.Interval) []interval.Interval {
	var out []interval.Interval

	for _, iv := range stored {
		if iv.Intersects(q, compare.Promoting{}) {
			out = append(out, iv)
		}
	}

	return out
}

func TestRandomMutations_KeepInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))

	tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindList).Build()
	require.NoError(t, err)

	var stored []interval.Interval

	for i := range randomIntervals {
		iv := randomInterval(rng)
		insertAll(t, tree, iv)
		stored = append(stored, iv)

		if i%50 == 0 {
			require.NoError(t, tree.Verify(), "after insert %d", i)
		}
	}

	require.NoError(t, tree.Verify())
	assert.Equal(t, len(stored), tree.Size())

	rng.Shuffle(len(stored), func(i, j int) { stored[i], stored[j] = stored[j], stored[i] })

	half := len(stored) / 2
	for i, iv := range stored[:half] {
		removed, err := tree.Remove(iv)
		require.NoError(t, err)
		require.True(t, removed, "remove %s", iv)

		if i%50 == 0 {
			require.NoError(t, tree.Verify(), "after remove %d", i)
		}
	}

	stored = stored[half:]

	require.NoError(t, tree.Verify())
	assert.Equal(t, len(stored), tree.Size())

	stats := tree.Stats()
	assert.LessOrEqual(t, stats.MaxImbalance, 1)

	for range randomQueries {
		q := randomInterval(rng)

		got, err := tree.Overlap(q)
		require.NoError(t, err)
		assert.ElementsMatch(t, bruteOverlap(stored, q), got, "query %s", q)
	}
}

func TestInsertRemove_Inverse(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	tree := longTree(t)

	for range randomIntervals / 4 {
		insertAll(t, tree, randomInterval(rng))
	}

	before := keys(tree)
	size := tree.Size()

	extra := closed(randomDomain+1, randomDomain+2)
	insertAll(t, tree, extra)

	removed, err := tree.Remove(extra)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, before, keys(tree))
	assert.Equal(t, size, tree.Size())
	require.NoError(t, tree.Verify())
}

// pointTree builds an unbalanced-insert tree of points so the shape is known:
//
//	      4
//	   2     6
//	  1 3   5  8
//	          7
func pointTree(t *testing.T) *Tree {
	t.Helper()

	tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindSet).
		AutoBalancing(false).Build()
	require.NoError(t, err)

	for _, p := range []int64{4, 2, 6, 1, 3, 5, 8, 7} {
		insertAll(t, tree, closed(p, p))
	}

	require.Equal(t, "[4,4]", tree.Root().Key())

	return tree
}

func TestSplice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remove int64
		root   string
	}{
		{"leaf", 1, "[4,4]"},
		{"single child", 8, "[4,4]"},
		{"successor is right child", 2, "[4,4]"},
		{"successor deep in right subtree", 6, "[4,4]"},
		{"root", 4, "[5,5]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := pointTree(t)
			want := slices.DeleteFunc(keys(tree), func(k string) bool {
				return k == closed(tt.remove, tt.remove).UniqueIdentifier()
			})

			removed, err := tree.Remove(closed(tt.remove, tt.remove))
			require.NoError(t, err)
			require.True(t, removed)

			assert.Equal(t, want, keys(tree))
			assert.Equal(t, tt.root, tree.Root().Key())
			assert.Nil(t, tree.Root().Parent())
			require.NoError(t, tree.Verify())
		})
	}
}

func TestSplice_DrainsTree(t *testing.T) {
	t.Parallel()

	tree := pointTree(t)

	for _, p := range []int64{4, 6, 2, 8, 1, 5, 3, 7} {
		removed, err := tree.Remove(closed(p, p))
		require.NoError(t, err)
		require.True(t, removed)
		require.NoError(t, tree.Verify())
	}

	assert.True(t, tree.IsEmpty())
	assert.Zero(t, tree.Size())
}

func TestBalance_RebuildsDegenerateTree(t *testing.T) {
	t.Parallel()

	const points = 64

	tree, err := NewBuilder().UsePredefinedType(numeric.Long).CollectionKind(collection.KindSet).
		AutoBalancing(false).Build()
	require.NoError(t, err)

	for p := range int64(points) {
		insertAll(t, tree, closed(p, p+10))
	}

	assert.Equal(t, points, tree.Height())
	require.NoError(t, tree.Verify())

	before := keys(tree)

	tree.Balance()

	assert.Equal(t, 7, tree.Height())
	assert.Equal(t, before, keys(tree))
	assert.LessOrEqual(t, tree.Stats().MaxImbalance, 1)
	require.NoError(t, tree.Verify())

	got, err := tree.Overlap(closed(points, points))
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestAutoBalancing_SortedInsertsStayLogarithmic(t *testing.T) {
	t.Parallel()

	tree := longTree(t)

	for p := range int64(1023) {
		insertAll(t, tree, closed(p, p))
	}

	assert.Equal(t, 10, tree.Height())
	require.NoError(t, tree.Verify())

	for n := range tree.Nodes() {
		depth := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			depth++
		}

		require.Equal(t, depth, n.Level(), n.Key())
	}
}

func TestStructuralMisuse_Panics(t *testing.T) {
	t.Parallel()

	tree := pointTree(t)
	root := tree.Root()
	leaf := leftmost(root)

	assert.Panics(t, func() { root.sideOf() })
	assert.Panics(t, func() { leaf.singleChild() })
	assert.Panics(t, func() { root.singleChild() })
	assert.Panics(t, func() { tree.rotateLeft(leaf) })
	assert.Panics(t, func() { tree.rotateRight(leaf) })
}

func TestVerify_ReportsCorruption(t *testing.T) {
	t.Parallel()

	tree := pointTree(t)
	tree.Root().height = 42
	tree.Root().Left().level = 7

	err := tree.Verify()
	require.ErrorIs(t, err, ErrIllegalStructure)
	assert.Contains(t, err.Error(), "height 42")
	assert.Contains(t, err.Error(), "level 7")
}
