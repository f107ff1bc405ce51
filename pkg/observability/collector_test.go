package observability_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
	"github.com/Sumatoshi-tech/intervaltree/pkg/observability"
)

func sampleTree(t *testing.T, b *intervaltree.Builder) *intervaltree.Tree {
	t.Helper()

	tree, err := b.UsePredefinedType(numeric.Long).Build()
	require.NoError(t, err)

	_, err = tree.InsertAll(
		interval.Must(interval.Of[int64](1, 5)),
		interval.Must(interval.Of[int64](2, 6)),
		interval.Must(interval.Of[int64](2, 6, interval.WithLabel("b"))),
		interval.Must(interval.Of[int64](3, 7)),
	)
	require.NoError(t, err)

	return tree
}

func TestTreeCollector(t *testing.T) {
	t.Parallel()

	tree := sampleTree(t, intervaltree.NewBuilder().CollectionKind(collection.KindSet))
	c := observability.NewTreeCollector("sample", tree)

	assert.Equal(t, 6, testutil.CollectAndCount(c))

	expected := `
# HELP intervaltree_tree_height Height of the root node.
# TYPE intervaltree_tree_height gauge
intervaltree_tree_height{tree="sample"} 2
# HELP intervaltree_tree_intervals Stored intervals.
# TYPE intervaltree_tree_intervals gauge
intervaltree_tree_intervals{tree="sample"} 4
# HELP intervaltree_tree_leaves Nodes without children.
# TYPE intervaltree_tree_leaves gauge
intervaltree_tree_leaves{tree="sample"} 2
# HELP intervaltree_tree_max_imbalance Largest height difference between the children of a node.
# TYPE intervaltree_tree_max_imbalance gauge
intervaltree_tree_max_imbalance{tree="sample"} 0
# HELP intervaltree_tree_nodes Nodes, one per distinct normalized range.
# TYPE intervaltree_tree_nodes gauge
intervaltree_tree_nodes{tree="sample"} 3
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"intervaltree_tree_height",
		"intervaltree_tree_intervals",
		"intervaltree_tree_leaves",
		"intervaltree_tree_max_imbalance",
		"intervaltree_tree_nodes",
	))
}

func TestTreeCollector_Registers(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	tree := sampleTree(t, intervaltree.NewBuilder().CollectionKind(collection.KindSet))

	require.NoError(t, reg.Register(observability.NewTreeCollector("a", tree)))
	require.NoError(t, reg.Register(observability.NewTreeCollector("b", tree)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}

func TestCacheCollector(t *testing.T) {
	t.Parallel()

	p := collection.NewMapPersistor()
	tree := sampleTree(t, intervaltree.NewBuilder().Persistor(p))

	factory, ok := tree.Configuration().Factory().(*collection.PersistentFactory)
	require.True(t, ok)

	c := observability.NewCacheCollector("sample", factory)
	assert.Equal(t, 6, testutil.CollectAndCount(c))

	expected := `
# HELP intervaltree_collection_cache_entries Resident collections.
# TYPE intervaltree_collection_cache_entries gauge
intervaltree_collection_cache_entries{tree="sample"} 3
# HELP intervaltree_collection_cache_persist_failures_total Persistor writes that failed.
# TYPE intervaltree_collection_cache_persist_failures_total counter
intervaltree_collection_cache_persist_failures_total{tree="sample"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"intervaltree_collection_cache_entries",
		"intervaltree_collection_cache_persist_failures_total",
	))
	assert.Len(t, p.Keys(), 3)
}
