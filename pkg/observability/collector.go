package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
)

const (
	namespace = "intervaltree"
	labelTree = "tree"
)

// TreeCollector exports the shape of a tree as Prometheus gauges. Collect
// walks the nodes, so it must not run concurrently with a mutation.
type TreeCollector struct {
	tree *intervaltree.Tree

	intervals    *prometheus.Desc
	nodes        *prometheus.Desc
	leaves       *prometheus.Desc
	height       *prometheus.Desc
	maxImbalance *prometheus.Desc
	avgDepth     *prometheus.Desc
}

// NewTreeCollector returns a collector labelling its series with name.
func NewTreeCollector(name string, tree *intervaltree.Tree) *TreeCollector {
	labels := prometheus.Labels{labelTree: name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "tree", metric), help, nil, labels)
	}

	return &TreeCollector{
		tree:         tree,
		intervals:    desc("intervals", "Stored intervals."),
		nodes:        desc("nodes", "Nodes, one per distinct normalized range."),
		leaves:       desc("leaves", "Nodes without children."),
		height:       desc("height", "Height of the root node."),
		maxImbalance: desc("max_imbalance", "Largest height difference between the children of a node."),
		avgDepth:     desc("avg_depth", "Mean node level."),
	}
}

// Describe implements prometheus.Collector.
func (c *TreeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.intervals
	ch <- c.nodes
	ch <- c.leaves
	ch <- c.height
	ch <- c.maxImbalance
	ch <- c.avgDepth
}

// Collect implements prometheus.Collector.
func (c *TreeCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.tree.Stats()

	ch <- prometheus.MustNewConstMetric(c.intervals, prometheus.GaugeValue, float64(s.Intervals))
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(s.Nodes))
	ch <- prometheus.MustNewConstMetric(c.leaves, prometheus.GaugeValue, float64(s.Leaves))
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(s.Height))
	ch <- prometheus.MustNewConstMetric(c.maxImbalance, prometheus.GaugeValue, float64(s.MaxImbalance))
	ch <- prometheus.MustNewConstMetric(c.avgDepth, prometheus.GaugeValue, s.AvgDepth)
}

// CacheCollector exports the collection cache counters of a persistent
// factory.
type CacheCollector struct {
	factory *collection.PersistentFactory

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	loads     *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
	failures  *prometheus.Desc
}

// NewCacheCollector returns a collector labelling its series with name.
func NewCacheCollector(name string, factory *collection.PersistentFactory) *CacheCollector {
	labels := prometheus.Labels{labelTree: name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "collection_cache", metric), help, nil, labels)
	}

	return &CacheCollector{
		factory:   factory,
		hits:      desc("hits_total", "Cache lookups served from memory."),
		misses:    desc("misses_total", "Cache lookups that missed."),
		loads:     desc("loads_total", "Misses resolved from the persistor."),
		evictions: desc("evictions_total", "Collections evicted by size."),
		entries:   desc("entries", "Resident collections."),
		failures:  desc("persist_failures_total", "Persistor writes that failed."),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.loads
	ch <- c.evictions
	ch <- c.entries
	ch <- c.failures
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.factory.CacheStats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.loads, prometheus.CounterValue, float64(s.Loads))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue,
		float64(c.factory.PersistingObserver().Failures()))
}
