package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

const (
	metricStoreCallsTotal    = "intervaltree.store.calls.total"
	metricStoreCallDuration  = "intervaltree.store.call.duration.seconds"
	metricStoreFailuresTotal = "intervaltree.store.failures.total"
	metricStoreIntervals     = "intervaltree.store.intervals.written.total"

	attrBackend = "backend"

	storeOpLoad   = "load"
	storeOpUpsert = "upsert"
	storeOpRemove = "remove"
)

// StoreMetrics holds the OTel instruments for persistor calls.
type StoreMetrics struct {
	calls     metric.Int64Counter
	duration  metric.Float64Histogram
	failures  metric.Int64Counter
	intervals metric.Int64Counter
}

// NewStoreMetrics creates persistor instruments from the given meter.
func NewStoreMetrics(mt metric.Meter) (*StoreMetrics, error) {
	calls, err := mt.Int64Counter(metricStoreCallsTotal,
		metric.WithDescription("Total persistor calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStoreCallsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricStoreCallDuration,
		metric.WithDescription("Persistor call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStoreCallDuration, err)
	}

	failures, err := mt.Int64Counter(metricStoreFailuresTotal,
		metric.WithDescription("Total failed persistor calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStoreFailuresTotal, err)
	}

	intervals, err := mt.Int64Counter(metricStoreIntervals,
		metric.WithDescription("Intervals written by upserts"),
		metric.WithUnit("{interval}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStoreIntervals, err)
	}

	return &StoreMetrics{calls: calls, duration: duration, failures: failures, intervals: intervals}, nil
}

var _ collection.Persistor = (*InstrumentedPersistor)(nil)

// InstrumentedPersistor records every call of the wrapped persistor.
type InstrumentedPersistor struct {
	inner   collection.Persistor
	backend string
	metrics *StoreMetrics
}

// Instrument wraps p. backend labels the recorded metrics.
func Instrument(p collection.Persistor, backend string, m *StoreMetrics) *InstrumentedPersistor {
	return &InstrumentedPersistor{inner: p, backend: backend, metrics: m}
}

// Unwrap returns the wrapped persistor.
func (ip *InstrumentedPersistor) Unwrap() collection.Persistor { return ip.inner }

// Load implements collection.Persistor.
func (ip *InstrumentedPersistor) Load(key string) ([]interval.Interval, bool, error) {
	start := time.Now()
	ivs, found, err := ip.inner.Load(key)
	ip.record(storeOpLoad, start, err)

	return ivs, found, err
}

// Upsert implements collection.Persistor.
func (ip *InstrumentedPersistor) Upsert(key string, c collection.Collection) error {
	start := time.Now()
	err := ip.inner.Upsert(key, c)
	ip.record(storeOpUpsert, start, err)

	if err == nil {
		ip.metrics.intervals.Add(context.Background(), int64(c.Len()),
			metric.WithAttributes(attribute.String(attrBackend, ip.backend)))
	}

	return err
}

// Remove implements collection.Persistor.
func (ip *InstrumentedPersistor) Remove(key string) error {
	start := time.Now()
	err := ip.inner.Remove(key)
	ip.record(storeOpRemove, start, err)

	return err
}

func (ip *InstrumentedPersistor) record(op string, start time.Time, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrBackend, ip.backend),
	)

	ip.metrics.calls.Add(ctx, 1, attrs)
	ip.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		ip.metrics.failures.Add(ctx, 1, attrs)
	}
}
