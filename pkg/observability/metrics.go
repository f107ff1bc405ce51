package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOperationsTotal   = "intervaltree.operations.total"
	metricOperationDuration = "intervaltree.operation.duration.seconds"
	metricOperationErrors   = "intervaltree.operation.errors.total"
	metricOperationResults  = "intervaltree.operation.results"

	attrOp     = "op"
	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 10µs to 10s: single lookups up to bulk
// loads of large datasets.
var durationBucketBoundaries = []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// resultBucketBoundaries buckets the number of intervals an operation returned.
var resultBucketBoundaries = []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000, 10000}

// OperationMetrics holds the OTel instruments for tree operations: rate,
// errors, duration and result sizes.
type OperationMetrics struct {
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorsTotal       metric.Int64Counter
	results           metric.Int64Histogram
}

// NewOperationMetrics creates operation instruments from the given meter.
func NewOperationMetrics(mt metric.Meter) (*OperationMetrics, error) {
	opsTotal, err := mt.Int64Counter(metricOperationsTotal,
		metric.WithDescription("Total number of tree operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOperationsTotal, err)
	}

	opDuration, err := mt.Float64Histogram(metricOperationDuration,
		metric.WithDescription("Tree operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOperationDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricOperationErrors,
		metric.WithDescription("Total number of failed tree operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOperationErrors, err)
	}

	results, err := mt.Int64Histogram(metricOperationResults,
		metric.WithDescription("Intervals returned per query"),
		metric.WithUnit("{interval}"),
		metric.WithExplicitBucketBoundaries(resultBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOperationResults, err)
	}

	return &OperationMetrics{
		operationsTotal:   opsTotal,
		operationDuration: opDuration,
		errorsTotal:       errTotal,
		results:           results,
	}, nil
}

// Record records a finished operation. Negative results are not recorded.
func (om *OperationMetrics) Record(ctx context.Context, op string, duration time.Duration, results int, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	om.operationsTotal.Add(ctx, 1, attrs)
	om.operationDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		om.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))

		return
	}

	if results >= 0 {
		om.results.Record(ctx, int64(results), metric.WithAttributes(attribute.String(attrOp, op)))
	}
}
