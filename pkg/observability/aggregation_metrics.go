package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricObservationsTotal = "myboxplot.aggregation.observations.total"
	metricCategoriesTotal   = "myboxplot.aggregation.categories.total"
	metricOutliersTotal     = "myboxplot.aggregation.outliers.total"
	metricAggregationDur    = "myboxplot.aggregation.duration.seconds"
	metricFailuresTotal     = "myboxplot.aggregation.failures.total"

	attrView   = "view"
	attrReason = "reason"
)

// AggregationMetrics holds OTel instruments for box-plot aggregation runs.
type AggregationMetrics struct {
	observations metric.Int64Counter
	categories   metric.Int64Counter
	outliers     metric.Int64Counter
	duration     metric.Float64Histogram
	failures     metric.Int64Counter
}

// ViewOutliers is the outlier count of one view.
type ViewOutliers struct {
	View  string
	Count int
}

// AggregationStats holds the statistics of one aggregation run, decoupled
// from the box-plot types.
type AggregationStats struct {
	Observations int
	Categories   int
	Outliers     []ViewOutliers
	Duration     time.Duration
}

// NewAggregationMetrics creates aggregation metric instruments from the given meter.
func NewAggregationMetrics(mt metric.Meter) (*AggregationMetrics, error) {
	observations, err := mt.Int64Counter(metricObservationsTotal,
		metric.WithDescription("Total scored answers aggregated"),
		metric.WithUnit("{observation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricObservationsTotal, err)
	}

	categories, err := mt.Int64Counter(metricCategoriesTotal,
		metric.WithDescription("Total categories summarized"),
		metric.WithUnit("{category}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCategoriesTotal, err)
	}

	outliers, err := mt.Int64Counter(metricOutliersTotal,
		metric.WithDescription("Outliers found, by view"),
		metric.WithUnit("{outlier}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOutliersTotal, err)
	}

	duration, err := mt.Float64Histogram(metricAggregationDur,
		metric.WithDescription("Aggregation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAggregationDur, err)
	}

	failures, err := mt.Int64Counter(metricFailuresTotal,
		metric.WithDescription("Failed aggregations, by reason"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFailuresTotal, err)
	}

	return &AggregationMetrics{
		observations: observations,
		categories:   categories,
		outliers:     outliers,
		duration:     duration,
		failures:     failures,
	}, nil
}

// RecordRun records the statistics of a successful run.
// Safe to call on a nil receiver (no-op).
func (am *AggregationMetrics) RecordRun(ctx context.Context, stats AggregationStats) {
	if am == nil {
		return
	}

	am.observations.Add(ctx, int64(stats.Observations))
	am.categories.Add(ctx, int64(stats.Categories))
	am.duration.Record(ctx, stats.Duration.Seconds())

	for _, vo := range stats.Outliers {
		am.outliers.Add(ctx, int64(vo.Count), metric.WithAttributes(attribute.String(attrView, vo.View)))
	}
}

// RecordFailure counts a failed run.
// Safe to call on a nil receiver (no-op).
func (am *AggregationMetrics) RecordFailure(ctx context.Context, reason string) {
	if am == nil {
		return
	}

	am.failures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}
