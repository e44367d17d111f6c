// Package pipeline runs the full summarization flow: decode rows, derive
// observations and respondent counts, aggregate the three views. It owns the
// spans, metrics, logs and error reports around the pure box-plot core.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/mpedy/myboxplot/pkg/alg/stats"
	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/survey"
)

const spanSummarize = "myboxplot.pipeline.summarize"

// Failure reasons recorded on the failures metric.
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonUnknownCategory  = "unknown_category"
	ReasonEmptyInput       = "empty_input"
	ReasonInvalidInput     = "invalid_input"
)

// Deps holds injectable dependencies. Zero-value fields use no-op defaults.
type Deps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer is an optional OTel tracer. Nil disables tracing.
	Tracer trace.Tracer

	// Metrics is an optional aggregation metrics recorder.
	Metrics *observability.AggregationMetrics

	// Reporter is an optional error reporter.
	Reporter *observability.ErrorReporter
}

// Options controls how rows become observations.
type Options struct {
	// Scale multiplies every score. Zero means dataset.DefaultScale; values
	// above dataset.MaxScale are rejected.
	Scale float64

	// Overrides pins categories to colours.
	Overrides map[survey.Category]survey.Color
}

// Result is the outcome of one summarization.
type Result struct {
	Views        boxplot.ViewSet          `json:"views"        yaml:"views"`
	Counts       dataset.RespondentCounts `json:"counts"       yaml:"counts"`
	Observations int                      `json:"observations" yaml:"observations"`
}

// Service runs summarizations. It is safe for concurrent use.
type Service struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.AggregationMetrics
	reporter *observability.ErrorReporter
}

// New creates a Service.
func New(deps Deps) *Service {
	svc := &Service{
		logger:   deps.Logger,
		tracer:   deps.Tracer,
		metrics:  deps.Metrics,
		reporter: deps.Reporter,
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.tracer == nil {
		svc.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return svc
}

// SummarizeFile loads a dataset file and summarizes it. An empty format is
// inferred from the extension.
func (s *Service) SummarizeFile(ctx context.Context, path string, format dataset.Format, opts Options) (Result, error) {
	rows, err := dataset.LoadFile(path, format)
	if err != nil {
		s.fail(ctx, err)

		return Result{}, err
	}

	return s.Summarize(ctx, rows, opts)
}

// SummarizeReader decodes rows from r and summarizes them.
func (s *Service) SummarizeReader(ctx context.Context, r io.Reader, format dataset.Format, opts Options) (Result, error) {
	rows, err := dataset.Load(r, format)
	if err != nil {
		s.fail(ctx, err)

		return Result{}, fmt.Errorf("load dataset: %w", err)
	}

	return s.Summarize(ctx, rows, opts)
}

// Summarize aggregates decoded rows into the three views.
func (s *Service) Summarize(ctx context.Context, rows []dataset.Row, opts Options) (Result, error) {
	ctx, span := s.tracer.Start(ctx, spanSummarize, trace.WithAttributes(attribute.Int("dataset.rows", len(rows))))
	defer span.End()

	start := time.Now()

	scale := opts.Scale
	if scale == 0 {
		scale = dataset.DefaultScale
	}

	observations, err := dataset.Observations(rows, scale)
	if err != nil {
		return Result{}, s.spanFail(ctx, span, err)
	}

	if len(observations) == 0 {
		return Result{}, s.spanFail(ctx, span, fmt.Errorf("summarize: %w", stats.ErrEmptyInput))
	}

	views, err := boxplot.Aggregate(observations, opts.Overrides)
	if err != nil {
		return Result{}, s.spanFail(ctx, span, err)
	}

	elapsed := time.Since(start)
	outliers := outlierCounts(views)

	span.SetAttributes(
		attribute.Int("dataset.observations", len(observations)),
		attribute.Int("aggregate.categories", len(views.All)),
	)

	s.metrics.RecordRun(ctx, observability.AggregationStats{
		Observations: len(observations),
		Categories:   len(views.All),
		Outliers:     outliers,
		Duration:     elapsed,
	})

	s.logger.DebugContext(ctx, "summarized",
		slog.Int("observations", len(observations)),
		slog.Int("categories", len(views.All)),
		slog.Duration("elapsed", elapsed),
	)

	return Result{
		Views:        views,
		Counts:       dataset.Counts(rows),
		Observations: len(observations),
	}, nil
}

func (s *Service) spanFail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.type", Reason(err)))

	s.fail(ctx, err)

	return err
}

func (s *Service) fail(ctx context.Context, err error) {
	reason := Reason(err)
	tags := map[string]string{"reason": reason}

	var insufficient *boxplot.InsufficientDataError
	if errors.As(err, &insufficient) {
		tags["category"] = string(insufficient.Category)
		tags["view"] = insufficient.View.String()
	}

	s.metrics.RecordFailure(ctx, reason)
	s.logger.WarnContext(ctx, "summarize failed", slog.String("reason", reason), slog.Any("error", err))

	// Decoding errors are not reported.
	if reason != ReasonInvalidInput {
		s.reporter.Capture(err, tags)
	}
}

// Reason classifies an error for metrics and reports.
func Reason(err error) string {
	switch {
	case errors.Is(err, boxplot.ErrInsufficientData):
		return ReasonInsufficientData
	case errors.Is(err, survey.ErrUnknownCategory):
		return ReasonUnknownCategory
	case errors.Is(err, stats.ErrEmptyInput):
		return ReasonEmptyInput
	default:
		return ReasonInvalidInput
	}
}

func outlierCounts(views boxplot.ViewSet) []observability.ViewOutliers {
	result := make([]observability.ViewOutliers, 0, len(boxplot.Views()))

	for _, v := range boxplot.Views() {
		var n int
		for _, sum := range views.View(v) {
			n += sum.OutlierCount()
		}

		result = append(result, observability.ViewOutliers{View: v.String(), Count: n})
	}

	return result
}
