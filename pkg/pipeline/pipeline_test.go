package pipeline_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mpedy/myboxplot/pkg/alg/stats"
	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/pipeline"
	"github.com/mpedy/myboxplot/pkg/survey"
)

const surveyCSV = `respondent,category,score,flag_dept,flag_program
r1,CONOSCENZE,0.8,SI,SI
r1,INTERESSE,0.9,SI,SI
r2,CONOSCENZE,0.6,NO,SI
r2,INTERESSE,0.7,SI,NO
r3,CONOSCENZE,,NO,NO
r3,INTERESSE,,NO,NO
r4,CONOSCENZE,0.1,SI,SI
r4,INTERESSE,0.75,NO,SI
`

type harness struct {
	svc      *pipeline.Service
	spans    *tracetest.InMemoryExporter
	reader   *sdkmetric.ManualReader
	logs     *bytes.Buffer
	mu       sync.Mutex
	reported []*sentry.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		spans:  tracetest.NewInMemoryExporter(),
		reader: sdkmetric.NewManualReader(),
		logs:   &bytes.Buffer{},
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(h.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(h.reader))

	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
		require.NoError(t, mp.Shutdown(context.Background()))
	})

	metrics, err := observability.NewAggregationMetrics(mp.Meter("test"))
	require.NoError(t, err)

	reporter, err := observability.NewErrorReporter(observability.ReporterOptions{
		DSN: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			h.mu.Lock()
			defer h.mu.Unlock()

			h.reported = append(h.reported, event)

			return nil
		},
	})
	require.NoError(t, err)

	h.svc = pipeline.New(pipeline.Deps{
		Logger:   slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Tracer:   tp.Tracer("test"),
		Metrics:  metrics,
		Reporter: reporter,
	})

	return h
}

func (h *harness) counter(t *testing.T, name, key, value string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	var total int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				if key == "" {
					total += dp.Value

					continue
				}

				if v, found := dp.Attributes.Value(attribute.Key(key)); found && v.AsString() == value {
					total += dp.Value
				}
			}
		}
	}

	return total
}

func (h *harness) events() []*sentry.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]*sentry.Event(nil), h.reported...)
}

func TestSummarizeReader_HappyPath(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	result, err := h.svc.SummarizeReader(context.Background(), strings.NewReader(surveyCSV), dataset.FormatCSV, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Observations)
	assert.Equal(t, dataset.RespondentCounts{
		TotalRespondents:        4,
		BlankQuestionnaires:     1,
		CompletedQuestionnaires: 3,
	}, result.Counts)

	require.Equal(t, 2, result.Views.Len())
	assert.Equal(t, survey.Conoscenze, result.Views.All[0].Category)
	assert.Equal(t, survey.Interesse, result.Views.All[1].Category)
	assert.InDelta(t, 60.0, result.Views.All[0].Median, 1e-9)
	assert.Equal(t, []float64{80, 10}, result.Views.ByDept[0].Values)

	spans := h.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "myboxplot.pipeline.summarize", spans[0].Name)

	assert.Equal(t, int64(6), h.counter(t, "myboxplot.aggregation.observations.total", "", ""))
	assert.Equal(t, int64(2), h.counter(t, "myboxplot.aggregation.categories.total", "", ""))
	assert.Contains(t, h.logs.String(), "summarized")
	assert.Empty(t, h.events())
}

func TestSummarize_ScaleAndOverrides(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rows := []dataset.Row{
		{Respondent: "a", Category: survey.Orari, Score: 0.5, FlagDept: boxplot.FlagYes, FlagProgram: boxplot.FlagYes},
		{Respondent: "b", Category: survey.Orari, Score: 1, FlagDept: boxplot.FlagYes, FlagProgram: boxplot.FlagYes},
	}

	result, err := h.svc.Summarize(context.Background(), rows, pipeline.Options{
		Scale:     10,
		Overrides: map[survey.Category]survey.Color{survey.Orari: "#000000"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, result.Views.All[0].Max, 1e-9)
	assert.Equal(t, survey.Color("#000000"), result.Views.All[0].Identity.Color)
}

func TestSummarize_InsufficientDataSurfaces(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rows := []dataset.Row{
		{Respondent: "a", Category: survey.Coerenza, Score: 0.5, FlagDept: boxplot.FlagYes, FlagProgram: boxplot.FlagNo},
	}

	_, err := h.svc.Summarize(context.Background(), rows, pipeline.Options{})
	require.ErrorIs(t, err, boxplot.ErrInsufficientData)

	var insufficient *boxplot.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, survey.Coerenza, insufficient.Category)
	assert.Equal(t, boxplot.ViewProgram, insufficient.View)

	spans := h.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	assert.Equal(t, int64(1), h.counter(t, "myboxplot.aggregation.failures.total", "reason", pipeline.ReasonInsufficientData))

	events := h.events()
	require.Len(t, events, 1)
	assert.Equal(t, "COERENZA", events[0].Tags["category"])
	assert.Equal(t, "program", events[0].Tags["view"])
}

func TestSummarize_EmptyInput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rows := []dataset.Row{{Respondent: "a", Category: survey.Orari, Blank: true}}

	_, err := h.svc.Summarize(context.Background(), rows, pipeline.Options{})
	require.ErrorIs(t, err, stats.ErrEmptyInput)
	assert.Equal(t, int64(1), h.counter(t, "myboxplot.aggregation.failures.total", "reason", pipeline.ReasonEmptyInput))
}

func TestSummarizeReader_InvalidInputIsNotReported(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, err := h.svc.SummarizeReader(context.Background(),
		strings.NewReader("respondent,category,score,flag_dept,flag_program\nr1,ORARI,4,NO,NO\n"),
		dataset.FormatCSV, pipeline.Options{})
	require.ErrorIs(t, err, dataset.ErrInvalidScore)

	assert.Equal(t, int64(1), h.counter(t, "myboxplot.aggregation.failures.total", "reason", pipeline.ReasonInvalidInput))
	assert.Empty(t, h.events())
}

func TestSummarizeReader_ScaleKeepsFencesInDomain(t *testing.T) {
	t.Parallel()

	const data = `respondent,category,score,flag_dept,flag_program
r1,ORARI,0.6,SI,SI
r2,ORARI,0.8,SI,SI
r3,ORARI,1,SI,SI
r4,ORARI,0.9,SI,SI
`

	h := newHarness(t)

	_, err := h.svc.SummarizeReader(context.Background(), strings.NewReader(data), dataset.FormatCSV, pipeline.Options{Scale: 1000})
	require.ErrorIs(t, err, dataset.ErrScaleOutOfRange)
	assert.Equal(t, pipeline.ReasonInvalidInput, pipeline.Reason(err))
	assert.Equal(t, int64(1), h.counter(t, "myboxplot.aggregation.failures.total", "reason", pipeline.ReasonInvalidInput))

	result, err := h.svc.SummarizeReader(context.Background(), strings.NewReader(data), dataset.FormatCSV,
		pipeline.Options{Scale: dataset.MaxScale})
	require.NoError(t, err)

	for _, v := range boxplot.Views() {
		for _, s := range result.Views.View(v) {
			assert.LessOrEqual(t, s.Q3, s.UpperFence, v.String())
			assert.LessOrEqual(t, s.UpperFence, 100.0, v.String())
			assert.LessOrEqual(t, 0.0, s.LowerFence, v.String())
			assert.LessOrEqual(t, s.LowerFence, s.Q1, v.String())
			assert.Empty(t, s.OutliersAbove, v.String())
		}
	}
}

func TestSummarizeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(surveyCSV), 0o600))

	result, err := pipeline.New(pipeline.Deps{}).SummarizeFile(context.Background(), path, "", pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Views.Len())

	_, err = pipeline.New(pipeline.Deps{}).SummarizeFile(context.Background(), filepath.Join(t.TempDir(), "x.csv"), "", pipeline.Options{})
	require.Error(t, err)
}

func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pipeline.ReasonInsufficientData, pipeline.Reason(&boxplot.InsufficientDataError{}))
	assert.Equal(t, pipeline.ReasonUnknownCategory, pipeline.Reason(&survey.UnknownCategoryError{Category: "X"}))
	assert.Equal(t, pipeline.ReasonEmptyInput, pipeline.Reason(stats.ErrEmptyInput))
	assert.Equal(t, pipeline.ReasonInvalidInput, pipeline.Reason(dataset.ErrInvalidScore))
}
