package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mpedy/myboxplot/pkg/observability"
)

func spanAttrMap(span tracetest.SpanStub) map[string]any {
	result := make(map[string]any, len(span.Attributes))
	for _, kv := range span.Attributes {
		result[string(kv.Key)] = kv.Value.AsInterface()
	}

	return result
}

func filteredSpan(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(filter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	return spanAttrMap(spans[0])
}

func TestAttributeFilter_AllowsKnownKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpan(t, nil,
		attribute.String("error.type", "insufficient_data"),
		attribute.Int("dataset.rows", 100),
		attribute.String("aggregate.view", "dept"),
		attribute.String("error", "x"),
	)

	assert.Equal(t, "insufficient_data", attrs["error.type"])
	assert.Equal(t, int64(100), attrs["dataset.rows"])
	assert.Equal(t, "dept", attrs["aggregate.view"])
	assert.Equal(t, "x", attrs["error"])
}

func TestAttributeFilter_BlocksPII(t *testing.T) {
	t.Parallel()

	attrs := filteredSpan(t, nil,
		attribute.String("respondent.id", "matricola-123"),
		attribute.String("user.email", "alice@example.com"),
		attribute.String("email", "bob@example.com"),
		attribute.String("request.body", "{}"),
		attribute.String("error.type", "internal"),
	)

	assert.Equal(t, map[string]any{"error.type": "internal"}, attrs)
}

func TestAttributeFilter_WarnsOnBlocked(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	attrs := filteredSpan(t, logger, attribute.String("unknown.key", "v"))

	assert.Empty(t, attrs)
	assert.Contains(t, buf.String(), "unknown.key")
}

func TestAttributeFilter_DropsUnusedNamespaces(t *testing.T) {
	t.Parallel()

	attrs := filteredSpan(t, nil,
		attribute.String("boxplot.category", "ORARI"),
		attribute.String("render.format", "html"),
		attribute.String("report.format", "pdf"),
		attribute.String("myboxplot.mode", "cli"),
		attribute.Bool("mcp.tool_error", true),
		attribute.String("http.target", "/v1/summarize"),
	)

	assert.Equal(t, map[string]any{
		"mcp.tool_error": true,
		"http.target":    "/v1/summarize",
	}, attrs)
}

func TestAttributeFilter_StripsNestedRespondentKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	attrs := filteredSpan(t, logger,
		attribute.String("dataset.respondent.id", "r1"),
		attribute.Int("dataset.rows", 3),
	)

	assert.Equal(t, map[string]any{"dataset.rows": int64(3)}, attrs)
	assert.Contains(t, buf.String(), "verdict=private")
}
