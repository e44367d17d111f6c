package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpedy/myboxplot/pkg/observability"
)

func newTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	return tp.Tracer("test"), exporter
}

func TestHTTPMiddleware_CreatesSpan(t *testing.T) {
	t.Parallel()

	tracer, exporter := newTestTracer(t)

	var spanInHandler bool

	handler := http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		spanInHandler = trace.SpanContextFromContext(hr.Context()).IsValid()

		rw.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	observability.HTTPMiddleware(tracer, nil, handler).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/summarize", http.NoBody))

	assert.True(t, spanInHandler)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /v1/summarize", spans[0].Name)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
}

func TestHTTPMiddleware_ExtractsTraceParent(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	var traceIDInHandler string

	handler := http.HandlerFunc(func(_ http.ResponseWriter, hr *http.Request) {
		traceIDInHandler = trace.SpanContextFromContext(hr.Context()).TraceID().String()
	})

	// Use a local propagator so the test does not depend on global state.
	prop := propagation.TraceContext{}
	wrapped := http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		ctx := prop.Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))
		observability.HTTPMiddleware(tp.Tracer("test"), nil, handler).ServeHTTP(rw, hr.WithContext(ctx))
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("traceparent", "00-0102030405060708090a0b0c0d0e0f10-0102030405060708-01")

	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", traceIDInHandler)
}

func TestHTTPMiddleware_StatusHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
		wantErrors int64
	}{
		{"ok", http.StatusOK, codes.Unset, 0},
		{"unprocessable", http.StatusUnprocessableEntity, codes.Unset, 1},
		{"server error", http.StatusInternalServerError, codes.Error, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracer, exporter := newTestTracer(t)
			reader, mp := newTestReader(t)

			red, err := observability.NewREDMetrics(mp.Meter("test"))
			require.NoError(t, err)

			handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
				rw.WriteHeader(tt.status)
			})

			rec := httptest.NewRecorder()
			observability.HTTPMiddleware(tracer, red, handler).
				ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/summarize", http.NoBody))

			assert.Equal(t, tt.status, rec.Code)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)

			rm := collectMetrics(t, reader)
			assert.Equal(t, int64(1), sumByAttr(t, findMetric(rm, "myboxplot.requests.total"), "op", "POST /v1/summarize"))

			if tt.wantErrors > 0 {
				assert.Equal(t, tt.wantErrors, sumByAttr(t, findMetric(rm, "myboxplot.errors.total"), "", ""))
			} else {
				assert.Nil(t, findMetric(rm, "myboxplot.errors.total"))
			}
		})
	}
}
