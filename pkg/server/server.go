// Package server exposes summarization over HTTP together with health,
// readiness and Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/mpedy/myboxplot/pkg/config"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/observability"
	"github.com/mpedy/myboxplot/pkg/pipeline"
	"github.com/mpedy/myboxplot/pkg/report"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// Routes.
const (
	PathSummarize  = "/v1/summarize"
	PathCategories = "/v1/categories"
	PathMetrics    = "/metrics"
	PathHealth     = "/healthz"
	PathReady      = "/readyz"
)

// ReasonReportFailed tags a summary that could not be turned into a report
// document. It is a server fault, unlike the pipeline reasons.
const ReasonReportFailed = "report_failed"

// DefaultMaxBodyBytes caps uploaded datasets.
const DefaultMaxBodyBytes = 32 << 20

// Deps holds injectable dependencies. Zero-value fields use no-op defaults.
type Deps struct {
	// Pipeline runs summarizations. Nil creates one without telemetry.
	Pipeline *pipeline.Service

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer is an optional OTel tracer for the HTTP middleware.
	Tracer trace.Tracer

	// RED is an optional request metrics recorder.
	RED *observability.REDMetrics

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Ready checks gate /readyz.
	Ready []observability.ReadyCheck
}

// Options holds request defaults.
type Options struct {
	// Summarize is used when a request does not override it.
	Summarize pipeline.Options

	// MaxBodyBytes caps the request body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// ThresholdLines are attached to "report=1" documents.
	ThresholdLines []report.ThresholdLine
}

type api struct {
	pipeline *pipeline.Service
	logger   *slog.Logger
	options  Options
}

// NewHandler builds the HTTP handler.
//
// POST /v1/summarize takes a dataset body. The format comes from the
// "format" query parameter or the Content-Type; "scale" overrides the score
// scale; "report=1" returns the extended report document instead of the raw
// views. Decoding errors answer 400 and data errors answer 422.
func NewHandler(deps Deps, options Options) http.Handler {
	a := &api{pipeline: deps.Pipeline, logger: deps.Logger, options: options}

	if a.pipeline == nil {
		a.pipeline = pipeline.New(pipeline.Deps{Logger: deps.Logger})
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	if a.options.MaxBodyBytes <= 0 {
		a.options.MaxBodyBytes = DefaultMaxBodyBytes
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+PathSummarize, a.handleSummarize)
	mux.HandleFunc("GET "+PathCategories, a.handleCategories)
	mux.Handle("GET "+PathHealth, observability.HealthHandler())
	mux.Handle("GET "+PathReady, observability.ReadyHandler(deps.Ready...))

	if deps.Metrics != nil {
		mux.Handle("GET "+PathMetrics, deps.Metrics)
	}

	return observability.HTTPMiddleware(tracer, deps.RED, mux)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func (a *api) handleSummarize(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	format, err := requestFormat(hr)
	if err != nil {
		a.writeError(ctx, rw, http.StatusBadRequest, pipeline.ReasonInvalidInput, err)

		return
	}

	opts := a.options.Summarize

	if raw := hr.URL.Query().Get("scale"); raw != "" {
		scale, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			a.writeError(ctx, rw, http.StatusBadRequest, pipeline.ReasonInvalidInput,
				fmt.Errorf("%w: %q", dataset.ErrScaleOutOfRange, raw))

			return
		}

		parseErr = dataset.ValidateScale(scale)
		if parseErr != nil {
			a.writeError(ctx, rw, http.StatusBadRequest, pipeline.ReasonInvalidInput, parseErr)

			return
		}

		opts.Scale = scale
	}

	body := http.MaxBytesReader(rw, hr.Body, a.options.MaxBodyBytes)

	result, err := a.pipeline.SummarizeReader(ctx, body, format, opts)
	if err != nil {
		reason := pipeline.Reason(err)

		status := http.StatusUnprocessableEntity
		if reason == pipeline.ReasonInvalidInput {
			status = http.StatusBadRequest
		}

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		a.writeError(ctx, rw, status, reason, err)

		return
	}

	if hr.URL.Query().Get("report") == "1" {
		a.writeReport(ctx, rw, result)

		return
	}

	a.writeJSON(ctx, rw, http.StatusOK, result)
}

func (a *api) writeReport(ctx context.Context, rw http.ResponseWriter, result pipeline.Result) {
	doc, err := report.NewDocument(result, report.Options{ThresholdLines: a.options.ThresholdLines})
	if err != nil {
		a.writeError(ctx, rw, http.StatusInternalServerError, ReasonReportFailed, err)

		return
	}

	a.writeJSON(ctx, rw, http.StatusOK, doc)
}

func (a *api) handleCategories(rw http.ResponseWriter, hr *http.Request) {
	a.writeJSON(hr.Context(), rw, http.StatusOK, survey.Catalog())
}

// requestFormat picks the dataset format from ?format= or the Content-Type.
func requestFormat(hr *http.Request) (dataset.Format, error) {
	if name := hr.URL.Query().Get("format"); name != "" {
		format, err := dataset.ParseFormat(name)
		if err != nil {
			return "", fmt.Errorf("format parameter: %w", err)
		}

		return format, nil
	}

	mediaType, _, err := mime.ParseMediaType(hr.Header.Get("Content-Type"))
	if err != nil {
		return dataset.FormatCSV, nil //nolint:nilerr // missing or malformed Content-Type means CSV.
	}

	switch {
	case mediaType == "application/json":
		return dataset.FormatJSON, nil
	case strings.Contains(mediaType, "yaml"):
		return dataset.FormatYAML, nil
	default:
		return dataset.FormatCSV, nil
	}
}

func (a *api) writeError(ctx context.Context, rw http.ResponseWriter, status int, reason string, err error) {
	a.logger.InfoContext(ctx, "request rejected", slog.Int("status", status), slog.String("reason", reason), slog.Any("error", err))
	a.writeJSON(ctx, rw, status, errorResponse{Error: err.Error(), Reason: reason})
}

func (a *api) writeJSON(ctx context.Context, rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		a.logger.ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

// Server is a running HTTP server.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// Listen binds the configured address. Serve starts accepting requests.
func Listen(ctx context.Context, cfg config.ServerConfig, handler http.Handler) (*Server, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts requests until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve() error {
	err := s.server.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}
