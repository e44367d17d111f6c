package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/report"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// Tool name constants.
const (
	ToolNameSummarize  = "boxplot_summarize"
	ToolNameCategories = "survey_categories"
)

// MaxDataInputBytes is the maximum allowed size for inline datasets (4 MB).
const MaxDataInputBytes = 4 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyData indicates the data parameter is empty.
	ErrEmptyData = errors.New("data parameter is required and must not be empty")
	// ErrDataTooLarge indicates the data input exceeds the size limit.
	ErrDataTooLarge = errors.New("data input exceeds maximum size")
	// ErrUnknownView indicates an unsupported view name.
	ErrUnknownView = errors.New("unknown view")
	// ErrInvalidScale indicates a scale outside (0, 100].
	ErrInvalidScale = errors.New("invalid scale")
)

// SummarizeInput is the input schema for the boxplot_summarize tool.
type SummarizeInput struct {
	Data   string  `json:"data"             jsonschema:"dataset contents"`
	Format string  `json:"format,omitempty" jsonschema:"dataset format: csv (default) json or yaml"`
	Scale  float64 `json:"scale,omitempty"  jsonschema:"multiplier applied to scores in [0,1], at most 100 (default: 100)"`
	View   string  `json:"view,omitempty"   jsonschema:"restrict output to one view: all dept or program"`
	Report bool    `json:"report,omitempty" jsonschema:"return the extended report with p5 p95 and stddev"`
}

// CategoriesInput is the input schema for the survey_categories tool.
type CategoriesInput struct{}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateSummarizeInput(input SummarizeInput) error {
	if strings.TrimSpace(input.Data) == "" {
		return ErrEmptyData
	}

	if len(input.Data) > MaxDataInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDataTooLarge, len(input.Data), MaxDataInputBytes)
	}

	if input.Scale != 0 {
		err := dataset.ValidateScale(input.Scale)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScale, err)
		}
	}

	return nil
}

func parseView(name string) (boxplot.View, bool, error) {
	if name == "" {
		return 0, false, nil
	}

	for _, v := range boxplot.Views() {
		if strings.EqualFold(name, v.String()) {
			return v, true, nil
		}
	}

	return 0, false, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

func (s *Server) handleSummarize(ctx context.Context, _ *mcpsdk.CallToolRequest, input SummarizeInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSummarizeInput(input)
	if err != nil {
		return errorResult(err)
	}

	format := dataset.FormatCSV
	if input.Format != "" {
		format, err = dataset.ParseFormat(input.Format)
		if err != nil {
			return errorResult(err)
		}
	}

	view, single, err := parseView(input.View)
	if err != nil {
		return errorResult(err)
	}

	opts := s.defaults
	if input.Scale > 0 {
		opts.Scale = input.Scale
	}

	result, err := s.pipeline.SummarizeReader(ctx, strings.NewReader(input.Data), format, opts)
	if err != nil {
		return errorResult(err)
	}

	if input.Report {
		doc, docErr := report.NewDocument(result, report.Options{ThresholdLines: s.lines})
		if docErr != nil {
			return errorResult(docErr)
		}

		if single {
			doc.Views = filterViews(doc.Views, view.String())
		}

		return jsonResult(doc)
	}

	if single {
		return jsonResult(map[string]any{
			"view":         view.String(),
			"summaries":    result.Views.View(view),
			"counts":       result.Counts,
			"observations": result.Observations,
		})
	}

	return jsonResult(result)
}

func filterViews(views []report.ViewReport, name string) []report.ViewReport {
	for _, v := range views {
		if v.View == name {
			return []report.ViewReport{v}
		}
	}

	return nil
}

func handleCategories(_ context.Context, _ *mcpsdk.CallToolRequest, _ CategoriesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(survey.Catalog())
}
