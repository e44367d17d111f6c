// Package report renders summarization results as terminal tables, JSON,
// YAML or PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mpedy/myboxplot/pkg/alg/stats"
	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/pipeline"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// ErrUnknownFormat is returned for an unsupported report format.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names a report output.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	case FormatText, FormatJSON, FormatYAML, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatText
	}

	return f
}

// ThresholdLine is a reference value drawn across the PDF box plots.
type ThresholdLine struct {
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}

// Options tunes the rendered report.
type Options struct {
	Title          string
	NoColor        bool
	ThresholdLines []ThresholdLine
}

// Row is one category of one view with every figure the outputs show.
type Row struct {
	Category      survey.Category `json:"category"                yaml:"category"`
	DisplayLabel  string          `json:"display_label"           yaml:"display_label"`
	Description   string          `json:"description,omitempty"   yaml:"description,omitempty"`
	Color         survey.Color    `json:"color"                   yaml:"color"`
	SelectionKey  string          `json:"selection_key"           yaml:"selection_key"`
	Count         int             `json:"count"                   yaml:"count"`
	Min           float64         `json:"min"                     yaml:"min"`
	P5            float64         `json:"p5"                      yaml:"p5"`
	Q1            float64         `json:"q1"                      yaml:"q1"`
	Median        float64         `json:"median"                  yaml:"median"`
	Mean          float64         `json:"mean"                    yaml:"mean"`
	StdDev        float64         `json:"stddev"                  yaml:"stddev"`
	Q3            float64         `json:"q3"                      yaml:"q3"`
	P95           float64         `json:"p95"                     yaml:"p95"`
	Max           float64         `json:"max"                     yaml:"max"`
	IQR           float64         `json:"iqr"                     yaml:"iqr"`
	LowerFence    float64         `json:"lower_fence"             yaml:"lower_fence"`
	UpperFence    float64         `json:"upper_fence"             yaml:"upper_fence"`
	WhiskerLow    float64         `json:"whisker_low"             yaml:"whisker_low"`
	WhiskerHigh   float64         `json:"whisker_high"            yaml:"whisker_high"`
	OutliersBelow []float64       `json:"outliers_below"          yaml:"outliers_below"`
	OutliersAbove []float64       `json:"outliers_above"          yaml:"outliers_above"`
}

// ViewReport holds the rows of one view.
type ViewReport struct {
	View string `json:"view" yaml:"view"`
	Rows []Row  `json:"rows" yaml:"rows"`
}

// Document is the format-independent report.
type Document struct {
	Title                   string          `json:"title"                    yaml:"title"`
	EvaluatedCourses        int             `json:"evaluated_courses"        yaml:"evaluated_courses"`
	BlankQuestionnaires     int             `json:"blank_questionnaires"     yaml:"blank_questionnaires"`
	CompletedQuestionnaires int             `json:"completed_questionnaires" yaml:"completed_questionnaires"`
	Observations            int             `json:"observations"             yaml:"observations"`
	Thresholds              []ThresholdLine `json:"thresholds,omitempty"     yaml:"thresholds,omitempty"`
	Views                   []ViewReport    `json:"views"                    yaml:"views"`
}

// NewDocument flattens a pipeline result into a Document.
func NewDocument(result pipeline.Result, options Options) (Document, error) {
	doc := Document{
		Title:                   options.Title,
		EvaluatedCourses:        result.Counts.TotalRespondents,
		BlankQuestionnaires:     result.Counts.BlankQuestionnaires,
		CompletedQuestionnaires: result.Counts.CompletedQuestionnaires,
		Observations:            result.Observations,
		Thresholds:              options.ThresholdLines,
	}

	for _, v := range boxplot.Views() {
		summaries := result.Views.View(v)
		view := ViewReport{View: v.String(), Rows: make([]Row, 0, len(summaries))}

		for _, s := range summaries {
			row, err := NewRow(s)
			if err != nil {
				return Document{}, fmt.Errorf("view %s: %w", v, err)
			}

			view.Rows = append(view.Rows, row)
		}

		doc.Views = append(doc.Views, view)
	}

	return doc, nil
}

// NewRow extends a summary with p5, p95, the standard deviation and the
// question text.
func NewRow(s boxplot.Summary) (Row, error) {
	tails, err := stats.Percentiles(s.Values, stats.PercentileP5, stats.PercentileP95)
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", s.DisplayLabel, err)
	}

	_, stddev := stats.MeanStdDev(s.Values)
	description, _ := survey.Description(s.Category)

	return Row{
		Category:      s.Category,
		DisplayLabel:  s.DisplayLabel,
		Description:   description,
		Color:         s.Identity.Color,
		SelectionKey:  s.Identity.SelectionKey,
		Count:         s.Count(),
		Min:           s.Min,
		P5:            tails[0],
		Q1:            s.Q1,
		Median:        s.Median,
		Mean:          s.Mean,
		StdDev:        stddev,
		Q3:            s.Q3,
		P95:           tails[1],
		Max:           s.Max,
		IQR:           s.IQR,
		LowerFence:    s.LowerFence,
		UpperFence:    s.UpperFence,
		WhiskerLow:    s.WhiskerLow(),
		WhiskerHigh:   s.WhiskerHigh(),
		OutliersBelow: s.OutliersBelow,
		OutliersAbove: s.OutliersAbove,
	}, nil
}

// Write renders result in the given format.
func Write(w io.Writer, format Format, result pipeline.Result, options Options) error {
	doc, err := NewDocument(result, options)
	if err != nil {
		return err
	}

	switch format {
	case FormatText, "":
		return WriteText(w, doc, options)
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatYAML:
		return WriteYAML(w, doc)
	case FormatPDF:
		return WritePDF(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}
