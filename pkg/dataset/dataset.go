// Package dataset reads raw questionnaire rows from CSV, JSON or YAML and
// turns them into scaled observations and respondent counts.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mpedy/myboxplot/pkg/boxplot"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// DefaultScale converts [0,1] scores to the percentage domain. It is also the
// largest scale allowed: a bigger one would push full marks past 100, outside
// the domain the box-plot fences are clamped to.
const (
	DefaultScale = 100.0
	MaxScale     = DefaultScale
)

// Sentinel errors.
var (
	ErrUnknownFormat      = errors.New("unknown dataset format")
	ErrMissingColumn      = errors.New("missing column")
	ErrMissingRespondent  = errors.New("missing respondent")
	ErrMissingCategory    = errors.New("missing category")
	ErrInvalidScore       = errors.New("score must be a number in [0,1]")
	ErrSchemaViolation    = errors.New("dataset does not match schema")
	ErrScaleOutOfRange    = errors.New("scale must be in (0, 100]")
)

// Format identifies a dataset encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Row is one respondent's answer for one category.
type Row struct {
	Respondent  string          `json:"respondent"   yaml:"respondent"`
	Category    survey.Category `json:"category"     yaml:"category"`
	Score       float64         `json:"score"        yaml:"score"`
	Blank       bool            `json:"blank"        yaml:"blank"`
	FlagDept    boxplot.Flag    `json:"flag_dept"    yaml:"flag_dept"`
	FlagProgram boxplot.Flag    `json:"flag_program" yaml:"flag_program"`
}

// Load decodes rows in the given format.
func Load(r io.Reader, format Format) ([]Row, error) {
	switch format {
	case FormatCSV:
		return LoadCSV(r)
	case FormatJSON:
		return LoadJSON(r)
	case FormatYAML:
		return LoadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// LoadFile opens path and decodes it. An empty format is inferred from the
// file extension.
func LoadFile(path string, format Format) ([]Row, error) {
	if format == "" {
		inferred, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}

		format = inferred
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	defer f.Close()

	rows, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return rows, nil
}

// NormalizeCategory trims and NFC-normalizes a category name and maps
// display labels back to their canonical form.
func NormalizeCategory(raw string) survey.Category {
	return survey.ToCanonical(norm.NFC.String(strings.TrimSpace(raw)))
}

// rawRow is the shared JSON/YAML row shape.
type rawRow struct {
	Respondent  string   `json:"respondent"   yaml:"respondent"`
	Category    string   `json:"category"     yaml:"category"`
	Score       *float64 `json:"score"        yaml:"score"`
	FlagDept    string   `json:"flag_dept"    yaml:"flag_dept"`
	FlagProgram string   `json:"flag_program" yaml:"flag_program"`
}

// buildRow validates one decoded row. pos names the row in error messages.
func buildRow(pos, respondent, category string, score *float64, flagDept, flagProgram string) (Row, error) {
	respondent = strings.TrimSpace(respondent)
	if respondent == "" {
		return Row{}, fmt.Errorf("%s: %w", pos, ErrMissingRespondent)
	}

	cat := NormalizeCategory(category)
	if cat == "" {
		return Row{}, fmt.Errorf("%s: %w", pos, ErrMissingCategory)
	}

	row := Row{Respondent: respondent, Category: cat, Blank: score == nil}

	if score != nil {
		if math.IsNaN(*score) || *score < 0 || *score > 1 {
			return Row{}, fmt.Errorf("%s: %w: got %v", pos, ErrInvalidScore, *score)
		}

		row.Score = *score
	}

	var err error

	row.FlagDept, err = boxplot.ParseFlag(flagDept)
	if err != nil {
		return Row{}, fmt.Errorf("%s: flag_dept: %w", pos, err)
	}

	row.FlagProgram, err = boxplot.ParseFlag(flagProgram)
	if err != nil {
		return Row{}, fmt.Errorf("%s: flag_program: %w", pos, err)
	}

	return row, nil
}

// Observations converts non-blank rows to observations, multiplying every
// score by scale. Row order is preserved.
func Observations(rows []Row, scale float64) ([]boxplot.Observation, error) {
	err := ValidateScale(scale)
	if err != nil {
		return nil, err
	}

	result := make([]boxplot.Observation, 0, len(rows))

	for _, row := range rows {
		if row.Blank {
			continue
		}

		result = append(result, boxplot.Observation{
			Category:    row.Category,
			Value:       row.Score * scale,
			FlagDept:    row.FlagDept,
			FlagProgram: row.FlagProgram,
		})
	}

	return result, nil
}

// ValidateScale accepts scales in (0, MaxScale].
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || scale <= 0 || scale > MaxScale {
		return fmt.Errorf("%w: %v", ErrScaleOutOfRange, scale)
	}

	return nil
}

// RespondentCounts summarizes how many questionnaires the rows come from.
type RespondentCounts struct {
	TotalRespondents        int `json:"total_respondents"        yaml:"total_respondents"`
	BlankQuestionnaires     int `json:"blank_questionnaires"     yaml:"blank_questionnaires"`
	CompletedQuestionnaires int `json:"completed_questionnaires" yaml:"completed_questionnaires"`
}

// Counts counts distinct respondents, and among them those whose every
// answer is blank.
func Counts(rows []Row) RespondentCounts {
	answered := make(map[string]bool)

	for _, row := range rows {
		answered[row.Respondent] = answered[row.Respondent] || !row.Blank
	}

	var counts RespondentCounts

	counts.TotalRespondents = len(answered)

	for _, ok := range answered {
		if !ok {
			counts.BlankQuestionnaires++
		}
	}

	counts.CompletedQuestionnaires = counts.TotalRespondents - counts.BlankQuestionnaires

	return counts
}
