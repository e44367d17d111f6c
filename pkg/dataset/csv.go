package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV column names.
const (
	ColumnRespondent  = "respondent"
	ColumnCategory    = "category"
	ColumnScore       = "score"
	ColumnFlagDept    = "flag_dept"
	ColumnFlagProgram = "flag_program"
)

var requiredColumns = []string{ColumnRespondent, ColumnCategory, ColumnScore, ColumnFlagDept, ColumnFlagProgram}

// LoadCSV reads rows from CSV with a header line naming the columns, in any
// order. Scores may use a decimal comma; an empty score is a blank answer.
func LoadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv header: %w: %s", ErrMissingColumn, ColumnRespondent)
		}

		return nil, fmt.Errorf("csv header: %w", err)
	}

	cols := make(map[string]int, len(header))

	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header: %w: %s", ErrMissingColumn, name)
		}
	}

	var rows []Row

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("csv: %w", readErr)
		}

		line, _ := reader.FieldPos(0)
		pos := fmt.Sprintf("line %d", line)

		score, scoreErr := parseScore(record[cols[ColumnScore]])
		if scoreErr != nil {
			return nil, fmt.Errorf("%s: %w", pos, scoreErr)
		}

		row, rowErr := buildRow(pos,
			record[cols[ColumnRespondent]],
			record[cols[ColumnCategory]],
			score,
			record[cols[ColumnFlagDept]],
			record[cols[ColumnFlagProgram]],
		)
		if rowErr != nil {
			return nil, rowErr
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// parseScore parses a score cell. Empty cells are blank answers (nil).
func parseScore(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil //nolint:nilnil // nil score marks a blank answer.
	}

	v, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScore, cell)
	}

	return &v, nil
}
