package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// rowsSchema is the JSON Schema every JSON dataset must satisfy.
const rowsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["respondent", "category"],
    "properties": {
      "respondent": {"type": "string", "minLength": 1},
      "category": {"type": "string", "minLength": 1},
      "score": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
      "flag_dept": {"type": "string", "pattern": "^(?i:si|no)?$"},
      "flag_program": {"type": "string", "pattern": "^(?i:si|no)?$"}
    }
  }
}`

var rowsSchemaLoader = gojsonschema.NewStringLoader(rowsSchema)

// LoadJSON reads a JSON array of rows, validating it against the dataset
// schema first.
func LoadJSON(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	result, err := gojsonschema.Validate(rowsSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate json: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			details = append(details, verr.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
	}

	var raw []rawRow

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return buildRows(raw)
}

// LoadYAML reads a YAML sequence of rows with the same shape as JSON.
func LoadYAML(r io.Reader) ([]Row, error) {
	var raw []rawRow

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	return buildRows(raw)
}

func buildRows(raw []rawRow) ([]Row, error) {
	rows := make([]Row, 0, len(raw))

	for i, rr := range raw {
		row, err := buildRow(fmt.Sprintf("row %d", i+1), rr.Respondent, rr.Category, rr.Score, rr.FlagDept, rr.FlagProgram)
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}
