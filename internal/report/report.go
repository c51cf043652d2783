// Package report reads and correlates the variable reports written by the
// external analysis process for hover queries.
package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed report_schema.json
var reportSchema []byte

// ErrInvalidReport is returned when a report file does not match the schema.
var ErrInvalidReport = errors.New("report does not match schema")

// Position is a 0-based line/character location in a source file.
type Position struct {
	Line int `json:"line"`
	Char int `json:"char"`
}

// Range is a half-open position interval: the start is inclusive, the end
// character is exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p falls inside the range.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}

	if p.Line == r.Start.Line && p.Char < r.Start.Char {
		return false
	}

	if p.Line == r.End.Line && p.Char >= r.End.Char {
		return false
	}

	return true
}

// VariableData describes one variable occurrence: its resolved type, name,
// and source interval.
type VariableData struct {
	TypeDescription string `json:"typeDescription"`
	Name            string `json:"name"`
	Pos             Range  `json:"pos"`
}

// FileReport is the analysis output for one file: a capture timestamp and the
// ordered variable occurrences.
type FileReport struct {
	Timestamp int64          `json:"timestamp"`
	Data      []VariableData `json:"data"`
}

// VariableAt returns the first variable whose interval contains pos.
// Intervals are disjoint per occurrence by construction of the producer, so
// no tie-break is needed.
func (fr FileReport) VariableAt(pos Position) (VariableData, bool) {
	for _, v := range fr.Data {
		if v.Pos.Contains(pos) {
			return v, true
		}
	}

	return VariableData{}, false
}

// File is the on-disk report document: absolute source path -> FileReport.
type File map[string]FileReport

// ParseFile validates raw against the embedded report schema and decodes it.
func ParseFile(raw []byte) (File, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(reportSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate report: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReport, result.Errors()[0].String())
	}

	var file File

	unmarshalErr := json.Unmarshal(raw, &file)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("parse report: %w", unmarshalErr)
	}

	return file, nil
}
