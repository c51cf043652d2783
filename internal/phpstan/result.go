// Package phpstan runs the external PHPStan process and parses its output.
package phpstan

import (
	"fmt"
	"sort"
)

// Scope selects what a runner invocation analyses.
type Scope int

const (
	// ScopeProject analyses the whole workspace.
	ScopeProject Scope = iota

	// ScopeFile analyses a single file, optionally exporting a variable
	// report for hover queries.
	ScopeFile
)

// String returns the scope name for logs and metrics.
func (s Scope) String() string {
	if s == ScopeFile {
		return "file"
	}

	return "project"
}

// Status is the terminal state of one PHPStan invocation.
type Status int

const (
	// StatusSuccess means the process completed without analysis errors.
	StatusSuccess Status = iota

	// StatusPartial means the process completed but reported errors for
	// some files. This is an analysis result, not an orchestration failure.
	StatusPartial

	// StatusCancelled means the invocation was disposed or superseded
	// before completing.
	StatusCancelled
)

// String returns the status name for logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Message is one analysis error reported for a file. Lines are 1-based as
// emitted by PHPStan.
type Message struct {
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Ignorable bool   `json:"ignorable"`
}

// Totals aggregates error counts across the invocation.
type Totals struct {
	Errors     int `json:"errors"`
	FileErrors int `json:"file_errors"`
}

// Result is the terminal result of one invocation: a status plus the per-file
// error lists parsed from the process output.
type Result struct {
	Status  Status
	Files   map[string][]Message
	General []string
	Totals  Totals

	// Applied mirrors the applyErrors flag the invocation was started with:
	// whether its errors should replace currently presented diagnostics.
	Applied bool
}

// ErrorSummary returns a per-file projection of the result's error messages,
// one line per message, in stable path order.
func (r Result) ErrorSummary() []string {
	paths := make([]string, 0, len(r.Files))
	for path := range r.Files {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	var lines []string

	for _, path := range paths {
		for _, msg := range r.Files[path] {
			lines = append(lines, fmt.Sprintf("%s:%d: %s", path, msg.Line, msg.Message))
		}
	}

	lines = append(lines, r.General...)

	return lines
}
