package phpstan

import (
	"encoding/json"
	"fmt"
)

// output mirrors PHPStan's --error-format=json document.
type output struct {
	Totals Totals                `json:"totals"`
	Files  map[string]fileErrors `json:"files"`
	Errors []string              `json:"errors"`
}

type fileErrors struct {
	Errors   int       `json:"errors"`
	Messages []Message `json:"messages"`
}

// ParseOutput decodes PHPStan's JSON error output into a Result. The status
// is partial when any file or general error was reported.
func ParseOutput(data []byte) (Result, error) {
	var doc output

	unmarshalErr := json.Unmarshal(data, &doc)
	if unmarshalErr != nil {
		return Result{}, fmt.Errorf("parse phpstan output: %w", unmarshalErr)
	}

	result := Result{
		Status:  StatusSuccess,
		Files:   make(map[string][]Message, len(doc.Files)),
		General: doc.Errors,
		Totals:  doc.Totals,
	}

	for path, file := range doc.Files {
		result.Files[path] = file.Messages
	}

	if doc.Totals.Errors > 0 || doc.Totals.FileErrors > 0 || len(doc.Errors) > 0 {
		result.Status = StatusPartial
	}

	return result, nil
}
