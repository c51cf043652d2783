package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// reservation correlates a yet-to-be-written report location with the source
// path a query is interested in.
type reservation struct {
	reportPath string
	sourcePath string
}

// Registry is a single-use key -> report correlation table. A reservation is
// created before a check runs and consumed exactly once by the first reader;
// a second consumption attempt for the same key observes absence.
type Registry struct {
	mu      sync.Mutex
	dir     string
	entries map[string]reservation
	logger  *slog.Logger
}

// NewRegistry creates a Registry writing report files under dir. An empty
// dir falls back to the OS temp directory; a nil logger to slog.Default.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if dir == "" {
		dir = os.TempDir()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		dir:     dir,
		entries: make(map[string]reservation),
		logger:  logger,
	}
}

// Reserve allocates a fresh report file location for key and remembers which
// source path the eventual reader wants. The caller must arrange for the
// external process to write the report there. Re-reserving a key replaces
// its previous reservation.
func (r *Registry) Reserve(key, sourcePath string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.entries[key]; ok {
		r.removeFile(prev.reportPath)
	}

	path := filepath.Join(r.dir, "phpstan-report-"+uuid.NewString()+".json")
	r.entries[key] = reservation{reportPath: path, sourcePath: sourcePath}

	return path
}

// Consume removes the reservation for key and returns the parsed report for
// its correlated source path. A missing reservation, an unreadable or
// malformed report file, and an absent source path entry all yield "no
// report"; read and parse failures are never propagated.
func (r *Registry) Consume(key string) (FileReport, bool) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	if !ok {
		return FileReport{}, false
	}

	defer r.removeFile(entry.reportPath)

	raw, readErr := os.ReadFile(entry.reportPath)
	if readErr != nil {
		r.logger.Debug("report not readable", slog.String("error", readErr.Error()))

		return FileReport{}, false
	}

	file, parseErr := ParseFile(raw)
	if parseErr != nil {
		r.logger.Debug("report not parseable", slog.String("error", parseErr.Error()))

		return FileReport{}, false
	}

	fileReport, found := file[entry.sourcePath]

	return fileReport, found
}

// DiscardAll drops every reservation and removes their report files.
func (r *Registry) DiscardAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		r.removeFile(entry.reportPath)
	}

	r.entries = make(map[string]reservation)
}

func (r *Registry) removeFile(path string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		r.logger.Debug("remove report file", slog.String("error", err.Error()))
	}
}
