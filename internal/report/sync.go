package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/kimulaco/phpstan-vscode/internal/document"
)

// DefaultWaitBudget bounds how long a hover query waits for its check. This
// is deliberately much shorter than the check timeouts: an interactive caller
// would rather get no answer than a late one.
const DefaultWaitBudget = 2 * time.Second

// Checker triggers a file-scope check that writes its variable report to the
// given location. Satisfied by checker.Orchestrator.
type Checker interface {
	CheckFile(ctx context.Context, uri, targetPath, reportPath string) error
}

// Sync lets a short-lived read-side query wait, within a bounded budget, for
// the report of a check it set in motion, and consume it exactly once.
type Sync struct {
	checker  Checker
	registry *Registry
	budget   time.Duration
	logger   *slog.Logger
}

// NewSync creates a Sync. A non-positive budget falls back to
// DefaultWaitBudget; a nil logger to slog.Default.
func NewSync(checker Checker, registry *Registry, budget time.Duration, logger *slog.Logger) *Sync {
	if budget <= 0 {
		budget = DefaultWaitBudget
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Sync{
		checker:  checker,
		registry: registry,
		budget:   budget,
		logger:   logger,
	}
}

// VariableAt resolves the variable under the given position, waiting for the
// file's check to complete within the wait budget. Cancellation and budget
// exhaustion both yield no answer; the caller cannot distinguish them and
// never re-polls. Cancelling the wait does not cancel the underlying check.
func (s *Sync) VariableAt(ctx context.Context, uri string, pos Position) (VariableData, bool) {
	sourcePath, resolvable := document.PathFromURI(uri)
	if !resolvable {
		return VariableData{}, false
	}

	if ctx.Err() != nil {
		return VariableData{}, false
	}

	reportPath := s.registry.Reserve(uri, sourcePath)

	// Fire-and-observe: the check keeps running even if this wait gives up,
	// so a later query can still consume its reservation.
	done := make(chan struct{})
	checkCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(done)

		err := s.checker.CheckFile(checkCtx, uri, sourcePath, reportPath)
		if err != nil {
			s.logger.Debug("file check did not settle cleanly", slog.String("error", err.Error()))
		}
	}()

	deadline := time.NewTimer(s.budget)
	defer deadline.Stop()

	select {
	case <-ctx.Done():
		return VariableData{}, false
	case <-deadline.C:
		return VariableData{}, false
	case <-done:
		fileReport, found := s.registry.Consume(uri)
		if !found {
			return VariableData{}, false
		}

		return fileReport.VariableAt(pos)
	}
}
