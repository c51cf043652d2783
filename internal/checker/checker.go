// Package checker coordinates PHPStan check runs: it serializes and
// deduplicates check requests, supersedes stale runs, and bounds run time.
package checker

import (
	"context"
	"time"

	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
)

// ProjectKey is the sentinel gate key for whole-project checks. File-scope
// checks use the document URI as their key; URIs always carry a scheme
// separator, so the sentinel cannot collide.
const ProjectKey = "project"

// Runner is one external analysis process invocation.
type Runner interface {
	Start(ctx context.Context, applyErrors bool) (phpstan.Result, error)
	OnProgress(fn phpstan.ProgressFunc)
	Dispose()
}

// RunnerFactory creates a Runner for the given scope. targetPath and
// reportPath are only meaningful for file-scope runs.
type RunnerFactory func(scope phpstan.Scope, targetPath, reportPath string) Runner

// DocumentSource supplies a snapshot of all open documents for hashing.
type DocumentSource interface {
	All() map[string]string
}

// ReportDiscarder drops retained report state on Clear.
type ReportDiscarder interface {
	DiscardAll()
}

// DiagnosticsSink receives per-file analysis errors from completed checks.
type DiagnosticsSink interface {
	Publish(files map[string][]phpstan.Message)
}

// TimeoutNotifier surfaces a user-visible timeout notification offering to
// adjust the relevant timeout setting.
type TimeoutNotifier interface {
	NotifyTimeout(scope phpstan.Scope, deadline time.Duration)
}
