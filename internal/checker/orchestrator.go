package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kimulaco/phpstan-vscode/internal/digest"
	"github.com/kimulaco/phpstan-vscode/internal/gate"
	"github.com/kimulaco/phpstan-vscode/internal/guard"
	"github.com/kimulaco/phpstan-vscode/internal/observability"
	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
	"github.com/kimulaco/phpstan-vscode/internal/status"
)

// Default deadlines when the configuration supplies none.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultProjectTimeout = 60 * time.Second
)

// Options configures an Orchestrator. Factory and Documents are required;
// everything else has a working default.
type Options struct {
	Factory   RunnerFactory
	Documents DocumentSource

	Status      status.Surface
	Reports     ReportDiscarder
	Diagnostics DiagnosticsSink
	Notifier    TimeoutNotifier

	// Timeout bounds file-scope checks, ProjectTimeout project checks.
	Timeout        time.Duration
	ProjectTimeout time.Duration

	// SuppressTimeoutNotification disables the user-visible timeout message;
	// timeouts are still logged and reported on the progress surface.
	SuppressTimeoutNotification bool

	Logger  *slog.Logger
	Metrics *observability.CheckMetrics
}

// operation is the active project check: the runner handle plus the content
// digests of every document that was open when the check started.
type operation struct {
	runner Runner
	hashes map[string]digest.Digest
}

// Orchestrator owns the single active project check and routes every check
// request through the gate, the guard, and a runner. All mutation of the
// active-operation slot happens under mu.
type Orchestrator struct {
	mu sync.Mutex
	op *operation

	gate  *gate.Gate
	guard *guard.Guard
	opts  Options

	logger *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Status == nil {
		opts.Status = status.NewLogSurface(opts.Logger)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.ProjectTimeout <= 0 {
		opts.ProjectTimeout = DefaultProjectTimeout
	}

	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	return &Orchestrator{
		gate:   gate.New(),
		guard:  guard.New(),
		opts:   opts,
		logger: lg,
	}
}

// CheckProject starts a whole-project check, superseding and disposing any
// active one, and blocks until the latest chained project check settles.
// Waiters that arrived before a superseding call therefore observe the
// superseding check's completion, not their own abandoned runner's.
func (o *Orchestrator) CheckProject(ctx context.Context) error {
	runner := o.beginProjectOperation()

	o.gate.Chain(ProjectKey, func() {
		o.runCheck(ctx, runner, phpstan.ScopeProject, true, o.opts.ProjectTimeout)
	})

	return o.gate.Await(ctx, ProjectKey)
}

// beginProjectOperation disposes any active operation and installs a fresh
// one with digests of every currently open document.
func (o *Orchestrator) beginProjectOperation() Runner {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.op != nil {
		o.op.runner.Dispose()
		o.op = nil
	}

	documents := o.opts.Documents.All()

	hashes := make(map[string]digest.Digest, len(documents))
	for uri, content := range documents {
		hashes[uri] = digest.SumString(content)
	}

	runner := o.opts.Factory(phpstan.ScopeProject, "", "")
	o.op = &operation{runner: runner, hashes: hashes}

	return runner
}

// CheckProjectIfFileChanged starts a project check only when the given
// document's content differs from the digest captured by the active
// operation. Nil content is a no-op regardless of prior state. With an
// active operation, an unchanged digest and a document unknown to the
// operation are also no-ops: the current result is still valid for them.
// With content and no active operation it delegates to CheckProject.
func (o *Orchestrator) CheckProjectIfFileChanged(ctx context.Context, uri string, content []byte) error {
	if len(content) == 0 {
		return nil
	}

	o.mu.Lock()

	if o.op == nil {
		o.mu.Unlock()

		return o.CheckProject(ctx)
	}

	stored, known := o.op.hashes[uri]
	o.mu.Unlock()

	if !known {
		// Newly opened file: treated as covered by the active check.
		return nil
	}

	if digest.Sum(content) == stored {
		return nil
	}

	o.logger.Debug("document changed, rechecking project", slog.String("uri", uri))

	return o.CheckProject(ctx)
}

// CheckFile runs a file-scope check, chained under the document URI so
// repeated queries for the same file drain in order. The reserved reportPath
// is handed to the runner for the external variable report. File-scope runs
// do not touch the active project operation.
func (o *Orchestrator) CheckFile(ctx context.Context, uri, targetPath, reportPath string) error {
	runner := o.opts.Factory(phpstan.ScopeFile, targetPath, reportPath)

	o.gate.Chain(uri, func() {
		o.runCheck(ctx, runner, phpstan.ScopeFile, false, o.opts.Timeout)
	})

	return o.gate.Await(ctx, uri)
}

// runCheck executes one runner under the guard and finalizes the progress
// surface regardless of outcome. Terminal states are resolutions, never
// errors propagated to waiters.
func (o *Orchestrator) runCheck(
	ctx context.Context,
	runner Runner,
	scope phpstan.Scope,
	applyErrors bool,
	deadline time.Duration,
) {
	op := o.opts.Status.CreateOperation()
	op.Start(scope.String())

	runner.OnProgress(func(done, total int, percentage float64) {
		op.Progress(percentage, fmt.Sprintf("%d/%d", done, total))
	})

	if o.opts.Metrics != nil {
		release := o.opts.Metrics.TrackInflight(ctx, scope.String())
		defer release()
	}

	started := time.Now()

	outcome, verdict := guard.Run(o.guard, func() runOutcome {
		result, err := runner.Start(ctx, applyErrors)

		return runOutcome{result: result, err: err}
	}, deadline, func() {
		o.onTimeout(runner, scope, deadline)
	})

	o.finishCheck(ctx, op, scope, outcome, verdict, time.Since(started))
}

type runOutcome struct {
	result phpstan.Result
	err    error
}

// onTimeout is the guard's cooperative cancellation hook: dispose the runner
// so its in-flight work settles cancelled, then tell the user.
func (o *Orchestrator) onTimeout(runner Runner, scope phpstan.Scope, deadline time.Duration) {
	runner.Dispose()

	o.logger.Warn("check timed out",
		slog.String("scope", scope.String()),
		slog.Duration("deadline", deadline),
	)

	if o.opts.Notifier != nil && !o.opts.SuppressTimeoutNotification {
		o.opts.Notifier.NotifyTimeout(scope, deadline)
	}
}

func (o *Orchestrator) finishCheck(
	ctx context.Context,
	op status.Operation,
	scope phpstan.Scope,
	outcome runOutcome,
	verdict guard.Verdict,
	elapsed time.Duration,
) {
	recorded := "error"

	switch {
	case verdict != guard.VerdictCompleted:
		op.Finish(status.StatusKilled)

		recorded = verdict.String()
	case outcome.err != nil:
		// Process or parse failure: not propagated into the waiting chain.
		op.Finish(status.StatusError)

		o.logger.Error("check failed", slog.String("error", outcome.err.Error()))
	case outcome.result.Status == phpstan.StatusCancelled:
		// Superseded or disposed: silently absorbed.
		op.Finish(status.StatusSuccess)

		recorded = outcome.result.Status.String()
	default:
		o.applyResult(op, outcome.result)

		recorded = outcome.result.Status.String()
	}

	if o.opts.Metrics != nil {
		o.opts.Metrics.RecordCheck(ctx, scope.String(), recorded, elapsed)
	}
}

// applyResult finalizes a completed run: log the per-file error projection,
// publish diagnostics when the run was started with applyErrors, and settle
// the progress surface with the analysis outcome.
func (o *Orchestrator) applyResult(op status.Operation, result phpstan.Result) {
	for _, line := range result.ErrorSummary() {
		o.logger.Info("phpstan", slog.String("error", line))
	}

	if result.Applied && o.opts.Diagnostics != nil {
		o.opts.Diagnostics.Publish(result.Files)
	}

	if result.Status == phpstan.StatusPartial {
		op.Finish(status.StatusError)

		return
	}

	op.Finish(status.StatusSuccess)
}

// Dispose abandons the active operation and tears down the guard. Waiters on
// the gate still resolve: disposal forces the runner's in-flight start to a
// cancelled terminal state. Callers do not wait for runner teardown.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.op != nil {
		o.op.runner.Dispose()
		o.op = nil
	}
}

// Clear disposes the active operation and additionally discards retained
// report state.
func (o *Orchestrator) Clear() {
	o.Dispose()

	if o.opts.Reports != nil {
		o.opts.Reports.DiscardAll()
	}
}

// Close shuts the orchestrator down: the active operation is disposed and the
// guard is torn down so any in-flight guarded run settles immediately.
func (o *Orchestrator) Close() {
	o.Dispose()
	o.guard.Close()
}
