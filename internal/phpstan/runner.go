package phpstan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// ReportPathEnv is the environment variable through which a file-scope run
// tells the bundled PHPStan extension where to write the variable report.
const ReportPathEnv = "PHPSTAN_VSCODE_REPORT_PATH"

// defaultBinPath is used when no PHPStan binary is configured.
const defaultBinPath = "vendor/bin/phpstan"

// Options configures one Runner.
type Options struct {
	// BinPath is the PHPStan executable. Defaults to vendor/bin/phpstan
	// relative to the workspace root.
	BinPath string

	// ConfigPath is the phpstan.neon path, passed via --configuration.
	ConfigPath string

	// MemoryLimit is passed via --memory-limit when non-empty.
	MemoryLimit string

	// WorkspaceRoot is the process working directory.
	WorkspaceRoot string

	// Scope selects project-wide or single-file analysis.
	Scope Scope

	// TargetPath is the analysed file for ScopeFile runs.
	TargetPath string

	// ReportPath, when non-empty, is exported through ReportPathEnv so the
	// external process writes the variable report there.
	ReportPath string

	Logger *slog.Logger
}

// Runner is one external PHPStan invocation. Start may be called once;
// Dispose is idempotent and forces an in-flight Start to settle with a
// cancelled result.
type Runner struct {
	opts   Options
	logger *slog.Logger

	// lifeCtx is cancelled by Dispose; it bounds the process independent of
	// the Start caller's context.
	lifeCtx context.Context
	dispose context.CancelFunc

	mu       sync.Mutex
	progress []ProgressFunc
}

// NewRunner creates a Runner for one invocation.
func NewRunner(opts Options) *Runner {
	if opts.BinPath == "" {
		opts.BinPath = defaultBinPath
	}

	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	lifeCtx, cancel := context.WithCancel(context.Background())

	return &Runner{
		opts:    opts,
		logger:  lg,
		lifeCtx: lifeCtx,
		dispose: cancel,
	}
}

// OnProgress registers a callback for progress updates parsed from the
// process output.
func (r *Runner) OnProgress(fn ProgressFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = append(r.progress, fn)
}

// Dispose abandons the invocation. The underlying process is killed and an
// in-flight Start settles with StatusCancelled. Safe to call repeatedly.
func (r *Runner) Dispose() {
	r.dispose()
}

// Start runs the PHPStan process and blocks until it settles. applyErrors
// records whether this run's errors should replace presented diagnostics.
// Disposal, before or during the run, yields StatusCancelled and no error;
// failures to launch or parse are returned as errors.
func (r *Runner) Start(ctx context.Context, applyErrors bool) (Result, error) {
	if r.lifeCtx.Err() != nil {
		return Result{Status: StatusCancelled, Applied: applyErrors}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(r.lifeCtx, cancel)
	defer stop()

	var stdout bytes.Buffer

	cmd := exec.CommandContext(runCtx, r.opts.BinPath, r.arguments()...)
	cmd.Dir = r.opts.WorkspaceRoot
	cmd.Stdout = &stdout
	cmd.Stderr = newProgressWriter(r.notifyProgress)
	cmd.Env = r.environment()

	r.logger.Debug("starting phpstan",
		slog.String("bin", r.opts.BinPath),
		slog.String("scope", r.opts.Scope.String()),
	)

	runErr := cmd.Run()

	if r.lifeCtx.Err() != nil || ctx.Err() != nil {
		return Result{Status: StatusCancelled, Applied: applyErrors}, nil
	}

	// PHPStan exits non-zero when it finds errors; the JSON document on
	// stdout is still the authoritative result.
	result, parseErr := ParseOutput(stdout.Bytes())
	if parseErr != nil {
		if runErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(runErr, &exitErr) {
				return Result{}, fmt.Errorf("run phpstan: %w", runErr)
			}
		}

		return Result{}, parseErr
	}

	result.Applied = applyErrors

	return result, nil
}

func (r *Runner) arguments() []string {
	args := []string{"analyse", "--error-format=json"}

	if r.opts.ConfigPath != "" {
		args = append(args, "--configuration", r.opts.ConfigPath)
	}

	if r.opts.MemoryLimit != "" {
		args = append(args, "--memory-limit", r.opts.MemoryLimit)
	}

	if r.opts.Scope == ScopeFile && r.opts.TargetPath != "" {
		args = append(args, r.opts.TargetPath)
	}

	return args
}

func (r *Runner) environment() []string {
	env := os.Environ()

	if r.opts.ReportPath != "" {
		env = append(env, ReportPathEnv+"="+r.opts.ReportPath)
	}

	return env
}

func (r *Runner) notifyProgress(done, total int, percentage float64) {
	r.mu.Lock()
	callbacks := make([]ProgressFunc, len(r.progress))
	copy(callbacks, r.progress)
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(done, total, percentage)
	}
}
