// Package commands implements CLI command handlers for phpstand.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kimulaco/phpstan-vscode/internal/checker"
	"github.com/kimulaco/phpstan-vscode/internal/config"
	"github.com/kimulaco/phpstan-vscode/internal/document"
	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
	"github.com/kimulaco/phpstan-vscode/internal/status"
)

// ErrChecksFailed is returned when PHPStan reports analysis errors, so the
// process exits non-zero in CI.
var ErrChecksFailed = errors.New("phpstan reported errors")

// NewCheckCommand creates the one-shot project check command.
func NewCheckCommand() *cobra.Command {
	var (
		configPath    string
		workspacePath string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a one-shot PHPStan project check",
		Long:  `Run PHPStan over the workspace once and print the results.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCheck(configPath, workspacePath, verbose, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "phpstand config file path")
	cmd.Flags().StringVarP(&workspacePath, "path", "p", "", "workspace root (defaults to CWD)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func runCheck(configPath, workspacePath string, verbose bool, out io.Writer) error {
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		return loadErr
	}

	if workspacePath == "" {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return fmt.Errorf("resolve workspace: %w", cwdErr)
		}

		workspacePath = cwd
	}

	logger := newLogger(verbose)
	collector := &collectorSink{}
	surface := newTermSurface(os.Stderr)

	orchestrator := checker.New(checker.Options{
		Factory: func(scope phpstan.Scope, targetPath, reportPath string) checker.Runner {
			return phpstan.NewRunner(phpstan.Options{
				BinPath:       cfg.PHPStan.Path,
				ConfigPath:    cfg.PHPStan.ConfigPath,
				MemoryLimit:   cfg.PHPStan.MemoryLimit,
				WorkspaceRoot: workspacePath,
				Scope:         scope,
				TargetPath:    targetPath,
				ReportPath:    reportPath,
				Logger:        logger,
			})
		},
		Documents:   document.NewStore(),
		Status:      surface,
		Diagnostics: collector,
		Timeout:     cfg.Check.Timeout,
		// CLI runs have no notification surface; timeouts only show in the summary.
		SuppressTimeoutNotification: true,
		ProjectTimeout:              cfg.Check.ProjectTimeout,
		Logger:                      logger,
	})
	defer orchestrator.Close()

	started := time.Now()

	checkErr := orchestrator.CheckProject(context.Background())
	if checkErr != nil {
		return fmt.Errorf("project check: %w", checkErr)
	}

	return renderCheck(out, collector.snapshot(), surface.Last(), time.Since(started))
}

func renderCheck(out io.Writer, files map[string][]phpstan.Message, final status.CheckStatus, elapsed time.Duration) error {
	elapsed = elapsed.Round(time.Millisecond)

	if final == status.StatusKilled {
		fmt.Fprintf(out, "%s after %s\n", color.RedString("Check killed"), elapsed)

		return ErrChecksFailed
	}

	total := 0
	for _, messages := range files {
		total += len(messages)
	}

	if total == 0 {
		fmt.Fprintf(out, "%s in %s\n", color.GreenString("No errors"), elapsed)

		return nil
	}

	renderErrorTable(out, files)

	fmt.Fprintf(out, "%s: %s error(s) in %s file(s), %s\n",
		color.RedString("FAIL"),
		humanize.Comma(int64(total)),
		humanize.Comma(int64(len(files))),
		elapsed,
	)

	return ErrChecksFailed
}

func renderErrorTable(out io.Writer, files map[string][]phpstan.Message) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"File", "Line", "Message"})

	for _, path := range paths {
		for _, msg := range files[path] {
			tw.AppendRow(table.Row{path, msg.Line, msg.Message})
		}
	}

	tw.Render()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// collectorSink gathers published diagnostics for rendering after the check.
type collectorSink struct {
	mu    sync.Mutex
	files map[string][]phpstan.Message
}

// Publish stores the latest per-file error lists.
func (c *collectorSink) Publish(files map[string][]phpstan.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = files
}

func (c *collectorSink) snapshot() map[string][]phpstan.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.files
}
