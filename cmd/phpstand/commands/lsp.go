package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/kimulaco/phpstan-vscode/internal/config"
	"github.com/kimulaco/phpstan-vscode/internal/lspserver"
	"github.com/kimulaco/phpstan-vscode/internal/observability"
)

// Timeout constants for the optional metrics HTTP server.
const (
	metricsReadTimeout  = 30 * time.Second
	metricsWriteTimeout = 60 * time.Second
	metricsIdleTimeout  = 120 * time.Second
)

// NewLSPCommand creates the language server command.
func NewLSPCommand() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the PHPStan language server (stdio mode)",
		Long:  `Start a language server that runs PHPStan checks on save and answers hover queries.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLSP(configPath, metricsAddr, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "phpstand config file path")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint (disabled when empty)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func runLSP(configPath, metricsAddr string, verbose bool) error {
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		return loadErr
	}

	logger := newLogger(verbose)

	var metrics *observability.CheckMetrics

	if metricsAddr != "" {
		handler, promErr := observability.PrometheusHandler()
		if promErr != nil {
			return fmt.Errorf("metrics setup: %w", promErr)
		}

		cm, metricErr := observability.NewCheckMetrics(otel.Meter("phpstand"))
		if metricErr != nil {
			return fmt.Errorf("metrics setup: %w", metricErr)
		}

		metrics = cm

		go serveMetrics(metricsAddr, handler, logger)
	}

	logger.Info("phpstand language server starting", slog.String("pid", fmt.Sprint(os.Getpid())))

	return lspserver.NewServer(cfg, logger, metrics).Run()
}

func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  metricsIdleTimeout,
	}

	err := server.ListenAndServe()
	if err != nil {
		logger.Error("metrics server failed", slog.String("error", err.Error()))
	}
}
