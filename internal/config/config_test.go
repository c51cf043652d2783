package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimulaco/phpstan-vscode/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".phpstand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "vendor/bin/phpstan", cfg.PHPStan.Path)
	assert.Equal(t, 10*time.Second, cfg.Check.Timeout)
	assert.Equal(t, time.Minute, cfg.Check.ProjectTimeout)
	assert.False(t, cfg.Check.SuppressTimeoutNotification)
	assert.Equal(t, 2*time.Second, cfg.Hover.WaitBudget)
	assert.Empty(t, cfg.Hover.ReportDir)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
phpstan:
  path: tools/phpstan
  config_path: phpstan.neon.dist
  memory_limit: 1G
check:
  timeout: 30s
  project_timeout: 5m
  suppress_timeout_notification: true
hover:
  wait_budget: 500ms
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tools/phpstan", cfg.PHPStan.Path)
	assert.Equal(t, "phpstan.neon.dist", cfg.PHPStan.ConfigPath)
	assert.Equal(t, "1G", cfg.PHPStan.MemoryLimit)
	assert.Equal(t, 30*time.Second, cfg.Check.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Check.ProjectTimeout)
	assert.True(t, cfg.Check.SuppressTimeoutNotification)
	assert.Equal(t, 500*time.Millisecond, cfg.Hover.WaitBudget)
}

func TestLoad_MissingExplicitFile_Error(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_NonPositiveTimeout_Error(t *testing.T) {
	path := writeConfigFile(t, `
check:
  timeout: -5s
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidTimeout)
}

func TestLoad_NonPositiveProjectTimeout_Error(t *testing.T) {
	path := writeConfigFile(t, `
check:
  project_timeout: 0s
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidProjectTimeout)
}

func TestLoad_EmptyPHPStanPath_Error(t *testing.T) {
	path := writeConfigFile(t, `
phpstan:
  path: ""
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingPHPStanPath)
}

func TestConfig_Validate_NonPositiveWaitBudget(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		PHPStan: config.PHPStanConfig{Path: "vendor/bin/phpstan"},
		Check: config.CheckConfig{
			Timeout:        10 * time.Second,
			ProjectTimeout: time.Minute,
		},
	}

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidWaitBudget)
}
