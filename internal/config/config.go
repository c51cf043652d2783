// Package config loads and validates phpstand configuration.
package config

import (
	"errors"
	"time"
)

// Config is the top-level configuration struct for phpstand.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	PHPStan PHPStanConfig `mapstructure:"phpstan"`
	Check   CheckConfig   `mapstructure:"check"`
	Hover   HoverConfig   `mapstructure:"hover"`
}

// PHPStanConfig locates and parameterizes the external PHPStan process.
type PHPStanConfig struct {
	// Path is the PHPStan executable, relative to the workspace root.
	Path string `mapstructure:"path"`

	// ConfigPath is the phpstan.neon path passed to the process.
	ConfigPath string `mapstructure:"config_path"`

	// MemoryLimit is the PHP memory limit for analysis runs, e.g. "1G".
	MemoryLimit string `mapstructure:"memory_limit"`
}

// CheckConfig holds the check deadlines and notification behavior.
type CheckConfig struct {
	// Timeout bounds file-scope checks.
	Timeout time.Duration `mapstructure:"timeout"`

	// ProjectTimeout bounds whole-project checks.
	ProjectTimeout time.Duration `mapstructure:"project_timeout"`

	// SuppressTimeoutNotification hides the user-visible timeout message.
	SuppressTimeoutNotification bool `mapstructure:"suppress_timeout_notification"`
}

// HoverConfig holds the read-side query knobs.
type HoverConfig struct {
	// WaitBudget bounds how long a hover query waits for a check's report.
	WaitBudget time.Duration `mapstructure:"wait_budget"`

	// ReportDir is where variable report files are written. Empty means the
	// OS temp directory.
	ReportDir string `mapstructure:"report_dir"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidTimeout indicates a non-positive file check timeout.
	ErrInvalidTimeout = errors.New("check.timeout must be positive")
	// ErrInvalidProjectTimeout indicates a non-positive project check timeout.
	ErrInvalidProjectTimeout = errors.New("check.project_timeout must be positive")
	// ErrInvalidWaitBudget indicates a non-positive hover wait budget.
	ErrInvalidWaitBudget = errors.New("hover.wait_budget must be positive")
	// ErrMissingPHPStanPath indicates an empty PHPStan executable path.
	ErrMissingPHPStanPath = errors.New("phpstan.path must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.PHPStan.Path == "" {
		return ErrMissingPHPStanPath
	}

	if c.Check.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Check.ProjectTimeout <= 0 {
		return ErrInvalidProjectTimeout
	}

	if c.Hover.WaitBudget <= 0 {
		return ErrInvalidWaitBudget
	}

	return nil
}
