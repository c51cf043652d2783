package status

import "log/slog"

// LogSurface reports check progress to a structured log sink. It is the
// default surface when no interactive presentation is wired.
type LogSurface struct {
	logger *slog.Logger
}

// NewLogSurface creates a LogSurface. A nil logger falls back to slog.Default.
func NewLogSurface(logger *slog.Logger) *LogSurface {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogSurface{logger: logger}
}

// CreateOperation returns a log-backed progress operation.
func (s *LogSurface) CreateOperation() Operation {
	return &logOperation{logger: s.logger}
}

type logOperation struct {
	logger *slog.Logger
}

func (op *logOperation) Start(label string) {
	op.logger.Info("check started", slog.String("label", label))
}

func (op *logOperation) Progress(pct float64, label string) {
	op.logger.Debug("check progress",
		slog.Float64("percentage", pct),
		slog.String("label", label),
	)
}

func (op *logOperation) Finish(status CheckStatus) {
	op.logger.Info("check finished", slog.String("status", status.String()))
}
