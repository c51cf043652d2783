package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/kimulaco/phpstan-vscode/internal/status"
)

// termSurface presents check progress on a terminal and remembers the final
// status for the command summary.
type termSurface struct {
	out io.Writer

	mu   sync.Mutex
	last status.CheckStatus
}

func newTermSurface(out io.Writer) *termSurface {
	return &termSurface{out: out}
}

// CreateOperation returns a terminal-backed progress operation.
func (s *termSurface) CreateOperation() status.Operation {
	return &termOperation{surface: s}
}

// Last returns the final status of the most recently finished operation.
func (s *termSurface) Last() status.CheckStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

type termOperation struct {
	surface *termSurface
}

func (op *termOperation) Start(label string) {
	fmt.Fprintf(op.surface.out, "phpstan: checking %s\n", label)
}

func (op *termOperation) Progress(pct float64, label string) {
	fmt.Fprintf(op.surface.out, "\rphpstan: %3.0f%% (%s)", pct, label)
}

func (op *termOperation) Finish(st status.CheckStatus) {
	op.surface.mu.Lock()
	op.surface.last = st
	op.surface.mu.Unlock()

	label := color.GreenString(st.String())
	if st != status.StatusSuccess {
		label = color.RedString(st.String())
	}

	fmt.Fprintf(op.surface.out, "\rphpstan: %s\n", label)
}
