package lspserver

import (
	"github.com/kimulaco/phpstan-vscode/internal/status"
)

// checkStatusMethod is the custom notification carrying check lifecycle
// updates for the client's status bar.
const checkStatusMethod = "phpstand/checkStatus"

// checkStatusParams is the payload of checkStatusMethod notifications.
type checkStatusParams struct {
	State      string  `json:"state"` // running, progress, done.
	Label      string  `json:"label,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Status     string  `json:"status,omitempty"`
}

// statusSurface presents check progress on the client's status bar via
// custom notifications.
type statusSurface struct {
	srv *Server
}

// CreateOperation returns a notification-backed progress operation.
func (s *statusSurface) CreateOperation() status.Operation {
	return &statusOperation{srv: s.srv}
}

type statusOperation struct {
	srv *Server
}

func (op *statusOperation) notify(params checkStatusParams) {
	ctx := op.srv.clientContext()
	if ctx == nil {
		return
	}

	ctx.Notify(checkStatusMethod, params)
}

func (op *statusOperation) Start(label string) {
	op.notify(checkStatusParams{State: "running", Label: label})
}

func (op *statusOperation) Progress(pct float64, label string) {
	op.notify(checkStatusParams{State: "progress", Label: label, Percentage: pct})
}

func (op *statusOperation) Finish(st status.CheckStatus) {
	op.notify(checkStatusParams{State: "done", Status: st.String()})
}
