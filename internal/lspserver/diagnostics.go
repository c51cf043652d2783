package lspserver

import (
	"log/slog"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/kimulaco/phpstan-vscode/internal/document"
	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
)

// diagnosticSource labels published diagnostics in the client UI.
const diagnosticSource = "phpstan"

// Publish sends the per-file analysis errors of a completed check to the
// client and clears diagnostics for files that no longer have any.
func (srv *Server) Publish(files map[string][]phpstan.Message) {
	ctx := srv.clientContext()
	if ctx == nil {
		return
	}

	srv.mu.Lock()
	stale := srv.published
	srv.published = make(map[string]struct{}, len(files))

	for path := range files {
		srv.published[path] = struct{}{}
		delete(stale, path)
	}
	srv.mu.Unlock()

	for path, messages := range files {
		ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
			URI:         document.URIFromPath(path),
			Diagnostics: diagnosticsFromMessages(messages),
		})
	}

	for path := range stale {
		ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
			URI:         document.URIFromPath(path),
			Diagnostics: []protocol.Diagnostic{},
		})
	}
}

// diagnosticsFromMessages converts PHPStan's 1-based error lines to 0-based
// LSP diagnostics.
func diagnosticsFromMessages(messages []phpstan.Message) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource

	diagnostics := make([]protocol.Diagnostic, 0, len(messages))

	for _, msg := range messages {
		line := uint32(0)
		if msg.Line > 0 {
			line = uint32(msg.Line - 1)
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: 0},
				End:   protocol.Position{Line: line, Character: 0},
			},
			Severity: &severity,
			Source:   &source,
			Message:  msg.Message,
		})
	}

	return diagnostics
}

// NotifyTimeout tells the user a check exceeded its deadline and which
// setting to adjust.
func (srv *Server) NotifyTimeout(scope phpstan.Scope, deadline time.Duration) {
	ctx := srv.clientContext()
	if ctx == nil {
		return
	}

	setting := "check.timeout"
	if scope == phpstan.ScopeProject {
		setting = "check.project_timeout"
	}

	ctx.Notify("window/showMessage", &protocol.ShowMessageParams{
		Type: protocol.MessageTypeWarning,
		Message: "PHPStan check exceeded " + deadline.String() +
			"; raise " + setting + " if your project needs more time.",
	})

	srv.logger.Debug("timeout notification sent", slog.String("setting", setting))
}
