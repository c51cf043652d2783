// Package lspserver provides the Language Server Protocol front end around
// the check orchestration engine.
package lspserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/kimulaco/phpstan-vscode/internal/checker"
	"github.com/kimulaco/phpstan-vscode/internal/config"
	"github.com/kimulaco/phpstan-vscode/internal/document"
	"github.com/kimulaco/phpstan-vscode/internal/observability"
	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
	"github.com/kimulaco/phpstan-vscode/internal/report"
	"github.com/kimulaco/phpstan-vscode/internal/version"
)

// serverName identifies the server to LSP clients.
const serverName = "phpstan-vscode"

// Server implements the PHPStan language server.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	store        *document.Store
	registry     *report.Registry
	orchestrator *checker.Orchestrator
	sync         *report.Sync
	handler      protocol.Handler

	mu            sync.Mutex
	notifyCtx     *glsp.Context
	workspaceRoot string
	published     map[string]struct{}
}

// NewServer creates a language server wired to the check orchestration
// engine. metrics may be nil.
func NewServer(cfg *config.Config, logger *slog.Logger, metrics *observability.CheckMetrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     document.NewStore(),
		registry:  report.NewRegistry(cfg.Hover.ReportDir, logger),
		published: make(map[string]struct{}),
	}

	srv.orchestrator = checker.New(checker.Options{
		Factory:                     srv.newRunner,
		Documents:                   srv.store,
		Status:                      &statusSurface{srv: srv},
		Reports:                     srv.registry,
		Diagnostics:                 srv,
		Notifier:                    srv,
		Timeout:                     cfg.Check.Timeout,
		ProjectTimeout:              cfg.Check.ProjectTimeout,
		SuppressTimeoutNotification: cfg.Check.SuppressTimeoutNotification,
		Logger:                      logger,
		Metrics:                     metrics,
	})

	srv.sync = report.NewSync(srv.orchestrator, srv.registry, cfg.Hover.WaitBudget, logger)

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
		TextDocumentHover:     srv.hover,
	}

	return srv
}

// Run starts the LSP server on stdio and blocks until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

// newRunner is the orchestrator's runner factory.
func (srv *Server) newRunner(scope phpstan.Scope, targetPath, reportPath string) checker.Runner {
	return phpstan.NewRunner(phpstan.Options{
		BinPath:       srv.cfg.PHPStan.Path,
		ConfigPath:    srv.cfg.PHPStan.ConfigPath,
		MemoryLimit:   srv.cfg.PHPStan.MemoryLimit,
		WorkspaceRoot: srv.root(),
		Scope:         scope,
		TargetPath:    targetPath,
		ReportPath:    reportPath,
		Logger:        srv.logger,
	})
}

func (srv *Server) root() string {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.workspaceRoot
}

// rememberContext keeps the latest client context for server-initiated
// notifications (diagnostics, status, timeout messages).
func (srv *Server) rememberContext(ctx *glsp.Context) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.notifyCtx = ctx
}

func (srv *Server) clientContext() *glsp.Context {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.notifyCtx
}

func (srv *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	srv.rememberContext(ctx)

	if params.RootURI != nil {
		if path, ok := document.PathFromURI(string(*params.RootURI)); ok {
			srv.mu.Lock()
			srv.workspaceRoot = path
			srv.mu.Unlock()
		}
	}

	capabilities := srv.handler.CreateServerCapabilities()
	serverVersion := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

func (srv *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	srv.rememberContext(ctx)

	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	srv.orchestrator.Close()
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.rememberContext(ctx)

	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	srv.store.Set(uri, text)

	go srv.checkInBackground(uri, text)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv.rememberContext(ctx)

	uri := params.TextDocument.URI

	if len(params.ContentChanges) == 0 {
		return nil
	}

	content, _ := srv.store.Get(uri)

	// glsp decodes each change into a whole-document event or a ranged one.
	for _, contentChange := range params.ContentChanges {
		switch change := contentChange.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = change.Text
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				content = change.Text

				continue
			}

			content = applyEdit(content, *change.Range, change.Text)
		}
	}

	srv.store.Set(uri, content)

	return nil
}

// applyEdit splices text over the edited interval. Positions are resolved
// bytewise within their line; an interval outside the document leaves the
// content unchanged.
func applyEdit(content string, rng protocol.Range, text string) string {
	start := offsetAt(content, rng.Start)
	end := offsetAt(content, rng.End)

	if start > end {
		return content
	}

	return content[:start] + text + content[end:]
}

// offsetAt converts a 0-based line/character position to a byte offset,
// clamped to the document and to the end of the target line.
func offsetAt(content string, pos protocol.Position) int {
	offset := 0

	for line := uint32(0); line < pos.Line; line++ {
		next := strings.IndexByte(content[offset:], '\n')
		if next < 0 {
			return len(content)
		}

		offset += next + 1
	}

	for char := uint32(0); char < pos.Character; char++ {
		if offset >= len(content) || content[offset] == '\n' {
			break
		}

		offset++
	}

	return offset
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv.rememberContext(ctx)

	uri := params.TextDocument.URI

	if text, ok := srv.store.Get(uri); ok {
		go srv.checkInBackground(uri, text)
	}

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	return nil
}

// checkInBackground triggers a change-detected project check without blocking
// the LSP request loop.
func (srv *Server) checkInBackground(uri, text string) {
	err := srv.orchestrator.CheckProjectIfFileChanged(context.Background(), uri, []byte(text))
	if err != nil {
		srv.logger.Debug("background check interrupted", slog.String("error", err.Error()))
	}
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	pos := report.Position{
		Line: int(params.Position.Line),
		Char: int(params.Position.Character),
	}

	data, found := srv.sync.VariableAt(context.Background(), params.TextDocument.URI, pos)
	if !found {
		return nil, nil // LSP protocol expects nil hover when no answer is available.
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: formatHoverContent(data),
		},
	}, nil
}

// formatHoverContent renders a variable's type as a fenced PHP block.
func formatHoverContent(data report.VariableData) string {
	return fmt.Sprintf("```php\n%s $%s\n```", data.TypeDescription, data.Name)
}
