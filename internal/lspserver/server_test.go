package lspserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/kimulaco/phpstan-vscode/internal/config"
	"github.com/kimulaco/phpstan-vscode/internal/phpstan"
	"github.com/kimulaco/phpstan-vscode/internal/report"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	return NewServer(&config.Config{
		PHPStan: config.PHPStanConfig{Path: "vendor/bin/phpstan"},
		Check: config.CheckConfig{
			Timeout:        10 * time.Second,
			ProjectTimeout: time.Minute,
		},
		Hover: config.HoverConfig{
			WaitBudget: time.Second,
			ReportDir:  t.TempDir(),
		},
	}, nil, nil)
}

func didChangeParams(uri string, changes ...any) *protocol.DidChangeTextDocumentParams {
	return &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: changes,
	}
}

func TestServer_DidChange_WholeDocumentChange(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.store.Set("file:///a.php", "<?php $x = 1;")

	err := srv.didChange(nil, didChangeParams("file:///a.php",
		protocol.TextDocumentContentChangeEventWhole{Text: "<?php $x = 2;"},
	))
	require.NoError(t, err)

	content, ok := srv.store.Get("file:///a.php")
	require.True(t, ok)
	assert.Equal(t, "<?php $x = 2;", content)
}

func TestServer_DidChange_RangedChange(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.store.Set("file:///a.php", "<?php\n$x = 1;\n")

	err := srv.didChange(nil, didChangeParams("file:///a.php",
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 5},
				End:   protocol.Position{Line: 1, Character: 6},
			},
			Text: "42",
		},
	))
	require.NoError(t, err)

	content, ok := srv.store.Get("file:///a.php")
	require.True(t, ok)
	assert.Equal(t, "<?php\n$x = 42;\n", content)
}

func TestServer_DidChange_SequentialChangesAccumulate(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	srv.store.Set("file:///a.php", "ab")

	err := srv.didChange(nil, didChangeParams("file:///a.php",
		protocol.TextDocumentContentChangeEventWhole{Text: "abc"},
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 3},
				End:   protocol.Position{Line: 0, Character: 3},
			},
			Text: "d",
		},
	))
	require.NoError(t, err)

	content, _ := srv.store.Get("file:///a.php")
	assert.Equal(t, "abcd", content)
}

func TestApplyEdit_ClampsPastDocumentEnd(t *testing.T) {
	t.Parallel()

	edited := applyEdit("one\ntwo", protocol.Range{
		Start: protocol.Position{Line: 5, Character: 0},
		End:   protocol.Position{Line: 6, Character: 0},
	}, "!")

	assert.Equal(t, "one\ntwo!", edited)
}

func TestOffsetAt_ClampsToLineEnd(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, offsetAt("one\ntwo", protocol.Position{Line: 0, Character: 99}))
	assert.Equal(t, 4, offsetAt("one\ntwo", protocol.Position{Line: 1, Character: 0}))
	assert.Equal(t, 7, offsetAt("one\ntwo", protocol.Position{Line: 1, Character: 99}))
}

func TestFormatHoverContent(t *testing.T) {
	t.Parallel()

	content := formatHoverContent(report.VariableData{
		TypeDescription: "string|null",
		Name:            "name",
	})

	assert.Equal(t, "```php\nstring|null $name\n```", content)
}

func TestDiagnosticsFromMessages_LinesZeroBased(t *testing.T) {
	t.Parallel()

	diagnostics := diagnosticsFromMessages([]phpstan.Message{
		{Message: "Undefined variable: $user", Line: 12},
		{Message: "Missing return type.", Line: 1},
	})

	require.Len(t, diagnostics, 2)
	assert.EqualValues(t, 11, diagnostics[0].Range.Start.Line)
	assert.EqualValues(t, 0, diagnostics[1].Range.Start.Line)
	assert.Equal(t, "Undefined variable: $user", diagnostics[0].Message)
	require.NotNil(t, diagnostics[0].Source)
	assert.Equal(t, "phpstan", *diagnostics[0].Source)
}

func TestDiagnosticsFromMessages_LineZeroClamped(t *testing.T) {
	t.Parallel()

	diagnostics := diagnosticsFromMessages([]phpstan.Message{
		{Message: "General failure", Line: 0},
	})

	require.Len(t, diagnostics, 1)
	assert.EqualValues(t, 0, diagnostics[0].Range.Start.Line)
}
