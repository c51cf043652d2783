package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimulaco/phpstan-vscode/internal/report"
)

func TestRegistry_ReserveConsume_Roundtrip(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)

	path := registry.Reserve("file:///src/a.php", "/src/a.php")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o600))

	fr, ok := registry.Consume("file:///src/a.php")
	require.True(t, ok)
	assert.Len(t, fr.Data, 2)

	// Consume removes the report file along with the reservation.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegistry_Consume_SecondTimeAbsent(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)

	path := registry.Reserve("key", "/src/a.php")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o600))

	_, ok := registry.Consume("key")
	require.True(t, ok)

	_, ok = registry.Consume("key")
	assert.False(t, ok)
}

func TestRegistry_Consume_MissingFile_NoReport(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)
	registry.Reserve("key", "/src/a.php")

	_, ok := registry.Consume("key")
	assert.False(t, ok)
}

func TestRegistry_Consume_MalformedFile_NoReport(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)

	path := registry.Reserve("key", "/src/a.php")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	_, ok := registry.Consume("key")
	assert.False(t, ok)
}

func TestRegistry_Consume_SourcePathNotInReport_NoReport(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)

	path := registry.Reserve("key", "/src/other.php")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o600))

	_, ok := registry.Consume("key")
	assert.False(t, ok)
}

func TestRegistry_Reserve_ReplacesPreviousReservation(t *testing.T) {
	t.Parallel()

	registry := report.NewRegistry(t.TempDir(), nil)

	first := registry.Reserve("key", "/src/a.php")
	require.NoError(t, os.WriteFile(first, []byte(sampleReport), 0o600))

	second := registry.Reserve("key", "/src/a.php")
	assert.NotEqual(t, first, second)

	// The stale report file from the replaced reservation is removed.
	_, statErr := os.Stat(first)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegistry_DiscardAll_RemovesEverything(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	registry := report.NewRegistry(dir, nil)

	a := registry.Reserve("a", "/src/a.php")
	b := registry.Reserve("b", "/src/b.php")
	require.NoError(t, os.WriteFile(a, []byte(sampleReport), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(sampleReport), 0o600))

	registry.DiscardAll()

	entries, err := filepath.Glob(filepath.Join(dir, "phpstan-report-*.json"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok := registry.Consume("a")
	assert.False(t, ok)
}
