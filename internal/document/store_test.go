package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimulaco/phpstan-vscode/internal/document"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	store := document.NewStore()
	store.Set("file:///a.php", "<?php")

	content, ok := store.Get("file:///a.php")
	require.True(t, ok)
	assert.Equal(t, "<?php", content)
}

func TestStore_Get_Missing(t *testing.T) {
	t.Parallel()

	store := document.NewStore()

	_, ok := store.Get("file:///missing.php")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store := document.NewStore()
	store.Set("file:///a.php", "<?php")
	store.Delete("file:///a.php")

	_, ok := store.Get("file:///a.php")
	assert.False(t, ok)
}

func TestStore_All_ReturnsCopy(t *testing.T) {
	t.Parallel()

	store := document.NewStore()
	store.Set("file:///a.php", "A")
	store.Set("file:///b.php", "B")

	snapshot := store.All()
	require.Len(t, snapshot, 2)

	snapshot["file:///a.php"] = "mutated"

	content, ok := store.Get("file:///a.php")
	require.True(t, ok)
	assert.Equal(t, "A", content)
}
