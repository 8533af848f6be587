package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStorePutOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	result, err := store.Put(ctx, "outputs/a.pdf", strings.NewReader("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "outputs/a.pdf", result.ObjectName)
	assert.EqualValues(t, 8, result.Size)

	rc, err := store.Open(ctx, "outputs/a.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	require.NoError(t, store.Delete(ctx, "outputs/a.pdf"))
	_, err = store.Open(ctx, "outputs/a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "outputs/a.pdf"), ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Put(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
	_, err = store.Path("a/../../b")
	assert.Error(t, err)
	_, err = store.Path("")
	assert.Error(t, err)
}

func TestLocalStorePutHonoursCancellation(t *testing.T) {
	store := newLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "outputs/c.pdf", strings.NewReader("data"), "")
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(filepath.Join(store.Root(), "outputs"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreRemoveOlderThan(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	_, err := store.Put(ctx, "previews/old.pdf", strings.NewReader("old"), "")
	require.NoError(t, err)
	_, err = store.Put(ctx, "previews/new.pdf", strings.NewReader("new"), "")
	require.NoError(t, err)

	oldPath, _ := store.Path("previews/old.pdf")
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	removed, err := store.RemoveOlderThan("previews", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Open(ctx, "previews/old.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	rc, err := store.Open(ctx, "previews/new.pdf")
	require.NoError(t, err)
	rc.Close()

	removed, err = store.RemoveOlderThan("missing", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNamingHelpers(t *testing.T) {
	a := NewArtifactName("outputs", ".pdf")
	b := NewArtifactName("outputs", "pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "outputs/"))
	assert.True(t, strings.HasSuffix(b, ".pdf"))

	assert.Equal(t, "templates/t1/Intake_form_.docx", GenerateTemplateObjectName("t1", "../Intake form!.docx"))
	assert.Equal(t, "https://cdn.example/files/outputs/x.pdf", PublicURL("https://cdn.example/files/", "/outputs/x.pdf"))
	assert.Equal(t, "outputs/x.pdf", PublicURL("", "outputs/x.pdf"))
}
