package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"DF-DOCGEN/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCleanupRunOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"previews/old.pdf", "previews/new.pdf", "uploads/old.bin", "outputs/keep.pdf"} {
		_, err := f.store.Put(ctx, name, strings.NewReader("x"), "")
		require.NoError(t, err)
	}
	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"previews/old.pdf", "uploads/old.bin", "outputs/keep.pdf"} {
		p, err := f.store.Path(name)
		require.NoError(t, err)
		require.NoError(t, os.Chtimes(p, old, old))
	}

	svc := NewFileCleanupService(f.store, []string{"previews", "uploads"}, 24*time.Hour, time.Hour, logger.Nop())
	assert.Equal(t, 2, svc.RunOnce())

	assert.Len(t, f.files(t, "previews"), 1)
	assert.Empty(t, f.files(t, "uploads"))
	assert.Len(t, f.files(t, "outputs"), 1)
}

func TestFileCleanupStartStop(t *testing.T) {
	f := newFixture(t)
	svc := NewFileCleanupService(f.store, []string{"previews"}, time.Hour, time.Millisecond, logger.Nop())
	svc.Start()
	svc.Stop()
}
