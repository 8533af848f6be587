package services

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadService(f *fixture) *UploadService {
	return NewUploadService(f.store, f.persister, "uploads", "documents", testBaseURL, logger.Nop())
}

func TestStageUpload(t *testing.T) {
	f := newFixture(t)
	svc := newUploadService(f)
	ctx := context.Background()
	content := base64.StdEncoding.EncodeToString([]byte("signed retainer"))

	stored, err := svc.StageUpload(ctx, "retainer.pdf", ".PDF", content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "uploads/"))
	assert.True(t, strings.HasSuffix(stored, ".pdf"))

	rc, err := f.store.Open(ctx, stored)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "signed retainer", string(body))

	stored, err = svc.StageUpload(ctx, "scan.png", "", "data:image/png;base64,"+content)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".png"))

	stored, err = svc.StageUpload(ctx, "odd", "../../etc", content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "uploads/"))
	assert.True(t, strings.HasSuffix(stored, ".etc"))
}

func TestStageUploadMalformedBase64(t *testing.T) {
	f := newFixture(t)
	_, err := newUploadService(f).StageUpload(context.Background(), "x.pdf", "pdf", "***not base64***")
	assert.ErrorIs(t, err, apperrors.ErrUpload)
	assert.Empty(t, f.files(t, "uploads"))
}

func TestUploadPersistsRecord(t *testing.T) {
	f := newFixture(t)
	svc := newUploadService(f)

	result, err := svc.Upload(context.Background(), UploadRequest{
		CaseID: testCaseID, DocumentTypeID: testTypeID, FileName: "retainer.pdf",
		Content: base64.StdEncoding.EncodeToString([]byte("pdf")),
	}, "user-3")
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.documentCount(t))
	assert.True(t, strings.HasPrefix(result.ArtifactPath, "documents/"))
	assert.Equal(t, testBaseURL+"/"+result.ArtifactPath, result.ArtifactURL)
	assert.Empty(t, f.files(t, "uploads"))
}

func TestUploadedDocumentSurvivesCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := newUploadService(f).Upload(ctx, UploadRequest{
		CaseID: testCaseID, DocumentTypeID: testTypeID, FileName: "retainer.pdf",
		Content: base64.StdEncoding.EncodeToString([]byte("signed")),
	}, "")
	require.NoError(t, err)

	staged, err := newUploadService(f).StageUpload(ctx, "draft.pdf", "pdf", base64.StdEncoding.EncodeToString([]byte("draft")))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{result.ArtifactPath, staged} {
		p, err := f.store.Path(name)
		require.NoError(t, err)
		require.NoError(t, os.Chtimes(p, old, old))
	}

	cleanup := NewFileCleanupService(f.store, []string{"previews", "uploads"}, time.Hour, time.Hour, logger.Nop())
	assert.Equal(t, 1, cleanup.RunOnce())

	doc, err := NewDocumentService(f.db, testBaseURL, logger.Nop()).GetByID(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, result.ArtifactPath, doc.ArtifactPath)

	rc, err := f.store.Open(ctx, doc.ArtifactPath)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "signed", string(body))
}

func TestUploadRemovesStagedFileOnPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	svc := newUploadService(f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		CaseID: "no-such-case", DocumentTypeID: testTypeID, FileName: "retainer.pdf",
		Content: base64.StdEncoding.EncodeToString([]byte("pdf")),
	}, "")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Empty(t, f.files(t, "documents"))
	assert.Zero(t, f.documentCount(t))

	_, err = svc.Upload(context.Background(), UploadRequest{CaseID: testCaseID}, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
