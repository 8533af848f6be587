package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/processor"
	tu "DF-DOCGEN/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) renderedText(t *testing.T, artifactPath string) string {
	t.Helper()
	local, err := f.store.Path(artifactPath)
	require.NoError(t, err)
	text, err := processor.ExtractText(local)
	require.NoError(t, err)
	return text
}

func TestGenerateIntake(t *testing.T) {
	f := newFixture(t)
	conv := &copyConverter{}
	gen := f.generator(conv, PolicyStrict)

	result, err := gen.Generate(context.Background(), GenerateRequest{
		TemplateID:     testTemplateID,
		CaseID:         testCaseID,
		DocumentTypeID: testTypeID,
		Payload:        intakePayload(),
		PrincipalID:    "user-7",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, conv.calls)

	assert.True(t, strings.HasPrefix(result.ArtifactPath, "outputs/"))
	assert.Equal(t, ".pdf", filepath.Ext(result.ArtifactPath))
	assert.Equal(t, testBaseURL+"/"+result.ArtifactPath, result.ArtifactURL)

	var doc models.Document
	require.NoError(t, f.db.First(&doc, "id = ?", result.DocumentID).Error)
	assert.Equal(t, result.ArtifactPath, doc.ArtifactPath)
	assert.Equal(t, testCaseID, doc.CaseID)
	require.NotNil(t, doc.TemplateID)
	assert.Equal(t, testTemplateID, *doc.TemplateID)
	assert.Equal(t, "user-7", doc.CreatedBy)
	assert.Equal(t, "intake.pdf", doc.FileName)

	text := f.renderedText(t, doc.ArtifactPath)
	assert.Equal(t, 1, strings.Count(text, "Acme Corp"))
	assert.Equal(t, 1, strings.Count(text, "CN-100"))
	assert.Less(t, strings.Index(text, "Acme Corp"), strings.Index(text, "CN-100"))
	assert.NotContains(t, text, "[ClientName]")
	assert.NotContains(t, text, "[CaseNumber]")
}

func TestGenerateMissingAnchorValue(t *testing.T) {
	f := newFixture(t)
	conv := &copyConverter{}
	gen := f.generator(conv, PolicyStrict)

	_, err := gen.Generate(context.Background(), GenerateRequest{
		TemplateID:     testTemplateID,
		CaseID:         testCaseID,
		DocumentTypeID: testTypeID,
		Payload:        []byte(`{"ClientName": "Acme Corp"}`),
	})
	require.Error(t, err)

	var missing *apperrors.MissingAnchorValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "CaseNumber", missing.Anchor)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageTemplateOpened, stageErr.Stage)

	assert.Zero(t, conv.calls)
	assert.Zero(t, f.documentCount(t))
	assert.Empty(t, f.files(t, "outputs"))
}

func TestGenerateNamesFirstMissingAnchorInDocumentOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.generator(&copyConverter{}, PolicyStrict).Generate(context.Background(), GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: []byte(`{}`),
	})
	var missing *apperrors.MissingAnchorValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ClientName", missing.Anchor)
}

func TestGenerateTwiceProducesDistinctArtifactsWithSameText(t *testing.T) {
	f := newFixture(t)
	gen := f.generator(&copyConverter{}, PolicyStrict)
	req := GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: intakePayload(),
	}

	first, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ArtifactPath, second.ArtifactPath)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, f.renderedText(t, first.ArtifactPath), f.renderedText(t, second.ArtifactPath))
	assert.Len(t, f.files(t, "outputs"), 2)
}

func TestGenerateRenderFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	_, err := f.generator(failingConverter{}, PolicyStrict).Generate(context.Background(), GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: intakePayload(),
	})
	require.ErrorIs(t, err, apperrors.ErrRender)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageSubstituted, stageErr.Stage)
	assert.Zero(t, f.documentCount(t))
	assert.Empty(t, f.files(t, "outputs"))
}

func TestGenerateCancelledBeforeCommit(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.generator(&cancellingConverter{cancel: cancel}, PolicyStrict).Generate(ctx, GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: intakePayload(),
	})
	require.Error(t, err)
	assert.Zero(t, f.documentCount(t))
	assert.Empty(t, f.files(t, "outputs"))
}

func TestGeneratePersistenceFailureRemovesArtifact(t *testing.T) {
	f := newFixture(t)
	_, err := f.generator(&copyConverter{}, PolicyStrict).Generate(context.Background(), GenerateRequest{
		TemplateID: testTemplateID, CaseID: "no-such-case", DocumentTypeID: testTypeID,
		Payload: intakePayload(),
	})
	require.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRendered, stageErr.Stage)
	assert.Zero(t, f.documentCount(t))
	assert.Empty(t, f.files(t, "outputs"))
}

func TestGenerateUpdatesExistingDocument(t *testing.T) {
	f := newFixture(t)
	gen := f.generator(&copyConverter{}, PolicyStrict)
	ctx := context.Background()

	first, err := gen.Generate(ctx, GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: intakePayload(),
	})
	require.NoError(t, err)

	second, err := gen.Generate(ctx, GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		DocumentID: first.DocumentID,
		Payload:    []byte(`{"ClientName": "Globex", "CaseNumber": "CN-200"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.NotEqual(t, first.ArtifactPath, second.ArtifactPath)
	assert.EqualValues(t, 1, f.documentCount(t))
	assert.Len(t, f.files(t, "outputs"), 1)
	assert.Contains(t, f.renderedText(t, second.ArtifactPath), "Globex")
}

func TestGenerateTolerantPolicyKeepsUnfilledAnchors(t *testing.T) {
	f := newFixture(t)
	result, err := f.generator(&copyConverter{}, PolicyTolerant).Generate(context.Background(), GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: []byte(`{"ClientName": "Acme Corp"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Client: Acme Corp\nCase: [CaseNumber]", f.renderedText(t, result.ArtifactPath))
}

func TestGenerateUsesActiveTemplateForType(t *testing.T) {
	f := newFixture(t)
	result, err := f.generator(&copyConverter{}, PolicyStrict).Generate(context.Background(), GenerateRequest{
		CaseID: testCaseID, DocumentTypeID: testTypeID, Payload: intakePayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, testTemplateID, result.TemplateID)
}

func TestGenerateTemplateErrors(t *testing.T) {
	f := newFixture(t)
	gen := f.generator(&copyConverter{}, PolicyStrict)
	ctx := context.Background()

	_, err := gen.Generate(ctx, GenerateRequest{
		TemplateID: "missing", CaseID: testCaseID, DocumentTypeID: testTypeID, Payload: intakePayload(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	require.NoError(t, f.templates.DeactivateType(dbctx.New(ctx), testTypeID))
	_, err = gen.Generate(ctx, GenerateRequest{
		CaseID: testCaseID, DocumentTypeID: testTypeID, Payload: intakePayload(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	f.addTemplate(t, "tmpl-broken", "<w:p>", false)
	_, err = gen.Generate(ctx, GenerateRequest{
		TemplateID: "tmpl-broken", CaseID: testCaseID, DocumentTypeID: testTypeID, Payload: intakePayload(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTemplateFormat)

	_, err = gen.Generate(ctx, GenerateRequest{
		TemplateID: testTemplateID, CaseID: testCaseID, DocumentTypeID: testTypeID, Payload: []byte(`["a"]`),
	})
	assert.ErrorIs(t, err, apperrors.ErrPayloadParse)

	_, err = gen.Generate(ctx, GenerateRequest{TemplateID: testTemplateID, Payload: intakePayload()})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	assert.Zero(t, f.documentCount(t))
}

func TestGeneratePassesLandscapeToConverter(t *testing.T) {
	f := newFixture(t)
	body := tu.WithSentinel(tu.Para(tu.Bookmark(0, "Name", tu.Run("x")))) +
		`<w:sectPr><w:pgSz w:w="16838" w:h="11906" w:orient="landscape"/></w:sectPr>`
	f.addTemplate(t, "tmpl-wide", body, false)

	conv := &copyConverter{}
	_, err := f.generator(conv, PolicyStrict).Generate(context.Background(), GenerateRequest{
		TemplateID: "tmpl-wide", CaseID: testCaseID, DocumentTypeID: testTypeID,
		Payload: []byte(`{"Name": "wide"}`),
	})
	require.NoError(t, err)
	assert.True(t, conv.landscape)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	preview, err := f.generator(&copyConverter{}, PolicyStrict).Preview(context.Background(), testTemplateID)
	require.NoError(t, err)

	assert.Equal(t, []string{"ClientName", "CaseNumber"}, preview.Anchors)
	assert.True(t, strings.HasPrefix(preview.PreviewPath, "previews/"))
	assert.Equal(t, testBaseURL+"/"+preview.PreviewPath, preview.PreviewURL)
	assert.Equal(t, "Client: [ClientName]\nCase: [CaseNumber]", f.renderedText(t, preview.PreviewPath))
	assert.Zero(t, f.documentCount(t))
}

func TestPreviewRenderFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.generator(failingConverter{}, PolicyStrict).Preview(context.Background(), testTemplateID)
	assert.ErrorIs(t, err, apperrors.ErrRender)
	assert.Empty(t, f.files(t, "previews"))
}

type recordingHandle struct {
	processor.DocumentHandle
	visited []string
	fail    string
}

func (h *recordingHandle) GotoAnchor(name string) error {
	if name == h.fail {
		return errors.Join(apperrors.ErrAnchorNotFound, errors.New(name))
	}
	h.visited = append(h.visited, name)
	return nil
}

func (h *recordingHandle) ReplaceAnchorContent(string) error { return nil }

func TestSubstituteVisitsEachAnchorOnceInOrder(t *testing.T) {
	h := &recordingHandle{}
	bindings := []Binding{{Anchor: "A", Value: "1"}, {Anchor: "B", Value: "2"}, {Anchor: "C", Value: "3"}}
	require.NoError(t, Substitute(h, bindings))
	assert.Equal(t, []string{"A", "B", "C"}, h.visited)

	h = &recordingHandle{fail: "B"}
	assert.ErrorIs(t, Substitute(h, bindings), apperrors.ErrAnchorNotFound)
	assert.Equal(t, []string{"A"}, h.visited)
}
