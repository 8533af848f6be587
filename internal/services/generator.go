package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/processor"
	"DF-DOCGEN/internal/repository"
	"DF-DOCGEN/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Stage is a step of one generation request.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageTemplateOpened  Stage = "template_opened"
	StageAnchorsResolved Stage = "anchors_resolved"
	StageSubstituted     Stage = "substituted"
	StageRendered        Stage = "rendered"
	StagePersisted       Stage = "persisted"
)

// StageError reports the last stage reached before a generation failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("generation failed after %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type GeneratorConfig struct {
	OutputDir  string
	PreviewDir string
	BaseURL    string
	Policy     AnchorPolicy
}

type GenerateRequest struct {
	// TemplateID may be empty, in which case the active template of
	// DocumentTypeID is used.
	TemplateID     string
	DocumentTypeID string
	CaseID         string
	DocumentID     string
	Payload        []byte
	PrincipalID    string
}

func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CaseID, validation.Required),
		validation.Field(&r.DocumentTypeID, validation.Required),
	)
}

type GenerationResult struct {
	DocumentID   string `json:"document_id"`
	TemplateID   string `json:"template_id"`
	ArtifactPath string `json:"artifact_path"`
	ArtifactURL  string `json:"artifact_url"`
}

type PreviewResult struct {
	TemplateID  string   `json:"template_id"`
	Anchors     []string `json:"anchors"`
	PreviewPath string   `json:"preview_path"`
	PreviewURL  string   `json:"preview_url"`
}

// Generator runs the template pipeline: open, resolve, substitute, render,
// persist.
type Generator struct {
	templates repository.TemplateRepository
	store     storage.Store
	converter Converter
	persister *Persister
	resolver  Resolver
	cfg       GeneratorConfig
	log       *logger.Logger
}

func NewGenerator(templates repository.TemplateRepository, store storage.Store, converter Converter, persister *Persister, cfg GeneratorConfig, log *logger.Logger) *Generator {
	if cfg.Policy == "" {
		cfg.Policy = PolicyStrict
	}
	return &Generator{
		templates: templates,
		store:     store,
		converter: converter,
		persister: persister,
		resolver:  Resolver{Policy: cfg.Policy},
		cfg:       cfg,
		log:       log.With("component", "generator"),
	}
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}

	stage := StageIdle
	fail := func(err error) error {
		g.log.Warn("generation failed", "stage", stage, "template_id", req.TemplateID, "kind", apperrors.Kind(err), "error", err)
		return &StageError{Stage: stage, Err: err}
	}

	tmpl, err := g.lookupTemplate(ctx, req.TemplateID, req.DocumentTypeID)
	if err != nil {
		return nil, fail(err)
	}
	req.TemplateID = tmpl.ID

	handle, anchors, release, err := g.openTemplate(ctx, tmpl)
	if err != nil {
		return nil, fail(err)
	}
	defer release()
	stage = StageTemplateOpened

	payload, err := ParsePayload(req.Payload)
	if err != nil {
		return nil, fail(err)
	}
	bindings, err := g.resolver.Resolve(anchors, payload)
	if err != nil {
		return nil, fail(err)
	}
	stage = StageAnchorsResolved
	g.log.Debug("anchors resolved", "template_id", tmpl.ID, "anchors", len(anchors), "bound", len(bindings))

	if err := Substitute(handle, bindings); err != nil {
		return nil, fail(err)
	}
	stage = StageSubstituted

	artifactPath, err := g.render(ctx, handle, g.cfg.OutputDir)
	if err != nil {
		return nil, fail(err)
	}
	stage = StageRendered

	// Cancellation is honoured up to here. The commit itself runs detached.
	if err := ctx.Err(); err != nil {
		g.discard(artifactPath)
		return nil, fail(fmt.Errorf("generation cancelled: %w", err))
	}

	persisted, err := g.persister.PersistGeneration(context.WithoutCancel(ctx), PersistInput{
		CaseID:             req.CaseID,
		DocumentTypeID:     req.DocumentTypeID,
		TemplateID:         tmpl.ID,
		ArtifactPath:       artifactPath,
		FileName:           pdfFileName(tmpl.Filename),
		ExistingDocumentID: req.DocumentID,
		CreatedBy:          req.PrincipalID,
	})
	if err != nil {
		g.discard(artifactPath)
		return nil, fail(err)
	}
	stage = StagePersisted

	if persisted.ReplacedArtifactPath != "" {
		g.discard(persisted.ReplacedArtifactPath)
	}

	g.log.Info("document generated", "document_id", persisted.DocumentID, "template_id", tmpl.ID, "artifact", artifactPath)
	return &GenerationResult{
		DocumentID:   persisted.DocumentID,
		TemplateID:   tmpl.ID,
		ArtifactPath: artifactPath,
		ArtifactURL:  storage.PublicURL(g.cfg.BaseURL, artifactPath),
	}, nil
}

// Preview renders the template unfilled and lists its anchors. Nothing is
// persisted.
func (g *Generator) Preview(ctx context.Context, templateID string) (*PreviewResult, error) {
	tmpl, err := g.lookupTemplate(ctx, templateID, "")
	if err != nil {
		return nil, err
	}

	handle, anchors, release, err := g.openTemplate(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	defer release()

	previewPath, err := g.render(ctx, handle, g.cfg.PreviewDir)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		TemplateID:  tmpl.ID,
		Anchors:     anchors,
		PreviewPath: previewPath,
		PreviewURL:  storage.PublicURL(g.cfg.BaseURL, previewPath),
	}, nil
}

func (g *Generator) lookupTemplate(ctx context.Context, templateID, documentTypeID string) (*models.Template, error) {
	dbc := dbctx.New(ctx)
	if templateID == "" {
		if documentTypeID == "" {
			return nil, fmt.Errorf("%w: template id or document type id required", apperrors.ErrInvalidArgument)
		}
		activeID, err := g.templates.GetActiveIDForType(dbc, documentTypeID)
		if err != nil {
			return nil, err
		}
		if activeID == "" {
			return nil, fmt.Errorf("%w: no active template for document type %s", apperrors.ErrTemplateNotFound, documentTypeID)
		}
		templateID = activeID
	}

	tmpl, err := g.templates.GetByID(dbc, templateID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, templateID)
	}
	return tmpl, err
}

// openTemplate copies the stored template into a private temp file and opens
// it. release must be called on every path once the handle is done.
func (g *Generator) openTemplate(ctx context.Context, tmpl *models.Template) (processor.DocumentHandle, []string, func(), error) {
	reader, err := g.store.Open(ctx, tmpl.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, tmpl.StoragePath)
		}
		return nil, nil, nil, fmt.Errorf("failed to read template: %w", err)
	}
	defer reader.Close()

	tempFile, err := os.CreateTemp("", "template_*.docx")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	_, copyErr := io.Copy(tempFile, reader)
	closeErr := tempFile.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tempFile.Name())
		return nil, nil, nil, fmt.Errorf("failed to copy template: %w", errors.Join(copyErr, closeErr))
	}

	handle, anchors, err := processor.OpenTemplate(tempFile.Name())
	if err != nil {
		os.Remove(tempFile.Name())
		return nil, nil, nil, err
	}

	release := func() {
		if err := handle.Close(); err != nil {
			g.log.Warn("failed to close template handle", "template_id", tmpl.ID, "error", err)
		}
		os.Remove(tempFile.Name())
	}
	return handle, anchors, release, nil
}

// render saves the handle, converts it and stores the result under dir with
// a fresh name. No partial artifact survives a failure.
func (g *Generator) render(ctx context.Context, handle processor.DocumentHandle, dir string) (string, error) {
	workDir, err := os.MkdirTemp("", "render_*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRender, err)
	}
	defer os.RemoveAll(workDir)

	docxPath := filepath.Join(workDir, "document.docx")
	if err := handle.Save(docxPath); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRender, err)
	}

	pdfPath := filepath.Join(workDir, "document.pdf")
	pdfFile, err := os.Create(pdfPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRender, err)
	}
	convertErr := g.converter.Convert(ctx, docxPath, pdfFile, ConvertOptions{Landscape: handle.Landscape()})
	closeErr := pdfFile.Close()
	if convertErr != nil {
		if !errors.Is(convertErr, apperrors.ErrRender) {
			convertErr = fmt.Errorf("%w: %v", apperrors.ErrRender, convertErr)
		}
		return "", convertErr
	}
	if closeErr != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRender, closeErr)
	}

	pdfFile, err = os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrRender, err)
	}
	defer pdfFile.Close()

	artifactPath := storage.NewArtifactName(dir, "pdf")
	if _, err := g.store.Put(ctx, artifactPath, pdfFile, pdfContentType); err != nil {
		g.discard(artifactPath)
		return "", fmt.Errorf("%w: failed to store artifact: %v", apperrors.ErrRender, err)
	}
	return artifactPath, nil
}

func (g *Generator) discard(artifactPath string) {
	err := g.store.Delete(context.Background(), artifactPath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		g.log.Warn("failed to delete artifact", "artifact", artifactPath, "error", err)
	}
}

// Substitute writes each binding into its anchor, visiting every anchor once.
func Substitute(handle processor.DocumentHandle, bindings []Binding) error {
	for _, b := range bindings {
		if err := handle.GotoAnchor(b.Anchor); err != nil {
			return err
		}
		if err := handle.ReplaceAnchorContent(b.Value); err != nil {
			return err
		}
	}
	return nil
}

func pdfFileName(templateFilename string) string {
	base := strings.TrimSuffix(templateFilename, filepath.Ext(templateFilename))
	if base == "" {
		base = "document"
	}
	return base + ".pdf"
}
