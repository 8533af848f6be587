package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/processor"
	"DF-DOCGEN/internal/repository"
	"DF-DOCGEN/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type TemplateUpload struct {
	Name           string
	Filename       string
	DocumentTypeID string
	Active         bool
	ContentType    string
}

func (u TemplateUpload) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Filename, validation.Required),
		validation.Field(&u.DocumentTypeID, validation.Required),
	)
}

type TemplateService struct {
	db        *gorm.DB
	store     storage.Store
	templates repository.TemplateRepository
	reference repository.ReferenceRepository
	log       *logger.Logger
}

func NewTemplateService(db *gorm.DB, store storage.Store, log *logger.Logger) *TemplateService {
	return &TemplateService{
		db:        db,
		store:     store,
		templates: repository.NewTemplateRepository(db),
		reference: repository.NewReferenceRepository(db),
		log:       log.With("component", "templates"),
	}
}

// UploadTemplate checks that file is a usable template, stores it and
// records it with its anchor list. An active upload deactivates the other
// templates of the same document type.
func (s *TemplateService) UploadTemplate(ctx context.Context, file io.Reader, upload TemplateUpload) (*models.Template, error) {
	if err := upload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	if _, err := s.reference.GetDocumentType(dbctx.New(ctx), upload.DocumentTypeID); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp("", "upload_*.docx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	size, copyErr := io.Copy(tempFile, file)
	closeErr := tempFile.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpload, err)
	}

	handle, anchors, err := processor.OpenTemplate(tempFile.Name())
	if err != nil {
		return nil, err
	}
	handle.Close()

	anchorsJSON, err := json.Marshal(anchors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal anchors: %w", err)
	}

	templateID := uuid.New().String()
	objectName := storage.GenerateTemplateObjectName(templateID, upload.Filename)

	stored, err := os.Open(tempFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to reopen template: %w", err)
	}
	defer stored.Close()
	if _, err := s.store.Put(ctx, objectName, stored, docxContentType); err != nil {
		return nil, fmt.Errorf("%w: failed to store template: %v", apperrors.ErrUpload, err)
	}

	name := upload.Name
	if name == "" {
		name = upload.Filename
	}
	mimeType := upload.ContentType
	if mimeType == "" {
		mimeType = docxContentType
	}
	tmpl := &models.Template{
		ID:             templateID,
		Name:           name,
		Filename:       upload.Filename,
		StoragePath:    objectName,
		DocumentTypeID: upload.DocumentTypeID,
		Active:         upload.Active,
		Anchors:        anchorsJSON,
		FileSize:       size,
		MimeType:       mimeType,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if tmpl.Active {
			if err := s.templates.DeactivateType(dbc, tmpl.DocumentTypeID); err != nil {
				return err
			}
		}
		return s.templates.Create(dbc, tmpl)
	})
	if err != nil {
		s.deleteObject(objectName)
		return nil, fmt.Errorf("%w: failed to save template metadata: %w", apperrors.ErrPersistence, err)
	}

	s.log.Info("template uploaded", "template_id", tmpl.ID, "document_type_id", tmpl.DocumentTypeID, "anchors", len(anchors))
	return tmpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, templateID string) (*models.Template, error) {
	tmpl, err := s.templates.GetByID(dbctx.New(ctx), templateID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, templateID)
	}
	return tmpl, err
}

// GetAnchors returns the anchor list cached at upload time.
func (s *TemplateService) GetAnchors(ctx context.Context, templateID string) ([]string, error) {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	anchors, err := tmpl.AnchorList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode anchors: %w", err)
	}
	return anchors, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, documentTypeID string) ([]models.Template, error) {
	return s.templates.List(dbctx.New(ctx), documentTypeID)
}

// DeleteTemplate soft-deletes the record and removes the stored file.
// Documents generated from it keep their template name.
func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(dbctx.New(ctx), tmpl.ID); err != nil {
		return err
	}
	s.deleteObject(tmpl.StoragePath)
	return nil
}

func (s *TemplateService) deleteObject(objectName string) {
	err := s.store.Delete(context.Background(), objectName)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("failed to delete stored template", "object", objectName, "error", err)
	}
}
