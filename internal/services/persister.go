package services

import (
	"context"
	"fmt"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersistInput describes one artifact to record. ExistingDocumentID switches
// from insert to update. TemplateID is empty for uploaded documents.
type PersistInput struct {
	CaseID             string
	DocumentTypeID     string
	TemplateID         string
	ArtifactPath       string
	FileName           string
	ExistingDocumentID string
	CreatedBy          string
}

func (in PersistInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CaseID, validation.Required),
		validation.Field(&in.DocumentTypeID, validation.Required),
		validation.Field(&in.ArtifactPath, validation.Required),
	)
}

type PersistResult struct {
	DocumentID string
	// ReplacedArtifactPath is the artifact an update superseded, if any.
	ReplacedArtifactPath string
}

// Persister records generated and uploaded artifacts. Every call is a single
// transaction.
type Persister struct {
	db        *gorm.DB
	documents repository.DocumentRepository
	templates repository.TemplateRepository
	reference repository.ReferenceRepository
}

func NewPersister(db *gorm.DB) *Persister {
	return &Persister{
		db:        db,
		documents: repository.NewDocumentRepository(db),
		templates: repository.NewTemplateRepository(db),
		reference: repository.NewReferenceRepository(db),
	}
}

func (p *Persister) PersistGeneration(ctx context.Context, in PersistInput) (*PersistResult, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", apperrors.ErrPersistence, apperrors.ErrInvalidArgument, err)
	}

	var result PersistResult
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		if _, err := p.reference.GetCase(dbc, in.CaseID); err != nil {
			return err
		}
		if _, err := p.reference.GetDocumentType(dbc, in.DocumentTypeID); err != nil {
			return err
		}
		var templateID *string
		if in.TemplateID != "" {
			if _, err := p.templates.GetByID(dbc, in.TemplateID); err != nil {
				return err
			}
			templateID = &in.TemplateID
		}

		if in.ExistingDocumentID == "" {
			doc := &models.Document{
				ID:             uuid.New().String(),
				CaseID:         in.CaseID,
				DocumentTypeID: in.DocumentTypeID,
				TemplateID:     templateID,
				ArtifactPath:   in.ArtifactPath,
				FileName:       in.FileName,
				CreatedBy:      in.CreatedBy,
			}
			if err := p.documents.Insert(dbc, doc); err != nil {
				return err
			}
			result.DocumentID = doc.ID
			return nil
		}

		doc, err := p.documents.GetByID(dbc, in.ExistingDocumentID)
		if err != nil {
			return err
		}
		if doc.ArtifactPath != in.ArtifactPath {
			result.ReplacedArtifactPath = doc.ArtifactPath
		}
		doc.CaseID = in.CaseID
		doc.DocumentTypeID = in.DocumentTypeID
		doc.TemplateID = templateID
		doc.ArtifactPath = in.ArtifactPath
		doc.FileName = in.FileName
		if err := p.documents.Update(dbc, doc); err != nil {
			return err
		}
		result.DocumentID = doc.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return &result, nil
}
