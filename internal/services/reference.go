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

// ReferenceService manages cases and document types.
type ReferenceService struct {
	reference repository.ReferenceRepository
}

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{reference: repository.NewReferenceRepository(db)}
}

func requireName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Length(1, 255)); err != nil {
		return fmt.Errorf("%w: name %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

func (s *ReferenceService) CreateCase(ctx context.Context, name string) (*models.Case, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	c := &models.Case{ID: uuid.New().String(), Name: name}
	if err := s.reference.CreateCase(dbctx.New(ctx), c); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return c, nil
}

func (s *ReferenceService) ListCases(ctx context.Context) ([]models.Case, error) {
	return s.reference.ListCases(dbctx.New(ctx))
}

func (s *ReferenceService) CreateDocumentType(ctx context.Context, name string) (*models.DocumentType, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	dt := &models.DocumentType{ID: uuid.New().String(), Name: name}
	if err := s.reference.CreateDocumentType(dbctx.New(ctx), dt); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return dt, nil
}

func (s *ReferenceService) ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return s.reference.ListDocumentTypes(dbctx.New(ctx))
}
