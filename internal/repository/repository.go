package repository

import (
	"errors"
	"fmt"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(dbc dbctx.Context, tmpl *models.Template) error
	GetByID(dbc dbctx.Context, id string) (*models.Template, error)
	// GetActiveIDForType returns "" when the type has no active template.
	GetActiveIDForType(dbc dbctx.Context, documentTypeID string) (string, error)
	DeactivateType(dbc dbctx.Context, documentTypeID string) error
	List(dbc dbctx.Context, documentTypeID string) ([]models.Template, error)
	Delete(dbc dbctx.Context, id string) error
}

type DocumentRepository interface {
	GetAll(dbc dbctx.Context) ([]models.Document, error)
	GetAllPaged(dbc dbctx.Context, offset, limit int, caseID string) ([]models.Document, int64, error)
	GetByID(dbc dbctx.Context, id string) (*models.Document, error)
	Insert(dbc dbctx.Context, doc *models.Document) error
	Update(dbc dbctx.Context, doc *models.Document) error
	Delete(dbc dbctx.Context, id string) error
}

type CurrencyRepository interface {
	GetAll(dbc dbctx.Context) ([]models.Currency, error)
	GetByID(dbc dbctx.Context, id string) (*models.Currency, error)
	Add(dbc dbctx.Context, currency *models.Currency) error
	Update(dbc dbctx.Context, currency *models.Currency) error
	Delete(dbc dbctx.Context, id string) error
}

type ReferenceRepository interface {
	CreateCase(dbc dbctx.Context, c *models.Case) error
	GetCase(dbc dbctx.Context, id string) (*models.Case, error)
	ListCases(dbc dbctx.Context) ([]models.Case, error)
	CreateDocumentType(dbc dbctx.Context, dt *models.DocumentType) error
	GetDocumentType(dbc dbctx.Context, id string) (*models.DocumentType, error)
	ListDocumentTypes(dbc dbctx.Context) ([]models.DocumentType, error)
}

type ActivityLogRepository interface {
	Create(dbc dbctx.Context, entry *models.ActivityLog) error
	List(dbc dbctx.Context, filter ActivityLogFilter, offset, limit int) ([]models.ActivityLog, int64, error)
}

type ActivityLogFilter struct {
	Method string
	Path   string
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, what, id)
	}
	return err
}
