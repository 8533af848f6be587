package services

import (
	"context"
	"fmt"
	"time"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/repository"
	"DF-DOCGEN/internal/storage"

	"gorm.io/gorm"
)

// DocumentView is the flattened read projection of a document.
type DocumentView struct {
	ID               string    `json:"id"`
	CaseID           string    `json:"case_id"`
	CaseName         string    `json:"case_name"`
	DocumentTypeID   string    `json:"document_type_id"`
	DocumentTypeName string    `json:"document_type_name"`
	TemplateID       string    `json:"template_id,omitempty"`
	TemplateName     string    `json:"template_name,omitempty"`
	FileName         string    `json:"file_name"`
	ArtifactPath     string    `json:"artifact_path"`
	ArtifactURL      string    `json:"artifact_url"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type DocumentPage struct {
	Items  []DocumentView `json:"items"`
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

type DocumentService struct {
	db        *gorm.DB
	documents repository.DocumentRepository
	baseURL   string
	log       *logger.Logger
}

func NewDocumentService(db *gorm.DB, baseURL string, log *logger.Logger) *DocumentService {
	return &DocumentService{
		db:        db,
		documents: repository.NewDocumentRepository(db),
		baseURL:   baseURL,
		log:       log.With("component", "documents"),
	}
}

// ListPaged returns one page in creation order together with the total
// count for caseID (all cases when empty). A zero limit yields no items.
func (s *DocumentService) ListPaged(ctx context.Context, offset, limit int, caseID string) (*DocumentPage, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must not be negative", apperrors.ErrInvalidArgument)
	}

	docs, total, err := s.documents.GetAllPaged(dbctx.New(ctx), offset, limit, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &DocumentPage{
		Items:  s.project(docs),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (s *DocumentService) GetAll(ctx context.Context) ([]DocumentView, error) {
	docs, err := s.documents.GetAll(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return s.project(docs), nil
}

func (s *DocumentService) GetByID(ctx context.Context, id string) (*DocumentView, error) {
	doc, err := s.documents.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	view := s.view(doc)
	return &view, nil
}

// Delete removes the document record. The artifact stays in the store.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.documents.Delete(dbctx.WithTx(ctx, tx), id)
	})
	if err != nil {
		return err
	}
	s.log.Info("document deleted", "document_id", id)
	return nil
}

func (s *DocumentService) project(docs []models.Document) []DocumentView {
	views := make([]DocumentView, 0, len(docs))
	for i := range docs {
		views = append(views, s.view(&docs[i]))
	}
	return views
}

func (s *DocumentService) view(doc *models.Document) DocumentView {
	view := DocumentView{
		ID:               doc.ID,
		CaseID:           doc.CaseID,
		CaseName:         doc.Case.Name,
		DocumentTypeID:   doc.DocumentTypeID,
		DocumentTypeName: doc.DocumentType.Name,
		FileName:         doc.FileName,
		ArtifactPath:     doc.ArtifactPath,
		ArtifactURL:      storage.PublicURL(s.baseURL, doc.ArtifactPath),
		CreatedBy:        doc.CreatedBy,
		CreatedAt:        doc.CreatedAt,
	}
	if doc.TemplateID != nil {
		view.TemplateID = *doc.TemplateID
	}
	if doc.Template != nil {
		view.TemplateName = doc.Template.Name
		if view.FileName == "" {
			view.FileName = doc.Template.Filename
		}
	}
	return view
}
