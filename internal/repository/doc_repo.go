package repository

import (
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// withRelations loads the names a projection needs. Soft-deleted templates
// still resolve so historical documents keep their template name.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Case").
		Preload("DocumentType").
		Preload("Template", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() })
}

// creation order, id as tie-breaker
const documentOrder = "created_at ASC, id ASC"

func (r *documentRepository) GetAll(dbc dbctx.Context) ([]models.Document, error) {
	var docs []models.Document
	err := withRelations(dbc.DB(r.db)).Order(documentOrder).Find(&docs).Error
	return docs, err
}

func (r *documentRepository) GetAllPaged(dbc dbctx.Context, offset, limit int, caseID string) ([]models.Document, int64, error) {
	query := dbc.DB(r.db).Model(&models.Document{})
	if caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	docs := []models.Document{}
	if limit == 0 || int64(offset) >= total {
		return docs, total, nil
	}

	err := withRelations(query).
		Order(documentOrder).
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	return docs, total, err
}

func (r *documentRepository) GetByID(dbc dbctx.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := withRelations(dbc.DB(r.db)).First(&doc, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "document", id)
	}
	return &doc, nil
}

func (r *documentRepository) Insert(dbc dbctx.Context, doc *models.Document) error {
	return dbc.DB(r.db).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepository) Update(dbc dbctx.Context, doc *models.Document) error {
	result := dbc.DB(r.db).Model(&models.Document{ID: doc.ID}).
		Select("case_id", "document_type_id", "template_id", "artifact_path", "file_name", "updated_at").
		Updates(doc)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "document", doc.ID)
	}
	return nil
}

func (r *documentRepository) Delete(dbc dbctx.Context, id string) error {
	result := dbc.DB(r.db).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "document", id)
	}
	return nil
}
