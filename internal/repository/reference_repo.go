package repository

import (
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
)

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) CreateCase(dbc dbctx.Context, c *models.Case) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *referenceRepository) GetCase(dbc dbctx.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := dbc.DB(r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "case", id)
	}
	return &c, nil
}

func (r *referenceRepository) ListCases(dbc dbctx.Context) ([]models.Case, error) {
	cases := []models.Case{}
	err := dbc.DB(r.db).Order("created_at ASC, id ASC").Find(&cases).Error
	return cases, err
}

func (r *referenceRepository) CreateDocumentType(dbc dbctx.Context, dt *models.DocumentType) error {
	return dbc.DB(r.db).Create(dt).Error
}

func (r *referenceRepository) GetDocumentType(dbc dbctx.Context, id string) (*models.DocumentType, error) {
	var dt models.DocumentType
	if err := dbc.DB(r.db).First(&dt, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "document type", id)
	}
	return &dt, nil
}

func (r *referenceRepository) ListDocumentTypes(dbc dbctx.Context) ([]models.DocumentType, error) {
	types := []models.DocumentType{}
	err := dbc.DB(r.db).Order("name ASC").Find(&types).Error
	return types, err
}
