package repository

import (
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(dbc dbctx.Context, tmpl *models.Template) error {
	return dbc.DB(r.db).Omit(clause.Associations).Create(tmpl).Error
}

func (r *templateRepository) GetByID(dbc dbctx.Context, id string) (*models.Template, error) {
	var tmpl models.Template
	if err := dbc.DB(r.db).First(&tmpl, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "template", id)
	}
	return &tmpl, nil
}

func (r *templateRepository) GetActiveIDForType(dbc dbctx.Context, documentTypeID string) (string, error) {
	var ids []string
	err := dbc.DB(r.db).Model(&models.Template{}).
		Where("document_type_id = ? AND active = ?", documentTypeID, true).
		Order("created_at DESC, id DESC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[0], nil
}

func (r *templateRepository) DeactivateType(dbc dbctx.Context, documentTypeID string) error {
	return dbc.DB(r.db).Model(&models.Template{}).
		Where("document_type_id = ? AND active = ?", documentTypeID, true).
		Update("active", false).Error
}

func (r *templateRepository) List(dbc dbctx.Context, documentTypeID string) ([]models.Template, error) {
	var templates []models.Template
	query := dbc.DB(r.db).Order("created_at ASC, id ASC")
	if documentTypeID != "" {
		query = query.Where("document_type_id = ?", documentTypeID)
	}
	err := query.Find(&templates).Error
	return templates, err
}

func (r *templateRepository) Delete(dbc dbctx.Context, id string) error {
	result := dbc.DB(r.db).Delete(&models.Template{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "template", id)
	}
	return nil
}
