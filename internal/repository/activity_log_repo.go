package repository

import (
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
)

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(dbc dbctx.Context, entry *models.ActivityLog) error {
	return dbc.DB(r.db).Create(entry).Error
}

// List returns the newest entries first.
func (r *activityLogRepository) List(dbc dbctx.Context, filter ActivityLogFilter, offset, limit int) ([]models.ActivityLog, int64, error) {
	query := dbc.DB(r.db).Model(&models.ActivityLog{})
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.Path != "" {
		query = query.Where("path LIKE ?", "%"+filter.Path+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := []models.ActivityLog{}
	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
