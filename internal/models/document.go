package models

import "time"

// Document is a generated or uploaded artifact linked to its case, type and
// (for generated documents) template.
type Document struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CaseID         string    `gorm:"type:varchar(36);not null;index" json:"case_id"`
	DocumentTypeID string    `gorm:"type:varchar(36);not null;index" json:"document_type_id"`
	TemplateID     *string   `gorm:"type:varchar(36);index" json:"template_id"`
	ArtifactPath   string    `gorm:"not null" json:"artifact_path"`
	FileName       string    `json:"file_name"`
	CreatedBy      string    `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Case         Case         `gorm:"foreignKey:CaseID" json:"-"`
	DocumentType DocumentType `gorm:"foreignKey:DocumentTypeID" json:"-"`
	Template     *Template    `gorm:"foreignKey:TemplateID" json:"-"`
}

type Case struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentType struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Currency struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(8);not null;uniqueIndex" json:"code"`
	Name         string    `gorm:"not null" json:"name"`
	Symbol       string    `gorm:"type:varchar(8)" json:"symbol"`
	ExchangeRate float64   `json:"exchange_rate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// All lists every model migrated at startup.
func All() []interface{} {
	return []interface{}{
		&Case{},
		&DocumentType{},
		&Template{},
		&Document{},
		&Currency{},
		&ActivityLog{},
	}
}
