package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Template struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Filename       string         `gorm:"not null" json:"filename"`
	StoragePath    string         `gorm:"not null" json:"storage_path"`
	DocumentTypeID string         `gorm:"type:varchar(36);not null;index" json:"document_type_id"`
	Active         bool           `gorm:"not null;default:false;index" json:"active"`
	Anchors        datatypes.JSON `json:"anchors"` // cached anchor names, document order
	FileSize       int64          `json:"file_size"`
	MimeType       string         `json:"mime_type"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	DocumentType DocumentType `gorm:"foreignKey:DocumentTypeID" json:"-"`
}

func (Template) TableName() string {
	return "document_templates"
}

// AnchorList decodes the cached anchor names.
func (t *Template) AnchorList() ([]string, error) {
	anchors := []string{}
	if len(t.Anchors) == 0 {
		return anchors, nil
	}
	if err := json.Unmarshal(t.Anchors, &anchors); err != nil {
		return nil, err
	}
	return anchors, nil
}
