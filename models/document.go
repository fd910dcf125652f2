package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents an uploaded file belonging to a case. The file itself
// lives under the storage root in the case directory; FilePath is always
// relative to the storage root ("<file number>/<filename>") so a later case
// rename keeps the reference valid once the directory is moved along.
type Document struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Title            string `gorm:"size:255;not null" json:"title"`
	FileOriginalName string `gorm:"size:255;not null" json:"file_original_name"`
	FilePath         string `gorm:"size:512;not null" json:"-"` // Not exposed in JSON for security
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type,omitempty"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	UploadedBy   *User   `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// GetDownloadURL returns a safe download URL for this document
func (d *Document) GetDownloadURL() string {
	return "/api/cases/" + d.CaseID + "/documents/" + d.ID + "/download"
}
