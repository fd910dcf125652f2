package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileNumberCounter holds the last allocated sequence number per period
// (two-digit year). Allocation increments LastSequence with a single UPDATE
// so two concurrent creations can never read the same value.
type FileNumberCounter struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Period       string `gorm:"size:2;not null;uniqueIndex" json:"period"`
	LastSequence int    `gorm:"not null;default:0" json:"last_sequence"`
}

// BeforeCreate hook to generate UUID
func (c *FileNumberCounter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for FileNumberCounter model
func (FileNumberCounter) TableName() string {
	return "file_number_counters"
}
