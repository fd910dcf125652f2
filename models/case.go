package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen     = "OPEN"
	CaseStatusClosed   = "CLOSED"
	CaseStatusArchived = "ARCHIVED"
)

// Case represents a case file (Akte), the central tracked entity.
//
// The three snapshot fields are empty until the case is closed; closing
// copies the live client/opponent/third-party master data into them exactly
// once. After that they are frozen and later edits to the live contact
// records must not change them.
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FileNumber is the human-meaningful unique identifier (Aktenzeichen),
	// e.g. "0007.25.awr". Changed only through the explicit rename operation,
	// which also moves the case directory on disk.
	FileNumber string `gorm:"size:50;not null;uniqueIndex" json:"file_number"`
	Status     string `gorm:"size:20;not null;default:OPEN;index" json:"status"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	OpponentID *string   `gorm:"type:uuid;index" json:"opponent_id,omitempty"`
	Opponent   *Opponent `gorm:"foreignKey:OpponentID" json:"opponent,omitempty"`

	// Flexible key-value extra data, any JSON object shape, mutable at any time
	ExtraData string `gorm:"type:text;not null;default:'{}'" json:"extra_data"`

	// Frozen master data, written once on the transition into CLOSED
	ClientSnapshot     string `gorm:"type:text;not null;default:'{}'" json:"client_snapshot"`
	OpponentSnapshot   string `gorm:"type:text;not null;default:'{}'" json:"opponent_snapshot"`
	ThirdPartySnapshot string `gorm:"type:text;not null;default:'[]'" json:"third_party_snapshot"`

	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Relationships
	ThirdPartyLinks []CaseThirdParty `gorm:"foreignKey:CaseID" json:"third_party_links,omitempty"`
	Documents       []Document       `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOpen checks if the case is open
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// IsArchived checks if the case is archived
func (c *Case) IsArchived() bool {
	return c.Status == CaseStatusArchived
}

// ExtraDataMap decodes the flexible extra-data blob
func (c *Case) ExtraDataMap() (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if c.ExtraData == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(c.ExtraData), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusOpen, CaseStatusClosed, CaseStatusArchived:
		return true
	}
	return false
}
