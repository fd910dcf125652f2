package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseThirdParty links a ThirdParty to a Case and carries its role in that
// case. A third party can be linked to a case at most once; links are
// ordered by creation time, which also defines the snapshot order at close.
type CaseThirdParty struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_third_party" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ThirdPartyID string     `gorm:"type:uuid;not null;uniqueIndex:idx_case_third_party" json:"third_party_id"`
	ThirdParty   ThirdParty `gorm:"foreignKey:ThirdPartyID" json:"third_party,omitempty"`

	// Role of the third party in this case, e.g. "Haftpflichtversicherer"
	Role string `gorm:"size:100" json:"role"`
}

// BeforeCreate hook to generate UUID
func (l *CaseThirdParty) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseThirdParty model
func (CaseThirdParty) TableName() string {
	return "case_third_parties"
}
