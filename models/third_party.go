package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThirdParty represents an additional participant of a case (insurer,
// expert, witness). Linked to cases through CaseThirdParty.
type ThirdParty struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Address     string `gorm:"type:text" json:"address"`
	BankDetails string `gorm:"type:text" json:"bank_details"`
	Phone       string `gorm:"size:50" json:"phone"`
	Email       string `json:"email"`
	Type        string `gorm:"size:20;not null;default:PERSON" json:"type"`
	Notes       string `gorm:"type:text" json:"notes"`
}

// BeforeCreate hook to generate UUID
func (tp *ThirdParty) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == "" {
		tp.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ThirdParty model
func (ThirdParty) TableName() string {
	return "third_parties"
}
