package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Opponent represents the adverse party of a case (Gegner).
// Opponents are keyed independently of clients; the conflict rule correlates
// the two record types by normalized name (see services.ClientIsOpenOpponent).
type Opponent struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:255;not null;index" json:"name"`
	Address     string `gorm:"type:text" json:"address"`
	BankDetails string `gorm:"type:text" json:"bank_details"`
	Phone       string `gorm:"size:50" json:"phone"`
	Email       string `json:"email"`
	Type        string `gorm:"size:20;not null;default:PERSON" json:"type"`
}

// BeforeCreate hook to generate UUID
func (o *Opponent) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Opponent model
func (Opponent) TableName() string {
	return "opponents"
}
