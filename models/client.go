package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a party the office acts for (Mandant)
type Client struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Address     string `gorm:"type:text" json:"address"`
	BankDetails string `gorm:"type:text" json:"bank_details"`
	Phone       string `gorm:"size:50" json:"phone"`
	Email       string `json:"email"`
	Type        string `gorm:"size:20;not null;default:PERSON" json:"type"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}
