package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User role constants
const (
	RoleAdmin      = "ADMIN"
	RolePoweruser  = "POWERUSER"
	RoleUser       = "USER"
	RoleBetrachter = "BETRACHTER" // read-only viewer
)

type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:USER" json:"role"`
	// IsStaff grants full access regardless of role (operator override)
	IsStaff     bool       `gorm:"not null;default:false" json:"is_staff"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsValidRole checks if the role is valid
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RolePoweruser, RoleUser, RoleBetrachter:
		return true
	}
	return false
}
