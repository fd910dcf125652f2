package services

import (
	"encoding/json"
	"log"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	// Run in goroutine to avoid blocking the request
	go func() {
		var oldJSON, newJSON string

		if oldValues != nil {
			if bytes, err := json.Marshal(oldValues); err == nil {
				oldJSON = string(bytes)
			}
		}

		if newValues != nil {
			if bytes, err := json.Marshal(newValues); err == nil {
				newJSON = string(bytes)
			}
		}

		auditLog := models.AuditLog{
			UserID:       ptrIfNotEmpty(ctx.UserID),
			UserName:     ctx.UserName,
			UserRole:     ctx.UserRole,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			ResourceName: resourceName,
			Action:       action,
			Description:  description,
			OldValues:    oldJSON,
			NewValues:    newJSON,
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
