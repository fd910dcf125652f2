package services

import "kanzlei_app_go/models"

// Action is an operation checked against the access matrix
type Action string

const (
	ActionRead             Action = "read"
	ActionCreate           Action = "create"
	ActionUpdate           Action = "update"
	ActionUpdateFileNumber Action = "update_file_number"
	ActionDelete           Action = "delete"
	ActionClose            Action = "close"
	ActionUploadDocument   Action = "upload_document"
	ActionSearch           Action = "search"
)

// rolePermissions is the access matrix. Roles absent from the map (and the
// empty role of an anonymous caller) are denied everything.
var rolePermissions = map[string]map[Action]bool{
	models.RoleAdmin: {
		ActionRead: true, ActionCreate: true, ActionUpdate: true,
		ActionUpdateFileNumber: true, ActionDelete: true, ActionClose: true,
		ActionUploadDocument: true, ActionSearch: true,
	},
	models.RolePoweruser: {
		ActionRead: true, ActionCreate: true, ActionUpdate: true,
		ActionUpdateFileNumber: true, ActionDelete: true, ActionClose: true,
		ActionUploadDocument: true, ActionSearch: true,
	},
	models.RoleUser: {
		ActionRead: true, ActionCreate: true, ActionUpdate: true,
		ActionClose: true, ActionUploadDocument: true, ActionSearch: true,
	},
	models.RoleBetrachter: {
		ActionRead: true, ActionSearch: true,
	},
}

// Allowed resolves (role, action) to an access decision. The staff override
// always grants full access; unknown roles fail closed.
func Allowed(role string, action Action, isStaff bool) bool {
	if isStaff {
		return true
	}
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[action]
}
