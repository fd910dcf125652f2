package services

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// maxCreateRetries bounds how often case creation retries after losing a
// file number allocation race to another process
const maxCreateRetries = 5

// CreateCaseInput contains the input data for creating a case
type CreateCaseInput struct {
	// FileNumber is optional; empty means allocate the next number for the
	// current period
	FileNumber string
	ClientID   string
	OpponentID string
	ExtraData  map[string]interface{}
}

// CreateCase creates a case in status OPEN with empty snapshots and
// provisions its document directory. The conflict check runs inside the
// same transaction as the insert, so a conflicting case can never be
// persisted partially.
func CreateCase(db *gorm.DB, store *DocumentStore, input CreateCaseInput) (*models.Case, error) {
	if input.ClientID == "" {
		return nil, &ValidationError{Msg: "client is required"}
	}
	if input.OpponentID == "" {
		return nil, &ValidationError{Msg: "opponent is required"}
	}

	var client models.Client
	if err := db.First(&client, "id = ?", input.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Msg: "client does not exist"}
		}
		return nil, &WriteError{Op: "failed to load client", Err: err}
	}
	var opponent models.Opponent
	if err := db.First(&opponent, "id = ?", input.OpponentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Msg: "opponent does not exist"}
		}
		return nil, &WriteError{Op: "failed to load opponent", Err: err}
	}

	extraData := "{}"
	if input.ExtraData != nil {
		encoded, err := json.Marshal(input.ExtraData)
		if err != nil {
			return nil, &ValidationError{Msg: "extra data must be a JSON object"}
		}
		extraData = string(encoded)
	}

	for attempt := 0; attempt < maxCreateRetries; attempt++ {
		fileNumber := input.FileNumber
		if fileNumber == "" {
			allocated, err := AllocateFileNumber(db, CurrentPeriod())
			if err != nil {
				return nil, err
			}
			fileNumber = allocated
		}

		kase := &models.Case{
			FileNumber: fileNumber,
			Status:     models.CaseStatusOpen,
			ClientID:   client.ID,
			OpponentID: &opponent.ID,
			ExtraData:  extraData,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			conflicted, err := ClientIsOpenOpponent(tx, &client)
			if err != nil {
				return &WriteError{Op: "failed to run conflict check", Err: err}
			}
			if conflicted {
				return &ConflictError{
					Rule: ConflictRuleClientIsOpenOpponent,
					Msg:  "client is already an opponent in an open case",
				}
			}

			if err := tx.Create(kase).Error; err != nil {
				return err
			}

			// Provision the directory while the insert is still uncommitted:
			// a storage failure rolls the whole creation back
			if _, err := store.EnsureDirectory(kase.FileNumber); err != nil {
				return err
			}
			return nil
		})
		if err == nil {
			return kase, nil
		}

		if isUniqueViolation(err) {
			if input.FileNumber != "" {
				return nil, &ValidationError{Msg: "file number is already in use"}
			}
			// Lost the allocation race; allocate a fresh number and retry
			continue
		}

		var conflictErr *ConflictError
		var storageErr *StorageError
		var writeErr *WriteError
		if errors.As(err, &conflictErr) || errors.As(err, &storageErr) || errors.As(err, &writeErr) {
			return nil, err
		}
		return nil, &WriteError{Op: "failed to create case", Err: err}
	}

	return nil, &WriteError{Op: "failed to create case", Err: errors.New("file number allocation kept colliding")}
}

// GetCase loads a case with its relationships
func GetCase(db *gorm.DB, id string) (*models.Case, error) {
	var kase models.Case
	err := db.Preload("Client").
		Preload("Opponent").
		Preload("ThirdPartyLinks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Preload("ThirdPartyLinks.ThirdParty").
		Preload("Documents").
		First(&kase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "case", ID: id}
		}
		return nil, &WriteError{Op: "failed to load case", Err: err}
	}
	return &kase, nil
}

// LinkThirdParty attaches a third party with a role to a case. A third
// party can be linked at most once per case.
func LinkThirdParty(db *gorm.DB, caseID, thirdPartyID, role string) (*models.CaseThirdParty, error) {
	var kase models.Case
	if err := db.First(&kase, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "case", ID: caseID}
		}
		return nil, &WriteError{Op: "failed to load case", Err: err}
	}
	var thirdParty models.ThirdParty
	if err := db.First(&thirdParty, "id = ?", thirdPartyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Msg: "third party does not exist"}
		}
		return nil, &WriteError{Op: "failed to load third party", Err: err}
	}

	link := &models.CaseThirdParty{
		CaseID:       kase.ID,
		ThirdPartyID: thirdParty.ID,
		Role:         role,
	}
	if err := db.Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Msg: "third party is already linked to this case"}
		}
		return nil, &WriteError{Op: "failed to link third party", Err: err}
	}
	link.ThirdParty = thirdParty
	return link, nil
}

// CloseCase transitions a case from OPEN to CLOSED, freezing the client,
// opponent and third-party master data into the case's snapshot fields.
// Closing an already closed case is a no-op: the frozen snapshots are never
// recaptured. After the commit the export collaborator produces the
// structured and formatted artifacts; export failures are logged and do not
// undo the transition.
func CloseCase(db *gorm.DB, exporter CaseExporter, id string) (*models.Case, error) {
	unlock := lockCase(id)
	defer unlock()

	var kase models.Case
	transitioned := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "case", ID: id}
			}
			return &WriteError{Op: "failed to load case", Err: err}
		}

		if kase.IsClosed() {
			return nil
		}
		if kase.IsArchived() {
			return &ValidationError{Msg: "archived cases cannot be closed"}
		}

		if err := FreezeMasterData(tx, &kase); err != nil {
			return &WriteError{Op: "failed to freeze master data", Err: err}
		}

		now := time.Now()
		kase.Status = models.CaseStatusClosed
		kase.ClosedAt = &now
		if err := tx.Save(&kase).Error; err != nil {
			return &WriteError{Op: "failed to close case", Err: err}
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned && exporter != nil {
		if err := exporter.ExportClosedCase(db, &kase); err != nil {
			log.Printf("[WARNING] Export for closed case %s failed: %v", kase.FileNumber, err)
		}
	}

	return &kase, nil
}

// ArchiveCase transitions a case from CLOSED to ARCHIVED. No freeze happens
// here; the snapshots were captured at close time.
func ArchiveCase(db *gorm.DB, id string) (*models.Case, error) {
	unlock := lockCase(id)
	defer unlock()

	var kase models.Case
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "case", ID: id}
			}
			return &WriteError{Op: "failed to load case", Err: err}
		}

		if !kase.IsClosed() {
			return &ValidationError{Msg: "only closed cases can be archived"}
		}

		now := time.Now()
		kase.Status = models.CaseStatusArchived
		kase.ArchivedAt = &now
		if err := tx.Save(&kase).Error; err != nil {
			return &WriteError{Op: "failed to archive case", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &kase, nil
}

// RenameCase changes the file number and moves the case directory in one
// unit: the directory move runs while the row update is still uncommitted,
// so a storage failure rolls the identifier change back. If the database
// commit fails after the move, the directory is moved back; failing that the
// tree is inconsistent and the error says so for manual reconciliation.
func RenameCase(db *gorm.DB, store *DocumentStore, id, newFileNumber string) (*models.Case, error) {
	newFileNumber = strings.TrimSpace(newFileNumber)
	if newFileNumber == "" {
		return nil, &ValidationError{Msg: "file number must not be empty"}
	}

	unlock := lockCase(id)
	defer unlock()

	var kase models.Case
	oldFileNumber := ""
	moved := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "case", ID: id}
			}
			return &WriteError{Op: "failed to load case", Err: err}
		}

		oldFileNumber = kase.FileNumber
		if oldFileNumber == newFileNumber {
			return nil
		}

		kase.FileNumber = newFileNumber
		if err := tx.Save(&kase).Error; err != nil {
			if isUniqueViolation(err) {
				return &ValidationError{Msg: "file number is already in use"}
			}
			return &WriteError{Op: "failed to update file number", Err: err}
		}

		if err := store.Rename(oldFileNumber, newFileNumber); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		if moved {
			// Commit failed after the directory was already moved; try to
			// move it back so record and disk stay consistent
			if restoreErr := store.Rename(newFileNumber, oldFileNumber); restoreErr != nil {
				log.Printf("[CRITICAL] Case %s: directory renamed but database commit failed, and moving the directory back failed too: %v", id, restoreErr)
				return nil, &StorageError{
					Op:  "case record and directory are inconsistent, manual reconciliation required",
					Err: err,
				}
			}
		}
		return nil, err
	}

	return &kase, nil
}

// UpdateExtraData atomically replaces the flexible extra-data blob of a
// case. The per-case lock orders this write against a concurrent close or
// rename of the same case.
func UpdateExtraData(db *gorm.DB, id string, data map[string]interface{}) (*models.Case, error) {
	if data == nil {
		return nil, &ValidationError{Msg: "extra data must be a JSON object"}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, &ValidationError{Msg: "extra data must be a JSON object"}
	}

	unlock := lockCase(id)
	defer unlock()

	var kase models.Case
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "case", ID: id}
			}
			return &WriteError{Op: "failed to load case", Err: err}
		}

		if err := tx.Model(&kase).UpdateColumns(map[string]interface{}{
			"extra_data": string(encoded),
			"updated_at": time.Now(),
		}).Error; err != nil {
			return &WriteError{Op: "failed to write extra data", Err: err}
		}
		kase.ExtraData = string(encoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &kase, nil
}

// ListCases returns cases filtered by status, newest first
func ListCases(db *gorm.DB, status string) ([]models.Case, error) {
	query := db.Model(&models.Case{}).
		Preload("Client").
		Preload("Opponent").
		Order("updated_at DESC")
	if status != "" {
		if !models.IsValidCaseStatus(status) {
			return nil, &ValidationError{Msg: "invalid case status"}
		}
		query = query.Where("status = ?", status)
	}

	var cases []models.Case
	if err := query.Find(&cases).Error; err != nil {
		return nil, &WriteError{Op: "failed to list cases", Err: err}
	}
	return cases, nil
}

// DeleteCase removes a case together with its third-party links and
// document records. Files in the case directory are kept on disk; the
// directory is the office's paper trail and is cleaned up manually.
func DeleteCase(db *gorm.DB, id string) error {
	unlock := lockCase(id)
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		var kase models.Case
		if err := tx.First(&kase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "case", ID: id}
			}
			return &WriteError{Op: "failed to load case", Err: err}
		}

		if err := tx.Where("case_id = ?", id).Delete(&models.CaseThirdParty{}).Error; err != nil {
			return &WriteError{Op: "failed to delete third-party links", Err: err}
		}
		if err := tx.Where("case_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return &WriteError{Op: "failed to delete document records", Err: err}
		}
		if err := tx.Delete(&kase).Error; err != nil {
			return &WriteError{Op: "failed to delete case", Err: err}
		}
		return nil
	})
}

// isUniqueViolation detects a violated unique index on the sqlite driver
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
