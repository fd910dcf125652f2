package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// UploadDocumentInput contains the input data for a document upload
type UploadDocumentInput struct {
	CaseID       string
	Title        string
	File         *multipart.FileHeader
	UploadedByID string
}

// UploadDocument writes the uploaded file into the case directory and
// creates the Document record. Documents may be added regardless of case
// status. The per-case lock keeps the write out of the way of a concurrent
// rename of the same case; a failing record insert removes the file again.
func UploadDocument(db *gorm.DB, store *DocumentStore, input UploadDocumentInput) (*models.Document, error) {
	if input.File == nil {
		return nil, &ValidationError{Msg: "file is required"}
	}

	unlock := lockCase(input.CaseID)
	defer unlock()

	var kase models.Case
	if err := db.First(&kase, "id = ?", input.CaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "case", ID: input.CaseID}
		}
		return nil, &WriteError{Op: "failed to load case", Err: err}
	}

	src, err := input.File.Open()
	if err != nil {
		return nil, &StorageError{Op: "failed to open uploaded file", Err: err}
	}
	defer src.Close()

	relativePath, size, err := store.Store(kase.FileNumber, src, input.File.Filename)
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = input.File.Filename
	}

	document := &models.Document{
		CaseID:           kase.ID,
		Title:            title,
		FileOriginalName: input.File.Filename,
		FilePath:         relativePath,
		FileSize:         size,
		MimeType:         input.File.Header.Get("Content-Type"),
	}
	if input.UploadedByID != "" {
		document.UploadedByID = &input.UploadedByID
	}

	if err := db.Create(document).Error; err != nil {
		// Roll the file write back so disk and record stay consistent
		os.Remove(filepath.Join(store.Root(), filepath.FromSlash(relativePath)))
		return nil, &WriteError{Op: "failed to create document record", Err: err}
	}

	return document, nil
}

// GetDocument loads a document and verifies it belongs to the given case
func GetDocument(db *gorm.DB, caseID, documentID string) (*models.Document, error) {
	var document models.Document
	err := db.Where("id = ? AND case_id = ?", documentID, caseID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "document", ID: documentID}
		}
		return nil, &WriteError{Op: "failed to load document", Err: err}
	}
	return &document, nil
}

// ResolveDownload returns the validated absolute path for downloading a
// document. Any path escaping the storage root fails closed.
func ResolveDownload(db *gorm.DB, store *DocumentStore, caseID, documentID string) (*models.Document, string, error) {
	document, err := GetDocument(db, caseID, documentID)
	if err != nil {
		return nil, "", err
	}

	var kase models.Case
	if err := db.First(&kase, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", &NotFoundError{Resource: "case", ID: caseID}
		}
		return nil, "", &WriteError{Op: "failed to load case", Err: err}
	}

	path, err := store.ResolveForDownload(document, &kase)
	if err != nil {
		return nil, "", err
	}
	return document, path, nil
}

// ListCaseDocuments returns the documents of a case ordered by upload time
func ListCaseDocuments(db *gorm.DB, caseID string) ([]models.Document, error) {
	var documents []models.Document
	if err := db.Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&documents).Error; err != nil {
		return nil, &WriteError{Op: "failed to list documents", Err: err}
	}
	return documents, nil
}

// DeleteDocument removes the document record and its file. A missing file is
// logged but does not block the record deletion.
func DeleteDocument(db *gorm.DB, store *DocumentStore, caseID, documentID string) error {
	document, err := GetDocument(db, caseID, documentID)
	if err != nil {
		return err
	}

	var kase models.Case
	if err := db.First(&kase, "id = ?", caseID).Error; err != nil {
		return &WriteError{Op: "failed to load case", Err: err}
	}

	if path, err := store.ResolveForDownload(document, &kase); err == nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &StorageError{Op: fmt.Sprintf("failed to delete file for document %s", documentID), Err: err}
		}
	}

	if err := db.Delete(document).Error; err != nil {
		return &WriteError{Op: "failed to delete document record", Err: err}
	}
	return nil
}
