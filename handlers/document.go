package handlers

import (
	"net/http"

	"kanzlei_app_go/db"
	"kanzlei_app_go/middleware"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

// UploadDocumentHandler stores an uploaded file in the case directory and
// creates the document record
func UploadDocumentHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "file is required"})
	}

	input := services.UploadDocumentInput{
		CaseID: c.Param("id"),
		Title:  c.FormValue("title"),
		File:   file,
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		input.UploadedByID = user.ID
	}

	document, err := services.UploadDocument(db.DB, services.Store, input)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionUpload, "Document", document.ID, document.Title,
		"Document uploaded", nil, nil)

	return c.JSON(http.StatusCreated, document)
}

// ListDocumentsHandler returns the documents of a case
func ListDocumentsHandler(c echo.Context) error {
	if _, err := services.GetCase(db.DB, c.Param("id")); err != nil {
		return respondServiceError(c, err)
	}

	documents, err := services.ListCaseDocuments(db.DB, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, documents)
}

// DownloadDocumentHandler serves a document after validating that its
// resolved path stays inside the storage root
func DownloadDocumentHandler(c echo.Context) error {
	document, path, err := services.ResolveDownload(db.DB, services.Store, c.Param("id"), c.Param("docId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionDownload, "Document", document.ID, document.Title,
		"Document downloaded", nil, nil)

	return c.Attachment(path, document.FileOriginalName)
}

// DeleteDocumentHandler removes a document record and its file
func DeleteDocumentHandler(c echo.Context) error {
	if err := services.DeleteDocument(db.DB, services.Store, c.Param("id"), c.Param("docId")); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionDelete, "Document", c.Param("docId"), "",
		"Document deleted", nil, nil)

	return c.NoContent(http.StatusNoContent)
}
