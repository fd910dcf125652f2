package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func uploadContext(t *testing.T, caseID, filename, title string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	if title != "" {
		assert.NoError(t, writer.WriteField("title", title))
	}
	assert.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+caseID+"/documents", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(caseID)
	return c, rec
}

func createCaseForUpload(t *testing.T, database *gorm.DB, fileNumber string) *models.Case {
	client, opponent := createParties(t, database)
	kase, err := services.CreateCase(database, services.Store, services.CreateCaseInput{
		FileNumber: fileNumber,
		ClientID:   client.ID,
		OpponentID: opponent.ID,
	})
	assert.NoError(t, err)
	return kase
}

func TestUploadDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	kase := createCaseForUpload(t, database, "0007.25.awr")

	c, rec := uploadContext(t, kase.ID, "scan.pdf", "Klageschrift", []byte("%PDF-1.4"))

	assert.NoError(t, UploadDocumentHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var document models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &document))
	assert.Equal(t, "Klageschrift", document.Title)
	assert.Equal(t, "scan.pdf", document.FileOriginalName)
	// The storage path is never exposed over the API
	assert.NotContains(t, rec.Body.String(), "0007.25.awr/scan.pdf")
}

func TestUploadDocumentHandlerMissingFile(t *testing.T) {
	database := setupTestDB(t)
	kase := createCaseForUpload(t, database, "0007.25.awr")

	_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+kase.ID+"/documents", nil)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)

	assert.NoError(t, UploadDocumentHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	kase := createCaseForUpload(t, database, "0007.25.awr")

	c, rec := uploadContext(t, kase.ID, "scan.pdf", "", []byte("pdf content"))
	assert.NoError(t, UploadDocumentHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	var document models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &document))

	_, dc, drec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/documents/"+document.ID+"/download", nil)
	dc.SetParamNames("id", "docId")
	dc.SetParamValues(kase.ID, document.ID)

	assert.NoError(t, DownloadDocumentHandler(dc))
	assert.Equal(t, http.StatusOK, drec.Code)
	assert.Equal(t, "pdf content", drec.Body.String())
}

func TestDownloadDocumentHandlerTamperedPath(t *testing.T) {
	database := setupTestDB(t)
	kase := createCaseForUpload(t, database, "0007.25.awr")

	// A record with a traversal path must never resolve
	document := &models.Document{
		CaseID:           kase.ID,
		Title:            "Manipuliert",
		FileOriginalName: "../secret.txt",
		FilePath:         "../secret.txt",
	}
	assert.NoError(t, database.Create(document).Error)

	_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/documents/"+document.ID+"/download", nil)
	c.SetParamNames("id", "docId")
	c.SetParamValues(kase.ID, document.ID)

	assert.NoError(t, DownloadDocumentHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "path_validation")
}

func TestListDocumentsHandler(t *testing.T) {
	database := setupTestDB(t)
	kase := createCaseForUpload(t, database, "0007.25.awr")

	c, rec := uploadContext(t, kase.ID, "scan.pdf", "", []byte("pdf"))
	assert.NoError(t, UploadDocumentHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	_, lc, lrec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/documents", nil)
	lc.SetParamNames("id")
	lc.SetParamValues(kase.ID)

	assert.NoError(t, ListDocumentsHandler(lc))
	assert.Equal(t, http.StatusOK, lrec.Code)

	var documents []models.Document
	assert.NoError(t, json.Unmarshal(lrec.Body.Bytes(), &documents))
	assert.Len(t, documents, 1)

	// Unknown case yields not found, not an empty list
	_, mc, mrec := setupEcho(http.MethodGet, "/api/cases/missing/documents", nil)
	mc.SetParamNames("id")
	mc.SetParamValues("missing")
	assert.NoError(t, ListDocumentsHandler(mc))
	assert.Equal(t, http.StatusNotFound, mrec.Code)
}
