package handlers

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"kanzlei_app_go/db"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while the async audit writer
	// still sees the same database
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.Client{},
		&models.Opponent{},
		&models.ThirdParty{},
		&models.Case{},
		&models.CaseThirdParty{},
		&models.Document{},
		&models.FileNumberCounter{},
	)
	assert.NoError(t, err)

	// Set globals used by the handlers
	db.DB = testDB
	services.Store = services.NewDocumentStore(filepath.Join(t.TempDir(), "akten"))
	services.Exporter = services.NewFileExporter(services.Store, false)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return e, c, rec
}

func createParties(t *testing.T, database *gorm.DB) (*models.Client, *models.Opponent) {
	client := &models.Client{Name: "Hans Schmidt", Address: "Altstr. 1"}
	assert.NoError(t, database.Create(client).Error)
	opponent := &models.Opponent{Name: "Erika Muster"}
	assert.NoError(t, database.Create(opponent).Error)
	return client, opponent
}
