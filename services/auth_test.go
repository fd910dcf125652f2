package services

import (
	"testing"
	"time"

	"kanzlei_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.User{}, &models.Session{})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	hash, err := HashPassword(password)
	assert.NoError(t, err)
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("geheim123")
	assert.NoError(t, err)
	assert.NotEqual(t, "geheim123", hash)

	assert.True(t, CheckPassword("geheim123", hash))
	assert.False(t, CheckPassword("falsch", hash))
}

func TestAuthenticate(t *testing.T) {
	db := setupAuthTestDB()
	createTestUser(t, db, "anwalt@kanzlei.de", "geheim123")

	user, err := Authenticate(db, "anwalt@kanzlei.de", "geheim123")
	assert.NoError(t, err)
	assert.Equal(t, "anwalt@kanzlei.de", user.Email)
	assert.NotNil(t, user.LastLoginAt)

	_, err = Authenticate(db, "anwalt@kanzlei.de", "falsch")
	assert.Error(t, err)

	_, err = Authenticate(db, "unbekannt@kanzlei.de", "geheim123")
	assert.Error(t, err)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	db := setupAuthTestDB()
	user := createTestUser(t, db, "alt@kanzlei.de", "geheim123")
	assert.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := Authenticate(db, "alt@kanzlei.de", "geheim123")
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	db := setupAuthTestDB()
	user := createTestUser(t, db, "anwalt@kanzlei.de", "geheim123")

	session, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)
	assert.Len(t, session.Token, 64)

	validated, err := ValidateSession(db, session.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, validated.UserID)
	assert.Equal(t, "anwalt@kanzlei.de", validated.User.Email)

	assert.NoError(t, DeleteSession(db, session.Token))
	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)
}

func TestValidateExpiredSession(t *testing.T) {
	db := setupAuthTestDB()
	user := createTestUser(t, db, "anwalt@kanzlei.de", "geheim123")

	session, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	expired := time.Now().Add(-time.Hour)
	assert.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", session.Token).
		Update("expires_at", expired).Error)

	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)

	// The expired session was deleted on validation
	var count int64
	db.Model(&models.Session{}).Where("token = ?", session.Token).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupAuthTestDB()
	user := createTestUser(t, db, "anwalt@kanzlei.de", "geheim123")

	fresh, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)
	stale, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)
	assert.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", stale.Token).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	assert.NoError(t, CleanupExpiredSessions(db))

	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = ValidateSession(db, fresh.Token)
	assert.NoError(t, err)
}
