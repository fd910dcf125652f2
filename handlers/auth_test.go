package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"kanzlei_app_go/middleware"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	database := setupTestDB(t)

	hash, err := services.HashPassword("geheim123")
	assert.NoError(t, err)
	user := &models.User{
		Name:     "Anwalt",
		Email:    "anwalt@kanzlei.de",
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	assert.NoError(t, database.Create(user).Error)

	t.Run("Success", func(t *testing.T) {
		body := `{"email":"anwalt@kanzlei.de","password":"geheim123"}`
		_, c, rec := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		assert.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		var sessionCookie *http.Cookie
		for _, cookie := range cookies {
			if cookie.Name == middleware.SessionCookieName {
				sessionCookie = cookie
			}
		}
		assert.NotNil(t, sessionCookie)
		assert.NotEmpty(t, sessionCookie.Value)
		assert.True(t, sessionCookie.HttpOnly)

		// The password hash never leaves the server
		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		_, exposed := resp["password"]
		assert.False(t, exposed)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		body := `{"email":"anwalt@kanzlei.de","password":"falsch"}`
		_, c, _ := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		err := LoginHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	database := setupTestDB(t)

	hash, err := services.HashPassword("geheim123")
	assert.NoError(t, err)
	user := &models.User{
		Name: "Anwalt", Email: "anwalt@kanzlei.de", Password: hash,
		Role: models.RoleUser, IsActive: true,
	}
	assert.NoError(t, database.Create(user).Error)

	session, err := services.CreateSession(database, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	_, c, rec := setupEcho(http.MethodPost, "/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session.Token})

	assert.NoError(t, LogoutHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = services.ValidateSession(database, session.Token)
	assert.Error(t, err)
}

func TestGetCurrentUserHandler(t *testing.T) {
	setupTestDB(t)

	t.Run("Authenticated", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/me", nil)
		c.Set(middleware.ContextKeyUser, &models.User{ID: "user-1", Name: "Anwalt"})

		assert.NoError(t, GetCurrentUserHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Anwalt")
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/me", nil)

		err := GetCurrentUserHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
