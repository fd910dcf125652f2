package handlers

import (
	"net/http"
	"time"

	"kanzlei_app_go/db"
	"kanzlei_app_go/middleware"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the payload for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates a user and issues a session cookie
func LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	services.LogAuditEvent(db.DB, services.AuditContext{
		UserID: user.ID, UserName: user.Name, UserRole: user.Role,
		IPAddress: c.RealIP(), UserAgent: c.Request().UserAgent(),
	}, models.AuditActionLogin, "User", user.ID, user.Email, "User logged in", nil, nil)

	return c.JSON(http.StatusOK, user)
}

// LogoutHandler deletes the current session
func LogoutHandler(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err == nil {
		services.DeleteSession(db.DB, cookie.Value)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
			models.AuditActionLogout, "User", user.ID, user.Email, "User logged out", nil, nil)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the authenticated user
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, user)
}
