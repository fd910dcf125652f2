package middleware

import (
	"net/http"

	"kanzlei_app_go/db"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "kanzlei_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

// RequireAuth is middleware that requires a valid session. Anonymous
// callers are denied every action.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}

			if !session.User.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "Account is disabled")
			}

			c.Set(ContextKeyUser, &session.User)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// RequirePermission is middleware that consults the access matrix for the
// given action. Callers without a resolvable role are denied.
func RequirePermission(action services.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			if !services.Allowed(user.Role, action, user.IsStaff) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// AuditContextFrom builds the audit context for the current request
func AuditContextFrom(c echo.Context) services.AuditContext {
	ctx := services.AuditContext{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if user := GetCurrentUser(c); user != nil {
		ctx.UserID = user.ID
		ctx.UserName = user.Name
		ctx.UserRole = user.Role
	}
	return ctx
}
