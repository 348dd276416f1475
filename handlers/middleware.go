package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"event-ticketing/internal/status"
	"event-ticketing/security"

	"github.com/labstack/echo/v5"
)

const SessionCookieName = "session"

// sessionToken reads the token from the session cookie, falling back to an
// Authorization: Bearer header.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SessionMiddleware resolves the caller's session. Requests without a valid
// session continue anonymously.
func SessionMiddleware(sessions SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return next(c)
			}

			user, err := sessions.CurrentUser(c.Request().Context(), token)
			if err != nil {
				slog.Warn("failed to resolve session", "error", err)
				return next(c)
			}
			if user != nil {
				c.Set(security.UserContextKey, user)
			}
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return respondError(c, status.ErrUnauthenticated)
		}
		return next(c)
	}
}

func setSessionCookie(c echo.Context, token string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, secure bool) {
	setSessionCookie(c, "", -1, secure)
}
