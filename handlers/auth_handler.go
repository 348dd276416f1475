package handlers

import (
	"errors"
	"net/http"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/monitoring"

	"github.com/labstack/echo/v5"
)

type AuthHandler struct {
	credentials  CredentialStore
	sessions     SessionManager
	monitor      *monitoring.Monitor
	secureCookie bool
}

func NewAuthHandler(credentials CredentialStore, sessions SessionManager, monitor *monitoring.Monitor, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		credentials:  credentials,
		sessions:     sessions,
		monitor:      monitor,
		secureCookie: secureCookie,
	}
}

type formField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// LoginForm describes the fields POST /login accepts.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"heading": "Login",
		"fields": []formField{
			{Name: "user_name", Type: "text", Required: true},
			{Name: "password", Type: "password", Required: true},
			{Name: "remember_me", Type: "checkbox"},
		},
	})
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"heading": "Register",
		"fields": []formField{
			{Name: "user_name", Type: "text", Required: true},
			{Name: "email_id", Type: "email", Required: true},
			{Name: "password", Type: "password", Required: true},
			{Name: "confirm", Type: "password", Required: true},
			{Name: "address_id", Type: "text"},
			{Name: "contact_id", Type: "tel"},
		},
	})
}

// loginResult labels a failed login by the factor that failed. Anything
// that is not a credential mismatch counts as "error".
func loginResult(err error) string {
	var authErr *status.AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind.String()
	}
	return "error"
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in models.LoginInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	session, err := h.sessions.Login(c.Request().Context(), in.Name, in.Password, in.Remember)
	if err != nil {
		h.monitor.TrackLogin(loginResult(err))
		return respondError(c, err)
	}
	h.monitor.TrackLogin("success")

	// Without remember-me the cookie lives only as long as the browser session.
	maxAge := 0
	if session.Remember {
		maxAge = int(session.ExpiresIn)
	}
	setSessionCookie(c, session.Token, maxAge, h.secureCookie)

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"session": session,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var in models.RegisterInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}

	user, err := h.credentials.Register(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Registration successful, please log in",
		"user":    user,
	})
}

// Logout succeeds for unknown and missing tokens alike.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), sessionToken(c)); err != nil {
		return respondError(c, err)
	}
	clearSessionCookie(c, h.secureCookie)

	return c.JSON(http.StatusOK, map[string]string{"message": "You have been logged out"})
}
