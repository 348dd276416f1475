package handlers

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/security"

	"github.com/labstack/echo/v5"
)

// The interfaces below are the slices of the services each handler uses.

type CredentialStore interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
}

type SessionManager interface {
	Login(ctx context.Context, name, password string, remember bool) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type EventCatalog interface {
	Create(ctx context.Context, in models.EventInput, createdBy int64) (*models.Event, error)
	Search(ctx context.Context, term string) iter.Seq2[models.Event, error]
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Update(ctx context.Context, id int64, in models.EventInput, actorID int64) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	AttachImage(ctx context.Context, id int64, key string) error
}

type PurchaseEngine interface {
	Purchase(ctx context.Context, eventID, userID int64, quantity int) (*models.Receipt, error)
	Quote(ctx context.Context, eventID int64, quantity int) (*models.Quote, error)
	ListBookingsForUser(ctx context.Context, userID int64) ([]models.Booking, error)
	TicketsForUserEvent(ctx context.Context, userID, eventID int64) ([]int64, error)
}

type CommentLedger interface {
	AddComment(ctx context.Context, eventID, userID int64, text string) (*models.Comment, error)
	ListForEvent(ctx context.Context, eventID int64) ([]models.Comment, error)
}

type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Delete(key string) error
	Serve(w http.ResponseWriter, r *http.Request, key string) error
}

// respondError maps service errors onto HTTP responses. Unexpected errors are
// logged and reported without detail.
func respondError(c echo.Context, err error) error {
	var (
		validationErr *status.ValidationError
		inventoryErr  *status.InsufficientInventoryError
		duplicateErr  *status.DuplicateError
		conflictErr   *status.ConflictError
		notFoundErr   *status.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		body := map[string]string{"error": validationErr.Message}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, status.ErrUnsupportedImage):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Only png, jpg and jpeg images are supported",
			"field": "image",
		})
	case errors.Is(err, status.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
	case errors.Is(err, status.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Please log in first"})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFoundErr.Entity + " not found"})
	case errors.As(err, &duplicateErr):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": duplicateErr.Field + " is already registered",
			"field": duplicateErr.Field,
		})
	case errors.As(err, &inventoryErr):
		return c.JSON(http.StatusConflict, map[string]any{
			"error":     "Not enough tickets available",
			"requested": inventoryErr.Requested,
			"available": inventoryErr.Available,
		})
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusConflict, map[string]string{"error": conflictErr.Message})
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func bindError() error {
	return status.NewValidationError("", "invalid request body")
}

// pathID parses the :id segment. Anything that is not a positive integer
// cannot name a stored row.
func pathID(c echo.Context, entity string) (int64, error) {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, status.NewNotFoundError(entity, 0)
	}
	return id, nil
}

func currentUser(c echo.Context) *models.User {
	user, _ := c.Get(security.UserContextKey).(*models.User)
	return user
}
