package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"event-ticketing/models"
	"event-ticketing/services"

	"github.com/labstack/echo/v5"
)

type EventHandler struct {
	events   EventCatalog
	comments CommentLedger
	images   ImageStore
}

func NewEventHandler(events EventCatalog, comments CommentLedger, images ImageStore) *EventHandler {
	return &EventHandler{events: events, comments: comments, images: images}
}

// Index lists every event.
func (h *EventHandler) Index(c echo.Context) error {
	events, err := h.events.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events})
}

func (h *EventHandler) Search(c echo.Context) error {
	term := c.QueryParam("search")

	events := []models.Event{}
	for event, err := range h.events.Search(c.Request().Context(), term) {
		if err != nil {
			return respondError(c, err)
		}
		events = append(events, event)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"search": term,
		"count":  len(events),
		"events": events,
	})
}

func (h *EventHandler) CreateForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"heading":             "Create Event",
		"allowed_image_types": services.AllowedImageExtensions,
		"statuses": []string{
			models.EventStatusOpen,
			models.EventStatusInactive,
			models.EventStatusSoldOut,
			models.EventStatusCancelled,
		},
	})
}

// Create stores a new event from a JSON body or a (multipart) form. An image
// is stored first so that a rejected upload leaves no event behind.
func (h *EventHandler) Create(c echo.Context) error {
	user := currentUser(c)
	ctx := c.Request().Context()

	var in models.EventInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}

	imageKey, err := h.saveImage(c)
	if err != nil {
		return respondError(c, err)
	}

	event, err := h.events.Create(ctx, in, user.ID)
	if err != nil {
		h.discardImage(imageKey)
		return respondError(c, err)
	}

	if imageKey != "" {
		if err := h.events.AttachImage(ctx, event.ID, imageKey); err != nil {
			h.discardImage(imageKey)
			return respondError(c, err)
		}
		event.Image = imageKey
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Successfully created new event!",
		"event":   event,
	})
}

func (h *EventHandler) saveImage(c echo.Context) (string, error) {
	if h.images == nil {
		return "", nil
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return h.images.Save(fh)
}

func (h *EventHandler) discardImage(key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(key); err != nil {
		slog.Warn("failed to remove orphaned image", "key", key, "error", err)
	}
}

// Details returns the event together with its comments.
func (h *EventHandler) Details(c echo.Context) error {
	id, err := pathID(c, "event")
	if err != nil {
		return respondError(c, err)
	}

	event, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	comments, err := h.comments.ListForEvent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event":    event,
		"comments": comments,
	})
}

// Image serves a stored event image.
func (h *EventHandler) Image(c echo.Context) error {
	if h.images == nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := h.images.Serve(c.Response(), c.Request(), c.PathParam("key")); err != nil {
		return respondError(c, err)
	}
	return nil
}
