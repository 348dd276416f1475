package handlers

import (
	"errors"
	"net/http"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/labstack/echo/v5"
)

// APIHandler is the JSON CRUD surface under /api/events.
type APIHandler struct {
	events EventCatalog
}

func NewAPIHandler(events EventCatalog) *APIHandler {
	return &APIHandler{events: events}
}

func (h *APIHandler) List(c echo.Context) error {
	events, err := h.events.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events})
}

func (h *APIHandler) Create(c echo.Context) error {
	user := currentUser(c)

	var in models.EventInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}
	if in.IsEmpty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No input data provided!"})
	}

	event, err := h.events.Create(c.Request().Context(), in, user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Successfully created new event!",
		"event":   event,
	})
}

func (h *APIHandler) Update(c echo.Context) error {
	user := currentUser(c)

	id, err := pathID(c, "event")
	if err != nil {
		return eventNotFound(c)
	}

	var in models.EventInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}
	if in.IsEmpty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No input data provided!"})
	}

	event, err := h.events.Update(c.Request().Context(), id, in, user.ID)
	if errors.Is(err, status.ErrNotFound) {
		return eventNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Record updated!",
		"event":   event,
	})
}

func (h *APIHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "event")
	if err != nil {
		return eventNotFound(c)
	}

	err = h.events.Delete(c.Request().Context(), id)
	if errors.Is(err, status.ErrNotFound) {
		return eventNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Record deleted!"})
}

func eventNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Event not found!"})
}
