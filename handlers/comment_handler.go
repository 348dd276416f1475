package handlers

import (
	"net/http"

	"event-ticketing/models"

	"github.com/labstack/echo/v5"
)

type CommentHandler struct {
	comments CommentLedger
}

func NewCommentHandler(comments CommentLedger) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(c echo.Context) error {
	eventID, err := pathID(c, "event")
	if err != nil {
		return respondError(c, err)
	}

	comments, err := h.comments.ListForEvent(c.Request().Context(), eventID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"comments": comments,
	})
}

func (h *CommentHandler) Add(c echo.Context) error {
	user := currentUser(c)

	eventID, err := pathID(c, "event")
	if err != nil {
		return respondError(c, err)
	}

	var in models.CommentInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}

	comment, err := h.comments.AddComment(c.Request().Context(), eventID, user.ID, in.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Comment added",
		"comment": comment,
	})
}
