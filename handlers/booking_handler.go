package handlers

import (
	"log/slog"
	"net/http"

	"event-ticketing/models"

	"github.com/labstack/echo/v5"
)

type BookingHandler struct {
	purchases PurchaseEngine
}

func NewBookingHandler(purchases PurchaseEngine) *BookingHandler {
	return &BookingHandler{purchases: purchases}
}

// Checkout prices the requested quantity without buying anything.
func (h *BookingHandler) Checkout(c echo.Context) error {
	eventID, err := pathID(c, "event")
	if err != nil {
		return respondError(c, err)
	}

	var in models.PurchaseInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}

	quote, err := h.purchases.Quote(c.Request().Context(), eventID, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"quote": quote})
}

// ConfirmPurchase buys the tickets and reports every ticket the user now holds
// for the event.
func (h *BookingHandler) ConfirmPurchase(c echo.Context) error {
	user := currentUser(c)
	ctx := c.Request().Context()

	eventID, err := pathID(c, "event")
	if err != nil {
		return respondError(c, err)
	}

	var in models.PurchaseInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, bindError())
	}

	receipt, err := h.purchases.Purchase(ctx, eventID, user.ID, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	// The purchase is committed at this point; a failed lookup only shrinks
	// the ticket list to what this purchase created.
	tickets, err := h.purchases.TicketsForUserEvent(ctx, user.ID, eventID)
	if err != nil {
		slog.Error("failed to list tickets after purchase",
			"error", err, "user_id", user.ID, "event_id", eventID, "reference", receipt.Reference)
		tickets = receipt.PurchaseIDs
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Purchase confirmed",
		"receipt": receipt,
		"tickets": tickets,
	})
}

// Bookings lists the caller's tickets. No bookings is an empty list, not an
// error.
func (h *BookingHandler) Bookings(c echo.Context) error {
	user := currentUser(c)

	bookings, err := h.purchases.ListBookingsForUser(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(bookings),
		"bookings": bookings,
	})
}
