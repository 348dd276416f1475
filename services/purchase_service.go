package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/monitoring"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

const publishTimeout = 2 * time.Second

type PurchaseService struct {
	App       core.App
	Publisher *InventoryPublisher
	Monitor   *monitoring.Monitor
}

func NewPurchaseService(app core.App, publisher *InventoryPublisher, monitor *monitoring.Monitor) *PurchaseService {
	return &PurchaseService{App: app, Publisher: publisher, Monitor: monitor}
}

// Purchase buys quantity tickets of the event for the user. The inventory
// check, the decrement and the purchase rows commit together or not at all.
func (s *PurchaseService) Purchase(ctx context.Context, eventID, userID int64, quantity int) (*models.Receipt, error) {
	start := time.Now()
	receipt, err := s.purchase(ctx, eventID, userID, quantity)
	s.Monitor.TrackPurchase(purchaseStatus(err), quantity, time.Since(start))
	if err != nil {
		return nil, err
	}

	slog.Info("tickets purchased",
		"reference", receipt.Reference,
		"event_id", eventID,
		"user_id", userID,
		"quantity", quantity,
		"remaining", receipt.Remaining,
	)

	monitoring.SetInventory(eventID, receipt.Remaining)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	// Failures are logged by the publisher; the purchase already committed.
	_ = s.Publisher.PublishInventory(pubCtx, eventID, receipt.Remaining)

	return receipt, nil
}

func (s *PurchaseService) purchase(ctx context.Context, eventID, userID int64, quantity int) (*models.Receipt, error) {
	if err := models.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	receipt := &models.Receipt{
		Reference: uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Quantity:  quantity,
	}

	// The transaction runs on the app's single-connection writer pool, so
	// concurrent purchases queue up behind each other.
	err := s.App.RunInTransaction(func(txApp core.App) error {
		tx := txApp.DB()

		event, err := getEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		now := types.NowDateTime()

		// Compare-and-swap on the remaining amount. Zero affected rows means
		// another purchase got there first or there were never enough tickets.
		result, err := tx.NewQuery(`
			UPDATE events
			SET ticket_amount = ticket_amount - {:quantity}, updated = {:updated}
			WHERE id = {:id} AND ticket_amount >= {:quantity}
		`).Bind(dbx.Params{
			"quantity": quantity,
			"updated":  now,
			"id":       eventID,
		}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("failed to reserve tickets: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &status.InsufficientInventoryError{
				EventID:   eventID,
				Requested: quantity,
				Available: event.TicketAmount,
			}
		}

		receipt.PurchaseIDs = make([]int64, 0, quantity)
		for i := 0; i < quantity; i++ {
			result, err := tx.Insert("purchases", dbx.Params{
				"user_id":       userID,
				"event_id":      eventID,
				"purchase_date": now,
			}).WithContext(ctx).Execute()
			if err != nil {
				return fmt.Errorf("failed to record purchase: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return err
			}
			receipt.PurchaseIDs = append(receipt.PurchaseIDs, id)
		}

		receipt.UnitPrice = event.TicketPrice
		receipt.Total = event.TicketPrice.Mul(decimal.NewFromInt(int64(quantity)))
		receipt.Remaining = event.TicketAmount - quantity
		receipt.PurchasedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// Quote prices a purchase without reserving anything.
func (s *PurchaseService) Quote(ctx context.Context, eventID int64, quantity int) (*models.Quote, error) {
	if err := models.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	event, err := getEvent(ctx, s.App.DB(), eventID)
	if err != nil {
		return nil, err
	}
	if event.TicketAmount < quantity {
		return nil, &status.InsufficientInventoryError{
			EventID:   eventID,
			Requested: quantity,
			Available: event.TicketAmount,
		}
	}

	return &models.Quote{
		EventID:   event.ID,
		EventName: event.Name,
		Quantity:  quantity,
		UnitPrice: event.TicketPrice,
		Total:     event.TicketPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Available: event.TicketAmount,
	}, nil
}

// ListBookingsForUser returns the user's tickets, most recent first. A user
// without purchases gets an empty slice.
func (s *PurchaseService) ListBookingsForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.App.DB().NewQuery(`
		SELECT
			p.id            AS purchase_id,
			p.purchase_date AS purchase_date,
			e.id            AS event_id,
			e.name          AS event_name,
			e.description   AS description,
			e.date          AS date,
			e.location      AS location,
			e.image         AS image
		FROM purchases p
		INNER JOIN events e ON e.id = p.event_id
		WHERE p.user_id = {:user_id}
		ORDER BY p.purchase_date DESC, p.id DESC
	`).Bind(dbx.Params{"user_id": userID}).WithContext(ctx).All(&bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// TicketsForUserEvent lists the purchase ids the user holds for one event.
func (s *PurchaseService) TicketsForUserEvent(ctx context.Context, userID, eventID int64) ([]int64, error) {
	ids := []int64{}
	err := s.App.DB().Select("id").
		From("purchases").
		Where(dbx.HashExp{"user_id": userID, "event_id": eventID}).
		OrderBy("id ASC").
		WithContext(ctx).
		Column(&ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return ids, nil
}

func purchaseStatus(err error) string {
	switch {
	case err == nil:
		return monitoring.PurchaseSuccess
	case errors.Is(err, status.ErrInsufficientInventory):
		return monitoring.PurchaseInsufficient
	case errors.Is(err, status.ErrValidation):
		return monitoring.PurchaseInvalid
	case errors.Is(err, status.ErrNotFound):
		return monitoring.PurchaseNotFound
	default:
		return monitoring.PurchaseError
	}
}
