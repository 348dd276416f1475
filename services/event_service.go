package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type EventService struct {
	App core.App
}

func NewEventService(app core.App) *EventService {
	return &EventService{App: app}
}

// Create validates in and stores a new event whose capacity equals its
// initial ticket amount.
func (s *EventService) Create(ctx context.Context, in models.EventInput, createdBy int64) (*models.Event, error) {
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if fields.Status == "" {
		fields.Status = models.EventStatusOpen
	}

	now := types.NowDateTime()
	result, err := s.App.DB().Insert("events", dbx.Params{
		"name":            fields.Name,
		"location":        fields.Location,
		"date":            fields.Date,
		"time":            fields.Time,
		"ticket_price":    fields.TicketPrice,
		"ticket_amount":   fields.TicketAmount,
		"ticket_capacity": fields.TicketAmount,
		"description":     fields.Description,
		"genre":           fields.Genre,
		"status":          fields.Status,
		"created_by":      createdBy,
		"created":         now,
		"updated":         now,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read event id: %w", err)
	}

	slog.Info("event created", "event_id", id, "name", fields.Name, "tickets", fields.TicketAmount, "created_by", createdBy)
	return s.Get(ctx, id)
}

// Search yields events whose name, genre or description contain term, ignoring
// case. A blank term yields every event. Each range over the result runs the
// query again. The database connection is held until the range ends, so the
// loop body must not query the database itself.
func (s *EventService) Search(ctx context.Context, term string) iter.Seq2[models.Event, error] {
	term = strings.TrimSpace(term)

	return func(yield func(models.Event, error) bool) {
		q := s.App.DB().Select().From("events")
		if term != "" {
			q = q.Where(containsAny(term, "name", "genre", "description"))
		}

		rows, err := q.OrderBy("date DESC", "time DESC", "id DESC").WithContext(ctx).Rows()
		if err != nil {
			yield(models.Event{}, fmt.Errorf("failed to search events: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var event models.Event
			if err := rows.ScanStruct(&event); err != nil {
				yield(models.Event{}, fmt.Errorf("failed to scan event: %w", err))
				return
			}
			event.SoldOut = event.IsSoldOut()
			if !yield(event, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Event{}, err)
		}
	}
}

// List returns every event, latest date first.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := s.App.DB().Select().
		From("events").
		OrderBy("date DESC", "time DESC", "id DESC").
		WithContext(ctx).
		All(&events)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range events {
		events[i].SoldOut = events[i].IsSoldOut()
	}
	return events, nil
}

// likeEscaper escapes LIKE wildcards with a backslash; the matching
// expression must declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsAny matches rows where any of the columns contains term, ignoring
// ASCII case. % and _ in term match themselves.
func containsAny(term string, columns ...string) dbx.Expression {
	params := dbx.Params{"term": "%" + likeEscaper.Replace(term) + "%"}

	exprs := make([]dbx.Expression, 0, len(columns))
	for _, column := range columns {
		exprs = append(exprs, dbx.NewExp("[["+column+"]] LIKE {:term} ESCAPE '\\'", params))
	}
	return dbx.Or(exprs...)
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	return getEvent(ctx, s.App.DB(), id)
}

func getEvent(ctx context.Context, db dbx.Builder, id int64) (*models.Event, error) {
	event := &models.Event{}
	err := db.Select().
		From("events").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(event)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.NewNotFoundError("event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	event.SoldOut = event.IsSoldOut()
	return event, nil
}

// Update overwrites the event's fields. Blank name, genre and status keep
// their current values. A new ticket_amount moves the capacity with it so
// that capacity minus amount still counts the tickets already sold.
func (s *EventService) Update(ctx context.Context, id int64, in models.EventInput, actorID int64) (*models.Event, error) {
	if in.IsEmpty() {
		return nil, status.NewValidationError("", "no input data provided")
	}

	err := s.App.RunInTransaction(func(txApp core.App) error {
		tx := txApp.DB()

		current, err := getEvent(ctx, tx, id)
		if err != nil {
			return err
		}

		if strings.TrimSpace(in.Name) == "" {
			in.Name = current.Name
		}
		if strings.TrimSpace(in.Genre) == "" {
			in.Genre = current.Genre
		}
		if in.Status == "" {
			in.Status = current.Status
		}

		fields, err := in.Validate()
		if err != nil {
			return err
		}

		sold := current.Sold()
		_, err = tx.Update("events", dbx.Params{
			"name":            fields.Name,
			"location":        fields.Location,
			"date":            fields.Date,
			"time":            fields.Time,
			"ticket_price":    fields.TicketPrice,
			"ticket_amount":   fields.TicketAmount,
			"ticket_capacity": fields.TicketAmount + sold,
			"description":     fields.Description,
			"genre":           fields.Genre,
			"status":          fields.Status,
			"updated":         types.NowDateTime(),
		}, dbx.HashExp{"id": id}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("failed to update event %d: %w", id, err)
		}

		if fields.TicketAmount != current.TicketAmount {
			slog.Warn("event inventory overwritten",
				"event_id", id,
				"actor_id", actorID,
				"old_amount", current.TicketAmount,
				"new_amount", fields.TicketAmount,
				"sold", sold,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes an event and its comments. Events with purchases are kept.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	return s.App.RunInTransaction(func(txApp core.App) error {
		tx := txApp.DB()

		if _, err := getEvent(ctx, tx, id); err != nil {
			return err
		}

		var purchases int
		err := tx.Select("count(*)").
			From("purchases").
			Where(dbx.HashExp{"event_id": id}).
			WithContext(ctx).
			Row(&purchases)
		if err != nil {
			return fmt.Errorf("failed to count purchases: %w", err)
		}
		if purchases > 0 {
			return &status.ConflictError{
				Message: fmt.Sprintf("event %d has %d purchased tickets", id, purchases),
			}
		}

		if _, err := tx.Delete("comments", dbx.HashExp{"event_id": id}).WithContext(ctx).Execute(); err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if _, err := tx.Delete("events", dbx.HashExp{"id": id}).WithContext(ctx).Execute(); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}

		slog.Info("event deleted", "event_id", id)
		return nil
	})
}

// AttachImage records the storage key of the event's image.
func (s *EventService) AttachImage(ctx context.Context, id int64, key string) error {
	result, err := s.App.DB().Update("events", dbx.Params{
		"image":   key,
		"updated": types.NowDateTime(),
	}, dbx.HashExp{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to attach image: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return status.NewNotFoundError("event", id)
	}
	return nil
}
