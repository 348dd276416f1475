package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type CommentService struct {
	App core.App
}

func NewCommentService(app core.App) *CommentService {
	return &CommentService{App: app}
}

// AddComment appends a comment by the user to the event.
func (s *CommentService) AddComment(ctx context.Context, eventID, userID int64, text string) (*models.Comment, error) {
	text, err := models.CommentInput{Text: text}.Validate()
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:      text,
		CreatedAt: types.NowDateTime(),
		UserID:    userID,
		EventID:   eventID,
	}

	err = s.App.RunInTransaction(func(txApp core.App) error {
		tx := txApp.DB()

		if _, err := getEvent(ctx, tx, eventID); err != nil {
			return err
		}

		err := tx.Select("name").
			From("users").
			Where(dbx.HashExp{"id": userID}).
			WithContext(ctx).
			Row(&comment.Author)
		if errors.Is(err, sql.ErrNoRows) {
			return status.NewNotFoundError("user", userID)
		}
		if err != nil {
			return fmt.Errorf("failed to load comment author: %w", err)
		}

		result, err := tx.Insert("comments", dbx.Params{
			"text":       comment.Text,
			"created_at": comment.CreatedAt,
			"user_id":    userID,
			"event_id":   eventID,
		}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		comment.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// ListForEvent returns the event's comments, newest first.
func (s *CommentService) ListForEvent(ctx context.Context, eventID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.App.DB().NewQuery(`
		SELECT c.id AS id, c.text AS text, c.created_at AS created_at,
			c.user_id AS user_id, c.event_id AS event_id, u.name AS author
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.event_id = {:event_id}
		ORDER BY c.created_at DESC, c.id DESC
	`).Bind(dbx.Params{"event_id": eventID}).WithContext(ctx).All(&comments)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
