package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/security"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

type CredentialService struct {
	App        core.App
	BcryptCost int
}

func NewCredentialService(app core.App, bcryptCost int) *CredentialService {
	return &CredentialService{App: app, BcryptCost: bcryptCost}
}

// Register validates in, checks that name and email are free and stores a new
// user with a bcrypt hash of the password.
func (s *CredentialService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	for _, unique := range []struct {
		field string
		value string
	}{
		{"name", name},
		{"email", email},
	} {
		taken, err := s.exists(ctx, dbx.HashExp{unique.field: unique.value})
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &status.DuplicateError{Field: unique.field}
		}
	}

	hash, err := security.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      strings.TrimSpace(in.Address),
		Contact:      strings.TrimSpace(in.Contact),
		Created:      types.NowDateTime(),
	}

	result, err := s.App.DB().Insert("users", dbx.Params{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"address":       user.Address,
		"contact":       user.Contact,
		"created":       user.Created,
	}).WithContext(ctx).Execute()
	if err != nil {
		// Lost a race with a concurrent registration.
		if field, ok := uniqueViolation(err, "users"); ok {
			return nil, &status.DuplicateError{Field: field}
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "name", user.Name)
	return user, nil
}

func (s *CredentialService) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	return s.findUser(ctx, dbx.HashExp{"name": name}, 0)
}

func (s *CredentialService) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findUser(ctx, dbx.HashExp{"id": id}, id)
}

func (s *CredentialService) findUser(ctx context.Context, where dbx.Expression, id int64) (*models.User, error) {
	user := &models.User{}
	err := s.App.DB().Select().
		From("users").
		Where(where).
		WithContext(ctx).
		One(user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *CredentialService) exists(ctx context.Context, where dbx.Expression) (bool, error) {
	var count int
	err := s.App.DB().Select("count(*)").
		From("users").
		Where(where).
		WithContext(ctx).
		Row(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// uniqueViolation extracts the column from SQLite's
// "UNIQUE constraint failed: table.column" message.
func uniqueViolation(err error, table string) (string, bool) {
	const marker = "UNIQUE constraint failed: "

	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	column := strings.TrimPrefix(msg[i+len(marker):], table+".")
	if j := strings.IndexAny(column, " ,)"); j >= 0 {
		column = column[:j]
	}
	return column, true
}
