package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/security"

	pbsecurity "github.com/pocketbase/pocketbase/tools/security"
	"github.com/redis/go-redis/v9"
)

const sessionTokenLength = 40

// UserFinder is the part of the credential store the session manager needs.
type UserFinder interface {
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

type sessionPayload struct {
	UserID    int64 `json:"user_id"`
	Remember  bool  `json:"remember"`
	CreatedAt int64 `json:"created_at"`
}

type SessionService struct {
	Redis       redis.Cmdable
	Users       UserFinder
	SessionTTL  time.Duration
	RememberTTL time.Duration

	tokenFn func() string
	now     func() time.Time
}

func NewSessionService(redisClient redis.Cmdable, users UserFinder, sessionTTL, rememberTTL time.Duration) *SessionService {
	return &SessionService{
		Redis:       redisClient,
		Users:       users,
		SessionTTL:  sessionTTL,
		RememberTTL: rememberTTL,
		tokenFn:     func() string { return pbsecurity.RandomString(sessionTokenLength) },
		now:         time.Now,
	}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Login checks the password of the named user and opens a session for them.
func (s *SessionService) Login(ctx context.Context, name, password string, remember bool) (*models.Session, error) {
	user, err := s.Users.FindUserByName(ctx, name)
	if errors.Is(err, status.ErrNotFound) {
		slog.Info("login failed", "reason", status.UnknownUser.String())
		return nil, &status.AuthError{Kind: status.UnknownUser}
	}
	if err != nil {
		return nil, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		slog.Info("login failed", "reason", status.BadPassword.String(), "user_id", user.ID)
		return nil, &status.AuthError{Kind: status.BadPassword}
	}

	ttl := s.SessionTTL
	if remember {
		ttl = s.RememberTTL
	}

	payload, err := json.Marshal(sessionPayload{
		UserID:    user.ID,
		Remember:  remember,
		CreatedAt: s.now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	token := s.tokenFn()
	if err := s.Redis.Set(ctx, sessionKey(token), string(payload), ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &models.Session{
		Token:     token,
		UserID:    user.ID,
		Remember:  remember,
		ExpiresIn: int64(ttl.Seconds()),
		User:      user,
	}, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Redis.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves token to its user. A nil user without error means the
// caller is anonymous.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := s.Redis.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var payload sessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		slog.Warn("discarding malformed session", "error", err)
		return nil, nil
	}

	user, err := s.Users.FindUserByID(ctx, payload.UserID)
	if errors.Is(err, status.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
