package security

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"event-ticketing/models"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// UserContextKey is where the session middleware stores the current
// models.Identity on the echo context.
const UserContextKey = "user"

type RateLimiter struct {
	redis redis.Cmdable
	now   func() time.Time
}

func NewRateLimiter(redisClient redis.Cmdable) *RateLimiter {
	return &RateLimiter{redis: redisClient, now: time.Now}
}

// Limit allows perMinute requests per identity (or per client IP for
// anonymous callers) within each one-minute window. scope separates the
// counters of independently limited route groups.
func (r *RateLimiter) Limit(scope string, perMinute int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store(scope, perMinute, time.Minute),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, ok := c.Get(UserContextKey).(models.Identity); ok && id != nil {
				return fmt.Sprintf("user:%d", id.IdentityID()), nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Unable to identify client",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			slog.Warn("rate limit exceeded", "scope", scope, "identifier", identifier)
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

func (r *RateLimiter) store(scope string, limit int, window time.Duration) *redisStore {
	return &redisStore{
		redis:  r.redis,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		now:    r.now,
	}
}

// redisStore is a fixed-window counter shared by every server instance.
type redisStore struct {
	redis  redis.Cmdable
	scope  string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func (s *redisStore) key(identifier string) string {
	bucket := s.now().Truncate(s.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.scope, identifier, bucket)
}

// Allow fails open when Redis is unavailable.
func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := s.key(identifier)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", "scope", s.scope, "error", err)
		return true, nil
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.window).Err(); err != nil {
			slog.Warn("failed to set rate limit window", "key", key, "error", err)
		}
	}

	return count <= s.limit, nil
}

// AntiBotMiddleware rejects self-declared crawlers and scrapers before they
// reach the purchase flow.
func (r *RateLimiter) AntiBotMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSuspiciousUserAgent(c.Request().Header.Get("User-Agent")) {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "Access denied",
				})
			}
			return next(c)
		}
	}
}

func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
