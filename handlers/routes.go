package handlers

import (
	"event-ticketing/monitoring"
	"event-ticketing/security"

	"github.com/labstack/echo/v5"
)

type Dependencies struct {
	Credentials CredentialStore
	Sessions    SessionManager
	Events      EventCatalog
	Purchases   PurchaseEngine
	Comments    CommentLedger
	Images      ImageStore
	Monitor     *monitoring.Monitor
	Checks      map[string]HealthCheck

	// Limiter is optional; without it no rate limits apply.
	Limiter                 *security.RateLimiter
	RateLimitPerMinute      int
	LoginRateLimitPerMinute int

	SecureCookies bool
}

// RegisterRoutes mounts every endpoint on e. Sessions are resolved for all
// routes; RequireAuth guards the ones that act on behalf of a user.
func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	auth := NewAuthHandler(deps.Credentials, deps.Sessions, deps.Monitor, deps.SecureCookies)
	events := NewEventHandler(deps.Events, deps.Comments, deps.Images)
	booking := NewBookingHandler(deps.Purchases)
	comments := NewCommentHandler(deps.Comments)
	api := NewAPIHandler(deps.Events)
	health := NewHealthHandler(deps.Checks)

	e.Use(SessionMiddleware(deps.Sessions))

	var (
		loginLimit    []echo.MiddlewareFunc
		purchaseGuard []echo.MiddlewareFunc
	)
	if deps.Limiter != nil {
		e.Use(deps.Limiter.Limit("global", deps.RateLimitPerMinute))
		loginLimit = append(loginLimit, deps.Limiter.Limit("login", deps.LoginRateLimitPerMinute))
		purchaseGuard = append(purchaseGuard, deps.Limiter.AntiBotMiddleware())
	}

	// Catalog
	e.GET("/", events.Index)
	e.GET("/search", events.Search)
	e.GET("/uploads/:key", events.Image)
	e.GET("/health", health.Health)

	// Accounts
	e.GET("/login", auth.LoginForm)
	e.POST("/login", auth.Login, loginLimit...)
	e.GET("/register", auth.RegisterForm)
	e.POST("/register", auth.Register, loginLimit...)
	e.GET("/logout", auth.Logout)

	// Events, tickets and comments
	g := e.Group("/event")
	g.GET("/details/:id", events.Details)
	g.GET("/create", events.CreateForm, RequireAuth)
	g.POST("/create", events.Create, RequireAuth)
	g.POST("/checkout/:id", booking.Checkout, RequireAuth)
	g.POST("/confirm_purchase/:id", booking.ConfirmPurchase, append([]echo.MiddlewareFunc{RequireAuth}, purchaseGuard...)...)
	g.GET("/bookings", booking.Bookings, RequireAuth)
	g.GET("/:id/comment", comments.List, RequireAuth)
	g.POST("/:id/comment", comments.Add, RequireAuth)

	// JSON API
	a := e.Group("/api")
	a.GET("/events", api.List)
	a.POST("/events", api.Create, RequireAuth)
	a.PUT("/events/:id", api.Update, RequireAuth)
	a.DELETE("/events/:id", api.Delete, RequireAuth)
}
