package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Deps collects what the /v1 routes need.  Redis may be nil, in which
// case caching and rate limiting are skipped.
type Deps struct {
	JWTSecret    string
	Redis        *redis.Client
	Cache        config.CacheConfig
	RateLimit    config.RateLimitConfig
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Tables       *handler.TableHandler
}

// RegisterRoutes registers the unauthenticated health endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterV1 mounts the API under /v1.  The rate limiter runs first, and
// on the staff group it runs after JWTAuth so the key can include the
// staff ID.
func RegisterV1(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	invalidate := middleware.InvalidateOnWrite(d.Cache, d.Redis)

	// Unauthenticated: staff sign-in and guest booking.  Sign-up only
	// ever creates HOST accounts.
	pub := e.Group("/v1", limit)
	pub.POST("/auth/register", d.Auth.Register)
	pub.POST("/auth/login", d.Auth.Login)
	pub.POST("/auth/refresh", d.Auth.Refresh)
	pub.POST("/auth/logout", d.Auth.Logout)
	pub.POST("/reservations", d.Reservations.Create, invalidate)

	staff := e.Group("/v1",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleHost, model.RoleManager),
		limit,
	)
	staff.GET("/me", d.Auth.Me)
	staff.POST("/staff", d.Auth.CreateStaff, middleware.RequireRole(model.RoleManager))

	staff.GET("/reservations", d.Reservations.List, cache)
	staff.GET("/reservations/:id", d.Reservations.Get, cache)
	staff.PUT("/reservations/:id", d.Reservations.Update, invalidate)
	staff.PUT("/reservations/:id/status", d.Reservations.UpdateStatus, invalidate)

	staff.GET("/tables", d.Tables.List, cache)
	staff.GET("/tables/:id", d.Tables.Get, cache)
	staff.PUT("/tables/:id/seat", d.Tables.Seat, invalidate)
	staff.DELETE("/tables/:id/seat", d.Tables.Finish, invalidate)
	staff.POST("/tables", d.Tables.Create, middleware.RequireRole(model.RoleManager), invalidate)
}
