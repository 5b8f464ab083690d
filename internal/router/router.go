// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/handler"
	"github.com/iliyamo/train-seat-reservation/internal/metrics"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers /v1/auth/register, /v1/auth/login and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterTrains registers the public train endpoints and the admin
// upsert. Search responses are cached in Redis when rdb is set.
func RegisterTrains(e *echo.Echo, t *handler.TrainHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/trains/search", t.Search, middleware.NewRedisCache(cacheCfg, rdb))
	e.GET("/v1/trains/:id", t.Get)

	admin := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.PUT("/trains", t.Upsert)
}

// RegisterTickets registers booking and cancellation for signed-in users.
// Writes go through the token bucket limiter.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Per-route middleware: a "/v1" group would also claim unknown /v1 paths.
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	}
	limited := append(auth[:len(auth):len(auth)], middleware.NewTokenBucket(rlCfg, rdb))

	e.POST("/v1/trains/:id/bookings", h.Book, limited...)
	e.GET("/v1/my-tickets", h.List, auth...)
	e.DELETE("/v1/my-tickets/:id", h.Cancel, limited...)
}
