// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/flowkick/mchat-tools/internal/config"
	"github.com/flowkick/mchat-tools/internal/handler"
	"github.com/flowkick/mchat-tools/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Tools     *handler.OwnerToolHandler
	Templates *handler.OwnerTemplateHandler
	Bookings  *handler.OwnerBookingHandler
	Webhooks  *handler.OwnerWebhookHandler
	Public    *handler.BookingHandler
	Verify    *handler.VerifyHandler
}

// New builds the Echo instance with all routes and middleware
// attached. Rate limiting guards the public surface; the response
// cache sits only on the availability query, the one hot read path.
func New(cfg config.Config, rdb *redis.Client, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/health", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	registerBookingRoutes(e, h, rateLimit, cache)
	registerOwnerRoutes(e, cfg, h)
	return e
}
