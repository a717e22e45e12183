package router

import (
	"github.com/labstack/echo/v4"
)

// registerBookingRoutes mounts the public surface the Manychat bot
// talks to. No auth; the rate limiter is the only gate.
func registerBookingRoutes(e *echo.Echo, h Handlers, rateLimit, cache echo.MiddlewareFunc) {
	b := e.Group("/bookings", rateLimit)
	b.GET("/availability", h.Public.Availability, cache)
	b.POST("/create", h.Public.Create)
	b.GET("/list", h.Public.List)

	e.GET("/tools", h.Public.ListTools, rateLimit, cache)

	v := e.Group("/verify", rateLimit)
	v.POST("/issue", h.Verify.Issue)
	v.POST("/confirm", h.Verify.Confirm)
	v.GET("/status", h.Verify.Status)
}
