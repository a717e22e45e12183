package router

import (
	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/config"
	"github.com/flowkick/mchat-tools/internal/middleware"
)

// registerOwnerRoutes mounts the dashboard API. Everything except the
// auth endpoints sits behind JWT.
func registerOwnerRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	owner := e.Group("/owner", middleware.JWTAuth(cfg.JWTSecret))
	owner.GET("/me", h.Auth.Me)
	owner.POST("/logout_all", h.Auth.LogoutAll)

	owner.POST("/tools", h.Tools.Create)
	owner.GET("/tools", h.Tools.List)
	owner.GET("/tools/:id", h.Tools.Get)
	owner.PUT("/tools/:id", h.Tools.Update)
	owner.DELETE("/tools/:id", h.Tools.Delete)

	owner.POST("/tools/:id/templates", h.Templates.Create)
	owner.GET("/tools/:id/templates", h.Templates.List)
	owner.PATCH("/templates/:id/active", h.Templates.SetActive)
	owner.DELETE("/templates/:id", h.Templates.Delete)

	owner.GET("/tools/:id/bookings", h.Bookings.ListByTool)
	owner.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)

	owner.POST("/webhooks", h.Webhooks.Create)
	owner.GET("/webhooks", h.Webhooks.List)
	owner.PATCH("/webhooks/:id/active", h.Webhooks.SetActive)
	owner.DELETE("/webhooks/:id", h.Webhooks.Delete)
}
