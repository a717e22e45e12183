package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness. Kept deliberately dependency-free so it
// answers even when MySQL or Redis are down.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
