// Package handler contains the Echo HTTP handlers: the public booking
// and verification endpoints consumed by the Manychat bot, and the
// JWT-protected dashboard endpoints admins manage their tools with.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// adminIDFrom extracts the authenticated admin id placed into the
// context by the JWT middleware. The claim arrives as float64 after
// JSON decoding; other types are handled for tests that set the value
// directly.
func adminIDFrom(c echo.Context) (uint64, bool) {
	switch v := c.Get("admin_id").(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// requireAdmin is the common prologue of every dashboard handler.
func requireAdmin(c echo.Context) (uint64, error) {
	id, ok := adminIDFrom(c)
	if !ok {
		return 0, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return id, nil
}

// paramUint64 parses a numeric path parameter.
func paramUint64(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
