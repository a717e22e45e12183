package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/repository"
	"github.com/flowkick/mchat-tools/internal/verification"
)

// VerifyHandler serves the pre-booking verification flow: the bot
// requests a code, relays it to the user out-of-band, then confirms
// what the user types back. Codes live only in Redis.
type VerifyHandler struct {
	Codes *verification.Store
	Users *repository.UserRepo
}

func NewVerifyHandler(codes *verification.Store, users *repository.UserRepo) *VerifyHandler {
	return &VerifyHandler{Codes: codes, Users: users}
}

type verifyIssuePayload struct {
	ManychatUserID string  `json:"manychat_user_id"`
	FirstName      *string `json:"first_name"`
}

// Issue generates a fresh code for the subscriber. The user row is
// upserted on the way so later bookings join against it.
func (h *VerifyHandler) Issue(c echo.Context) error {
	var p verifyIssuePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p.ManychatUserID = strings.TrimSpace(p.ManychatUserID)
	if p.ManychatUserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manychat_user_id required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Users.Upsert(ctx, p.ManychatUserID, p.FirstName); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	code, ttl, err := h.Codes.Issue(ctx, p.ManychatUserID)
	if errors.Is(err, verification.ErrUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification unavailable"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"code":       code,
		"expires_in": int(ttl.Seconds()),
	})
}

type verifyConfirmPayload struct {
	ManychatUserID string `json:"manychat_user_id"`
	Code           string `json:"code"`
}

// Confirm checks the submitted code. A wrong or expired code is a 400,
// not an error; the bot prompts the user to retry or reissue.
func (h *VerifyHandler) Confirm(c echo.Context) error {
	var p verifyConfirmPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p.ManychatUserID = strings.TrimSpace(p.ManychatUserID)
	if p.ManychatUserID == "" || p.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manychat_user_id and code required"})
	}
	ok, err := h.Codes.Confirm(c.Request().Context(), p.ManychatUserID, p.Code)
	if errors.Is(err, verification.ErrUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification unavailable"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

// Status reports where the subscriber is in the flow: none, pending
// or verified.
func (h *VerifyHandler) Status(c echo.Context) error {
	manychatID := strings.TrimSpace(c.QueryParam("manychat_user_id"))
	if manychatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manychat_user_id required"})
	}
	status, err := h.Codes.Status(c.Request().Context(), manychatID)
	if errors.Is(err, verification.ErrUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification unavailable"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}
