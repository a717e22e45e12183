package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/model"
	"github.com/flowkick/mchat-tools/internal/repository"
)

// OwnerBookingHandler serves the dashboard's view of bookings: listing
// per tool and driving the status lifecycle (confirm, cancel,
// complete). Creation stays on the public endpoint; admins never book
// on behalf of users.
type OwnerBookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewOwnerBookingHandler(bookings *repository.BookingRepo) *OwnerBookingHandler {
	return &OwnerBookingHandler{Bookings: bookings}
}

// ListByTool returns all bookings on one of the admin's tools.
func (h *OwnerBookingHandler) ListByTool(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	toolID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	bookings, err := h.Bookings.ListByToolForAdmin(c.Request().Context(), toolID, adminID)
	switch {
	case errors.Is(err, repository.ErrToolNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

type statusPayload struct {
	Status string `json:"status"`
}

// UpdateStatus transitions a booking along the lifecycle. Only the
// transitions pending→confirmed/cancelled and confirmed→cancelled/
// completed are legal; anything else is a conflict.
func (h *OwnerBookingHandler) UpdateStatus(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	bookingID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var p statusPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch p.Status {
	case model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	b, err := h.Bookings.UpdateStatusForAdmin(c.Request().Context(), bookingID, adminID, p.Status)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, b)
}
