package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/model"
	"github.com/flowkick/mchat-tools/internal/repository"
)

// OwnerTemplateHandler manages a tool's recurring availability
// windows. Templates drive the slot generator: disabling one removes
// its slots from the next availability query without touching any
// existing booking.
type OwnerTemplateHandler struct {
	Templates *repository.TemplateRepo
}

func NewOwnerTemplateHandler(templates *repository.TemplateRepo) *OwnerTemplateHandler {
	return &OwnerTemplateHandler{Templates: templates}
}

const minutesPerDay = 24 * 60

type templatePayload struct {
	DayOfWeek   int `json:"day_of_week"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
	SlotMinutes int `json:"slot_minutes"`
}

func (p templatePayload) validate() string {
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return "day_of_week must be 0 (Sunday) through 6 (Saturday)"
	}
	if p.StartMinute < 0 || p.EndMinute > minutesPerDay {
		return "window must lie within the day"
	}
	if p.StartMinute >= p.EndMinute {
		return "start_minute must be before end_minute"
	}
	if p.SlotMinutes <= 0 {
		return "slot_minutes must be positive"
	}
	return ""
}

func templateJSON(t model.AvailabilityTemplate) echo.Map {
	return echo.Map{
		"id":           t.ID,
		"tool_id":      t.ToolID,
		"day_of_week":  t.DayOfWeek,
		"start_minute": t.StartMinute,
		"end_minute":   t.EndMinute,
		"slot_minutes": t.SlotMinutes,
		"is_active":    t.IsActive,
		"created_at":   t.CreatedAt,
		"updated_at":   t.UpdatedAt,
	}
}

// Create adds a window to a tool owned by the admin.
func (h *OwnerTemplateHandler) Create(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	toolID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	var p templatePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := p.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := model.AvailabilityTemplate{
		ToolID:      toolID,
		DayOfWeek:   p.DayOfWeek,
		StartMinute: p.StartMinute,
		EndMinute:   p.EndMinute,
		SlotMinutes: p.SlotMinutes,
	}
	err = h.Templates.Create(c.Request().Context(), adminID, &t)
	switch {
	case errors.Is(err, repository.ErrToolNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, templateJSON(t))
}

// List returns all windows for a tool, active and disabled.
func (h *OwnerTemplateHandler) List(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	toolID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	templates, err := h.Templates.ListByTool(c.Request().Context(), adminID, toolID)
	switch {
	case errors.Is(err, repository.ErrToolNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]echo.Map, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": out})
}

type templateActivePayload struct {
	IsActive bool `json:"is_active"`
}

// SetActive soft-enables or disables a window.
func (h *OwnerTemplateHandler) SetActive(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	templateID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var p templateActivePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = h.Templates.SetActive(c.Request().Context(), adminID, templateID, p.IsActive)
	switch {
	case errors.Is(err, repository.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "is_active": p.IsActive})
}

// Delete removes a window outright.
func (h *OwnerTemplateHandler) Delete(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	templateID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	err = h.Templates.Delete(c.Request().Context(), adminID, templateID)
	switch {
	case errors.Is(err, repository.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
