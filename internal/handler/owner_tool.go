package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/booking"
	"github.com/flowkick/mchat-tools/internal/model"
	"github.com/flowkick/mchat-tools/internal/repository"
)

// OwnerToolHandler serves the dashboard's tool CRUD. Every operation
// is scoped to the authenticated admin; a tool owned by someone else
// is indistinguishable from a missing one.
type OwnerToolHandler struct {
	Tools *repository.ToolRepo
}

func NewOwnerToolHandler(tools *repository.ToolRepo) *OwnerToolHandler {
	return &OwnerToolHandler{Tools: tools}
}

type toolPayload struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	IsActive       *bool   `json:"is_active"`
	MinDurationMin int     `json:"min_duration_min"`
	MaxDurationMin int     `json:"max_duration_min"`
}

func (p *toolPayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "name required"
	}
	if p.MinDurationMin == 0 {
		p.MinDurationMin = booking.MinDurationMin
	}
	if p.MaxDurationMin == 0 {
		p.MaxDurationMin = booking.MaxDurationMin
	}
	if p.MinDurationMin < booking.MinDurationMin || p.MaxDurationMin > booking.MaxDurationMin {
		return "duration bounds out of range"
	}
	if p.MinDurationMin > p.MaxDurationMin {
		return "min_duration_min exceeds max_duration_min"
	}
	return ""
}

func toolJSON(t model.Tool) echo.Map {
	return echo.Map{
		"id":               t.ID,
		"name":             t.Name,
		"description":      t.Description,
		"is_active":        t.IsActive,
		"min_duration_min": t.MinDurationMin,
		"max_duration_min": t.MaxDurationMin,
		"created_at":       t.CreatedAt,
		"updated_at":       t.UpdatedAt,
	}
}

// Create registers a new tool for the authenticated admin.
func (h *OwnerToolHandler) Create(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	var p toolPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := p.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := model.Tool{
		AdminID:        adminID,
		Name:           p.Name,
		Description:    p.Description,
		MinDurationMin: p.MinDurationMin,
		MaxDurationMin: p.MaxDurationMin,
	}
	if err := h.Tools.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, toolJSON(t))
}

// List returns the admin's tools.
func (h *OwnerToolHandler) List(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	tools, err := h.Tools.ListByAdmin(c.Request().Context(), adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]echo.Map, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tools": out})
}

// Get returns one tool owned by the admin.
func (h *OwnerToolHandler) Get(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	t, err := h.Tools.GetByIDAndAdmin(c.Request().Context(), id, adminID)
	if errors.Is(err, repository.ErrToolNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toolJSON(t))
}

// Update replaces a tool's editable fields. Omitting is_active keeps
// the current value.
func (h *OwnerToolHandler) Update(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	ctx := c.Request().Context()
	t, err := h.Tools.GetByIDAndAdmin(ctx, id, adminID)
	if errors.Is(err, repository.ErrToolNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	var p toolPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := p.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t.Name = p.Name
	t.Description = p.Description
	t.MinDurationMin = p.MinDurationMin
	t.MaxDurationMin = p.MaxDurationMin
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	if err := h.Tools.Update(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrToolNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toolJSON(t))
}

// Delete removes a tool; its templates and bookings cascade.
func (h *OwnerToolHandler) Delete(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tool id"})
	}
	err = h.Tools.Delete(c.Request().Context(), id, adminID)
	if errors.Is(err, repository.ErrToolNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
