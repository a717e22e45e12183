package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/model"
	"github.com/flowkick/mchat-tools/internal/queue"
	"github.com/flowkick/mchat-tools/internal/repository"
)

// Webhook delivery setting bounds. Values outside these ranges are
// clamped rather than rejected so a sloppy dashboard client still
// ends up with a workable endpoint.
const (
	maxWebhookAttempts  = 10
	maxWebhookDelayMs   = 60_000
	maxWebhookTimeoutMs = 30_000
)

// OwnerWebhookHandler manages the webhook endpoints an admin
// registers to be notified of booking events.
type OwnerWebhookHandler struct {
	Webhooks *repository.WebhookRepo
}

func NewOwnerWebhookHandler(webhooks *repository.WebhookRepo) *OwnerWebhookHandler {
	return &OwnerWebhookHandler{Webhooks: webhooks}
}

type webhookPayload struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	EventType     string `json:"event_type"`
	RetryAttempts int    `json:"retry_attempts"`
	RetryDelayMs  int    `json:"retry_delay_ms"`
	TimeoutMs     int    `json:"timeout_ms"`
}

func (p *webhookPayload) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "name required"
	}
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "url must be a valid http(s) URL"
	}
	if p.EventType != queue.EventBookingCreated {
		return "unsupported event_type"
	}
	if p.RetryAttempts < 1 {
		p.RetryAttempts = 3
	}
	if p.RetryAttempts > maxWebhookAttempts {
		p.RetryAttempts = maxWebhookAttempts
	}
	if p.RetryDelayMs < 0 {
		p.RetryDelayMs = 0
	}
	if p.RetryDelayMs > maxWebhookDelayMs {
		p.RetryDelayMs = maxWebhookDelayMs
	}
	if p.TimeoutMs < 1 {
		p.TimeoutMs = 5000
	}
	if p.TimeoutMs > maxWebhookTimeoutMs {
		p.TimeoutMs = maxWebhookTimeoutMs
	}
	return ""
}

func webhookJSON(w model.WebhookEndpoint) echo.Map {
	return echo.Map{
		"id":             w.ID,
		"name":           w.Name,
		"url":            w.URL,
		"event_type":     w.EventType,
		"is_active":      w.IsActive,
		"retry_attempts": w.RetryAttempts,
		"retry_delay_ms": w.RetryDelayMs,
		"timeout_ms":     w.TimeoutMs,
		"created_at":     w.CreatedAt,
	}
}

// Create registers a webhook endpoint for the admin.
func (h *OwnerWebhookHandler) Create(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	var p webhookPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := p.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	w := model.WebhookEndpoint{
		AdminID:       adminID,
		Name:          p.Name,
		URL:           p.URL,
		EventType:     p.EventType,
		RetryAttempts: p.RetryAttempts,
		RetryDelayMs:  p.RetryDelayMs,
		TimeoutMs:     p.TimeoutMs,
	}
	if err := h.Webhooks.Create(c.Request().Context(), &w); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, webhookJSON(w))
}

// List returns the admin's registered endpoints.
func (h *OwnerWebhookHandler) List(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	hooks, err := h.Webhooks.ListByAdmin(c.Request().Context(), adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]echo.Map, 0, len(hooks))
	for _, w := range hooks {
		out = append(out, webhookJSON(w))
	}
	return c.JSON(http.StatusOK, echo.Map{"webhooks": out})
}

type webhookActivePayload struct {
	IsActive bool `json:"is_active"`
}

// SetActive pauses or resumes deliveries to an endpoint.
func (h *OwnerWebhookHandler) SetActive(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook id"})
	}
	var p webhookActivePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = h.Webhooks.SetActive(c.Request().Context(), adminID, id, p.IsActive)
	if errors.Is(err, repository.ErrWebhookNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "webhook not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "is_active": p.IsActive})
}

// Delete removes an endpoint.
func (h *OwnerWebhookHandler) Delete(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook id"})
	}
	err = h.Webhooks.Delete(c.Request().Context(), adminID, id)
	if errors.Is(err, repository.ErrWebhookNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "webhook not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
