package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/booking"
	"github.com/flowkick/mchat-tools/internal/queue"
	"github.com/flowkick/mchat-tools/internal/repository"
	queuepub "github.com/flowkick/mchat-tools/internal/service/queue_publisher"
)

// BookingHandler serves the public booking API the Manychat bot calls
// on behalf of end users: availability queries, booking creation and
// the per-user booking list. No authentication; callers are identified
// by the Manychat subscriber id they carry.
type BookingHandler struct {
	Engine   *booking.Engine
	Bookings *repository.BookingRepo
	Tools    *repository.ToolRepo

	// PublishEvent is called after a booking commits. Overridable in
	// tests; nil disables publication entirely.
	PublishEvent func(ctx context.Context, ev queue.BookingCreatedEvent) error
}

func NewBookingHandler(engine *booking.Engine, bookings *repository.BookingRepo, tools *repository.ToolRepo) *BookingHandler {
	return &BookingHandler{
		Engine:       engine,
		Bookings:     bookings,
		Tools:        tools,
		PublishEvent: queuepub.PublishBookingCreated,
	}
}

// Availability answers "what slots are open for tool T on date D".
// The date parameter accepts a bare calendar date (interpreted in the
// booking timezone) or a full RFC 3339 timestamp. Slot start times are
// returned as RFC 3339 strings in the booking timezone, ascending.
func (h *BookingHandler) Availability(c echo.Context) error {
	toolID, err := strconv.ParseUint(c.QueryParam("tool_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tool_id required"})
	}
	date, err := parseDateParam(c.QueryParam("date"), h.Engine.Location())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD or RFC 3339"})
	}

	slots, hasWindows, err := h.Engine.Availability(c.Request().Context(), toolID, date)
	switch {
	case errors.Is(err, booking.ErrToolNotFound), errors.Is(err, booking.ErrToolInactive):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Tool not found or inactive"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if !hasWindows {
		return c.JSON(http.StatusOK, echo.Map{
			"available_slots": []string{},
			"message":         "No availability for this day",
		})
	}
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start.In(h.Engine.Location()).Format(time.RFC3339))
	}
	return c.JSON(http.StatusOK, echo.Map{"available_slots": starts})
}

type createPayload struct {
	ManychatUserID string  `json:"manychat_user_id"`
	ToolID         uint64  `json:"tool_id"`
	StartTime      string  `json:"start_time"`
	Duration       int     `json:"duration"`
	Notes          *string `json:"notes"`
}

// Create books a slot. Validation and the conflict check happen before
// any write; a rejected request leaves no partial state. On success
// the booking is pending and a booking.created event is published
// outside the request path.
func (h *BookingHandler) Create(c echo.Context) error {
	var p createPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p.ManychatUserID = strings.TrimSpace(p.ManychatUserID)
	if p.ManychatUserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manychat_user_id required"})
	}
	start, err := time.Parse(time.RFC3339, p.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
	}

	created, err := h.Engine.Book(c.Request().Context(), booking.BookRequest{
		ToolID:      p.ToolID,
		ManychatID:  p.ManychatUserID,
		Start:       start,
		DurationMin: p.Duration,
		Notes:       p.Notes,
	})
	switch {
	case errors.Is(err, booking.ErrInvalidDuration):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be between 15 and 480 minutes"})
	case errors.Is(err, booking.ErrCrossesMidnight):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking may not cross midnight"})
	case errors.Is(err, booking.ErrToolNotFound), errors.Is(err, booking.ErrToolInactive):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Tool not found or inactive"})
	case errors.Is(err, booking.ErrSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Time slot not available"})
	case err != nil:
		c.Logger().Errorf("booking create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	startUTC := start.UTC()
	endUTC := startUTC.Add(time.Duration(p.Duration) * time.Minute)
	h.publish(created, p, startUTC, endUTC)

	return c.JSON(http.StatusCreated, echo.Map{
		"success":    true,
		"booking_id": created.BookingID,
		"tool_name":  created.ToolName,
		"start_time": startUTC.Format(time.RFC3339),
		"end_time":   endUTC.Format(time.RFC3339),
		"status":     created.Status,
	})
}

// publish fires the booking.created event without blocking the
// response; the booking already committed, so a broker failure only
// costs the notification.
func (h *BookingHandler) publish(created booking.Created, p createPayload, start, end time.Time) {
	if h.PublishEvent == nil {
		return
	}
	ev := queue.BookingCreatedEvent{
		EventID:        uuid.NewString(),
		BookingID:      created.BookingID,
		ToolID:         p.ToolID,
		ToolName:       created.ToolName,
		ManychatUserID: p.ManychatUserID,
		StartTime:      start.Format(time.RFC3339),
		EndTime:        end.Format(time.RFC3339),
		Status:         created.Status,
		Notes:          p.Notes,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.PublishEvent(ctx, ev)
	}()
}

// List returns the caller's live (pending or confirmed) bookings,
// ascending by start time. Unknown subscriber ids get an empty list.
func (h *BookingHandler) List(c echo.Context) error {
	manychatID := strings.TrimSpace(c.QueryParam("manychat_user_id"))
	if manychatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manychat_user_id required"})
	}
	bookings, err := h.Bookings.ListLiveByManychatID(c.Request().Context(), manychatID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListTools is the public catalogue of active tools the bot shows to
// end users before asking for a date.
func (h *BookingHandler) ListTools(c echo.Context) error {
	tools, err := h.Tools.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	out := make([]echo.Map, 0, len(tools))
	for _, t := range tools {
		out = append(out, echo.Map{
			"id":               t.ID,
			"name":             t.Name,
			"description":      t.Description,
			"min_duration_min": t.MinDurationMin,
			"max_duration_min": t.MaxDurationMin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"tools": out})
}

// parseDateParam accepts "2006-01-02" (midnight in loc) or RFC 3339.
func parseDateParam(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}
