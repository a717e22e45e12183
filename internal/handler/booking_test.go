package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/booking"
	"github.com/flowkick/mchat-tools/internal/queue"
)

// stubStore is a canned booking.Store: one tool, one Monday window,
// a configurable set of live bookings.
type stubStore struct {
	mu      sync.Mutex
	tool    booking.Tool
	windows []booking.Window
	busy    []booking.Interval
	nextID  uint64
}

func newStubStore() *stubStore {
	return &stubStore{
		tool: booking.Tool{ID: 1, Name: "3D Printer", IsActive: true,
			MinDurationMin: 15, MaxDurationMin: 480},
		windows: []booking.Window{{StartMinute: 9 * 60, EndMinute: 17 * 60, SlotMinutes: 30}},
		nextID:  1,
	}
}

func (s *stubStore) ToolByID(_ context.Context, id uint64) (booking.Tool, error) {
	if id != s.tool.ID {
		return booking.Tool{}, booking.ErrToolNotFound
	}
	return s.tool, nil
}

func (s *stubStore) ActiveWindows(_ context.Context, _ uint64, day time.Weekday) ([]booking.Window, error) {
	if day != time.Monday {
		return nil, nil
	}
	return s.windows, nil
}

func (s *stubStore) LiveBookings(_ context.Context, _ uint64, from, to time.Time) ([]booking.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Interval
	for _, b := range s.busy {
		if b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubStore) CreateBooking(_ context.Context, req booking.CreateRequest) (booking.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.busy {
		if booking.Overlaps(req.Start, req.End, b.Start, b.End) {
			return booking.Created{}, booking.ErrSlotTaken
		}
	}
	s.busy = append(s.busy, booking.Interval{Start: req.Start, End: req.End})
	id := s.nextID
	s.nextID++
	return booking.Created{BookingID: id, ToolName: s.tool.Name, Status: "pending"}, nil
}

func newTestHandler(store booking.Store) *BookingHandler {
	h := NewBookingHandler(booking.NewEngine(store, time.UTC), nil, nil)
	h.PublishEvent = nil
	return h
}

func doRequest(h echo.HandlerFunc, method, target string, body string) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		panic(err)
	}
	return rec
}

func TestAvailabilityOpenDay(t *testing.T) {
	h := newTestHandler(newStubStore())
	rec := doRequest(h.Availability, http.MethodGet, "/bookings/availability?tool_id=1&date=2025-06-02", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		AvailableSlots []string `json:"available_slots"`
		Message        string   `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.AvailableSlots) != 16 {
		t.Fatalf("got %d slots, want 16 (09:00-17:00 every 30min)", len(body.AvailableSlots))
	}
	if body.AvailableSlots[0] != "2025-06-02T09:00:00Z" {
		t.Errorf("first slot = %q, want 2025-06-02T09:00:00Z", body.AvailableSlots[0])
	}
	if body.Message != "" {
		t.Errorf("unexpected message %q on open day", body.Message)
	}
}

func TestAvailabilityNoTemplates(t *testing.T) {
	h := newTestHandler(newStubStore())
	// 2025-06-03 is a Tuesday; the stub only has a Monday window.
	rec := doRequest(h.Availability, http.MethodGet, "/bookings/availability?tool_id=1&date=2025-06-03", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		AvailableSlots []string `json:"available_slots"`
		Message        string   `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.AvailableSlots) != 0 {
		t.Errorf("got %d slots, want 0", len(body.AvailableSlots))
	}
	if body.Message != "No availability for this day" {
		t.Errorf("message = %q, want %q", body.Message, "No availability for this day")
	}
}

func TestAvailabilityUnknownTool(t *testing.T) {
	h := newTestHandler(newStubStore())
	rec := doRequest(h.Availability, http.MethodGet, "/bookings/availability?tool_id=99&date=2025-06-02", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec); got != "Tool not found or inactive" {
		t.Errorf("error = %q, want %q", got, "Tool not found or inactive")
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	store := newStubStore()
	h := newTestHandler(store)

	var published []queue.BookingCreatedEvent
	var mu sync.Mutex
	done := make(chan struct{})
	h.PublishEvent = func(_ context.Context, ev queue.BookingCreatedEvent) error {
		mu.Lock()
		published = append(published, ev)
		mu.Unlock()
		close(done)
		return nil
	}

	body := `{"manychat_user_id":"mc-42","tool_id":1,"start_time":"2025-06-02T09:00:00Z","duration":30}`
	rec := doRequest(h.Create, http.MethodPost, "/bookings/create", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success   bool   `json:"success"`
		BookingID uint64 `json:"booking_id"`
		ToolName  string `json:"tool_name"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Status != "pending" || resp.ToolName != "3D Printer" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.EndTime != "2025-06-02T09:30:00Z" {
		t.Errorf("end_time = %q, want 2025-06-02T09:30:00Z", resp.EndTime)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("booking.created event was not published")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(published) != 1 || published[0].BookingID != resp.BookingID {
		t.Errorf("published = %+v, want one event for booking %d", published, resp.BookingID)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	store := newStubStore()
	store.busy = []booking.Interval{{
		Start: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC),
	}}
	h := newTestHandler(store)

	body := `{"manychat_user_id":"mc-42","tool_id":1,"start_time":"2025-06-02T09:00:00Z","duration":30}`
	rec := doRequest(h.Create, http.MethodPost, "/bookings/create", body)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if got := decodeError(t, rec); got != "Time slot not available" {
		t.Errorf("error = %q, want %q", got, "Time slot not available")
	}
}

func TestCreateBookingBadDuration(t *testing.T) {
	h := newTestHandler(newStubStore())
	for _, dur := range []string{"5", "481", "0"} {
		body := `{"manychat_user_id":"mc-42","tool_id":1,"start_time":"2025-06-02T09:00:00Z","duration":` + dur + `}`
		rec := doRequest(h.Create, http.MethodPost, "/bookings/create", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("duration %s: status = %d, want 400", dur, rec.Code)
		}
	}
}

func TestCreateBookingMissingUser(t *testing.T) {
	h := newTestHandler(newStubStore())
	body := `{"tool_id":1,"start_time":"2025-06-02T09:00:00Z","duration":30}`
	rec := doRequest(h.Create, http.MethodPost, "/bookings/create", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}
