// Package booking implements the availability and booking engine: it
// expands recurring per-weekday templates into concrete slots for a
// date, filters them against live bookings and validates booking
// creation. Persistence is injected through the Store interface so the
// engine can be exercised against an in-memory fake in tests.
package booking

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by the engine and by Store implementations.
// Handlers translate them into HTTP statuses: not found / inactive to
// 404, validation failures to 400 and ErrSlotTaken to 409.
var (
	ErrToolNotFound    = errors.New("tool not found")
	ErrToolInactive    = errors.New("tool inactive")
	ErrSlotTaken       = errors.New("time slot not available")
	ErrInvalidDuration = errors.New("duration out of range")
	ErrCrossesMidnight = errors.New("booking crosses midnight")
)

// Tool is the projection of a tools row the engine needs: identity,
// active flag and the per-tool duration bounds.
type Tool struct {
	ID             uint64
	Name           string
	IsActive       bool
	MinDurationMin int
	MaxDurationMin int
}

// Window is a recurring daily open interval taken from an active
// availability template. Times of day are minutes from midnight in
// the engine's configured timezone.
type Window struct {
	StartMinute int
	EndMinute   int
	SlotMinutes int
}

// Interval is a half-open time range [Start, End). All intervals
// handled by the engine are in UTC; conversion to the booking
// timezone happens only for day-of-week and slot arithmetic.
type Interval struct {
	Start time.Time
	End   time.Time
}

// CreateRequest carries a validated booking into the store. Start and
// End are UTC. ManychatID identifies the end user; the store upserts
// the user row if it does not exist yet.
type CreateRequest struct {
	ToolID     uint64
	ManychatID string
	Start      time.Time
	End        time.Time
	Notes      *string
}

// Created reports the outcome of a successful booking insert.
type Created struct {
	BookingID uint64
	ToolName  string
	Status    string
}

// Store is the persistence capability the engine depends on.
//
// CreateBooking must be atomic with respect to the conflict check:
// implementations serialize concurrent creates per tool (the SQL
// implementation locks the tool row inside a transaction) and return
// ErrSlotTaken when the requested interval overlaps a live booking.
type Store interface {
	// ToolByID returns the tool or ErrToolNotFound.
	ToolByID(ctx context.Context, id uint64) (Tool, error)
	// ActiveWindows returns the active templates for a tool on the
	// given weekday, ordered by start time. An empty result is valid.
	ActiveWindows(ctx context.Context, toolID uint64, day time.Weekday) ([]Window, error)
	// LiveBookings returns the intervals of pending and confirmed
	// bookings for the tool intersecting [from, to).
	LiveBookings(ctx context.Context, toolID uint64, from, to time.Time) ([]Interval, error)
	// CreateBooking re-checks conflicts against the tool's full live
	// set and inserts a pending booking, all under a per-tool lock.
	CreateBooking(ctx context.Context, req CreateRequest) (Created, error)
}
