package booking

import (
	"context"
	"sort"
	"time"
)

// Global duration bounds in minutes. Per-tool bounds may narrow this
// range but never widen it.
const (
	MinDurationMin = 15
	MaxDurationMin = 480
)

// Engine answers availability queries and creates bookings. Loc is
// the timezone all weekday and time-of-day arithmetic happens in; it
// is threaded explicitly rather than read from the process environment
// so the engine behaves the same regardless of where it runs.
type Engine struct {
	store Store
	loc   *time.Location
}

// NewEngine returns an Engine bound to the given store and timezone.
// A nil location falls back to UTC.
func NewEngine(store Store, loc *time.Location) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: store, loc: loc}
}

// Location returns the timezone the engine operates in.
func (e *Engine) Location() *time.Location { return e.loc }

// Overlaps reports whether candidate [s, e) conflicts with booking
// [bs, be). Both are half-open: touching endpoints (s == be or
// e == bs) do not conflict, so back-to-back bookings are legal. The
// third clause catches a candidate that strictly contains the booking,
// where neither of the candidate's own endpoints falls inside it.
func Overlaps(s, e, bs, be time.Time) bool {
	return (!s.Before(bs) && s.Before(be)) || (e.After(bs) && !e.After(be)) ||
		(s.Before(bs) && e.After(be))
}

// ConflictsAny reports whether the candidate interval overlaps any of
// the given busy intervals.
func ConflictsAny(cand Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(cand.Start, cand.End, b.Start, b.End) {
			return true
		}
	}
	return false
}

// ExpandWindow generates the candidate slots a window yields on the
// given calendar date. The cursor starts at the window's start time
// and advances by the slot duration; a trailing slot that would pass
// the window's end is dropped, not truncated. Arithmetic is pure
// wall-clock in loc: each slot boundary is materialized from its
// minute offset, so a window never bleeds into the next day even on
// DST transition dates.
func ExpandWindow(year int, month time.Month, day int, w Window, loc *time.Location) []Interval {
	if w.SlotMinutes <= 0 || w.StartMinute >= w.EndMinute {
		return nil
	}
	var slots []Interval
	for m := w.StartMinute; m+w.SlotMinutes <= w.EndMinute; m += w.SlotMinutes {
		slots = append(slots, Interval{
			Start: time.Date(year, month, day, 0, m, 0, 0, loc),
			End:   time.Date(year, month, day, 0, m+w.SlotMinutes, 0, 0, loc),
		})
	}
	return slots
}

// Availability returns the open slots for a tool on the given date,
// ascending by start time. The second return value reports whether
// any active window exists for that weekday at all, letting callers
// distinguish "no availability configured" from "fully booked".
//
// Overlapping windows may yield duplicate candidate slots; they are
// not deduplicated here. If either copy conflicts with a live booking
// both are filtered, which matches the overlap semantics exactly.
func (e *Engine) Availability(ctx context.Context, toolID uint64, date time.Time) ([]Interval, bool, error) {
	tool, err := e.store.ToolByID(ctx, toolID)
	if err != nil {
		return nil, false, err
	}
	if !tool.IsActive {
		return nil, false, ErrToolInactive
	}

	local := date.In(e.loc)
	year, month, day := local.Date()
	windows, err := e.store.ActiveWindows(ctx, toolID, local.Weekday())
	if err != nil {
		return nil, false, err
	}
	if len(windows) == 0 {
		return nil, false, nil
	}

	// Day bounds for the coarse booking fetch. Bookings never span
	// local midnight (create rejects them), so this filter is sound.
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, e.loc)
	dayEnd := time.Date(year, month, day+1, 0, 0, 0, 0, e.loc)
	busy, err := e.store.LiveBookings(ctx, toolID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, false, err
	}

	open := make([]Interval, 0)
	for _, w := range windows {
		for _, slot := range ExpandWindow(year, month, day, w, e.loc) {
			if !ConflictsAny(slot, busy) {
				open = append(open, slot)
			}
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })
	return open, true, nil
}

// BookRequest is a booking attempt as received from the API boundary.
type BookRequest struct {
	ToolID      uint64
	ManychatID  string
	Start       time.Time
	DurationMin int
	Notes       *string
}

// Book validates the request and hands it to the store for the atomic
// conflict-check-and-insert. All validation runs before any write; a
// rejected booking leaves no partial state. The returned booking is
// always in pending status.
func (e *Engine) Book(ctx context.Context, req BookRequest) (Created, error) {
	if req.DurationMin < MinDurationMin || req.DurationMin > MaxDurationMin {
		return Created{}, ErrInvalidDuration
	}
	tool, err := e.store.ToolByID(ctx, req.ToolID)
	if err != nil {
		return Created{}, err
	}
	if !tool.IsActive {
		return Created{}, ErrToolInactive
	}
	minDur, maxDur := tool.MinDurationMin, tool.MaxDurationMin
	if minDur < MinDurationMin {
		minDur = MinDurationMin
	}
	if maxDur <= 0 || maxDur > MaxDurationMin {
		maxDur = MaxDurationMin
	}
	if req.DurationMin < minDur || req.DurationMin > maxDur {
		return Created{}, ErrInvalidDuration
	}

	start := req.Start
	end := start.Add(time.Duration(req.DurationMin) * time.Minute)

	// The day-bounded conflict fetch assumes no booking spans local
	// midnight; reject intervals that would. End may land exactly on
	// midnight since the interval is half-open.
	local := start.In(e.loc)
	y, m, d := local.Date()
	nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, e.loc)
	if end.After(nextMidnight) {
		return Created{}, ErrCrossesMidnight
	}

	return e.store.CreateBooking(ctx, CreateRequest{
		ToolID:     req.ToolID,
		ManychatID: req.ManychatID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Notes:      req.Notes,
	})
}
