package booking

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/flowkick/mchat-tools/internal/model"
)

// fakeStore is an in-memory Store used to exercise the engine without
// a database. CreateBooking mirrors the SQL implementation's contract:
// the conflict re-check and insert happen under one lock, so two
// concurrent creates for the same tool are serialized.
type fakeStore struct {
	mu       sync.Mutex
	tools    map[uint64]Tool
	windows  map[uint64]map[time.Weekday][]Window
	bookings []fakeBooking
	nextID   uint64
}

type fakeBooking struct {
	id     uint64
	toolID uint64
	itv    Interval
	status string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tools:   make(map[uint64]Tool),
		windows: make(map[uint64]map[time.Weekday][]Window),
		nextID:  1,
	}
}

func (f *fakeStore) addTool(t Tool) { f.tools[t.ID] = t }

func (f *fakeStore) addWindow(toolID uint64, day time.Weekday, w Window) {
	if f.windows[toolID] == nil {
		f.windows[toolID] = make(map[time.Weekday][]Window)
	}
	f.windows[toolID][day] = append(f.windows[toolID][day], w)
}

func (f *fakeStore) ToolByID(_ context.Context, id uint64) (Tool, error) {
	t, ok := f.tools[id]
	if !ok {
		return Tool{}, ErrToolNotFound
	}
	return t, nil
}

func (f *fakeStore) ActiveWindows(_ context.Context, toolID uint64, day time.Weekday) ([]Window, error) {
	return f.windows[toolID][day], nil
}

func (f *fakeStore) LiveBookings(_ context.Context, toolID uint64, from, to time.Time) ([]Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Interval
	for _, b := range f.bookings {
		if b.toolID != toolID || !model.IsLiveStatus(b.status) {
			continue
		}
		if b.itv.Start.Before(to) && b.itv.End.After(from) {
			out = append(out, b.itv)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, req CreateRequest) (Created, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cand := Interval{Start: req.Start, End: req.End}
	for _, b := range f.bookings {
		if b.toolID != req.ToolID || !model.IsLiveStatus(b.status) {
			continue
		}
		if Overlaps(cand.Start, cand.End, b.itv.Start, b.itv.End) {
			return Created{}, ErrSlotTaken
		}
	}
	id := f.nextID
	f.nextID++
	f.bookings = append(f.bookings, fakeBooking{id: id, toolID: req.ToolID, itv: cand, status: "pending"})
	return Created{BookingID: id, ToolName: f.tools[req.ToolID].Name, Status: "pending"}, nil
}

// setStatus flips a booking's status directly, bypassing lifecycle
// rules; tests use it to simulate admin transitions.
func (f *fakeStore) setStatus(id uint64, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].id == id {
			f.bookings[i].status = status
		}
	}
}

// monday is a fixed Monday used across tests.
var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func newTestEngine(f *fakeStore) *Engine { return NewEngine(f, time.UTC) }

func TestOverlapsBoundaries(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2025, time.June, 2, h, m, 0, 0, time.UTC)
	}
	tests := []struct {
		name           string
		s, e, bs, be   time.Time
		wantConflict   bool
	}{
		{"identical", at(10, 0), at(10, 30), at(10, 0), at(10, 30), true},
		{"candidate starts inside", at(10, 15), at(10, 45), at(10, 0), at(10, 30), true},
		{"candidate ends inside", at(9, 45), at(10, 15), at(10, 0), at(10, 30), true},
		{"candidate inside booking", at(10, 10), at(10, 20), at(10, 0), at(10, 30), true},
		{"candidate contains booking", at(9, 0), at(11, 0), at(10, 0), at(10, 30), true},
		{"contains with shared start", at(10, 0), at(11, 0), at(10, 0), at(10, 30), true},
		{"contains with shared end", at(9, 0), at(10, 30), at(10, 0), at(10, 30), true},
		{"touching before", at(9, 30), at(10, 0), at(10, 0), at(10, 30), false},
		{"touching after", at(10, 30), at(11, 0), at(10, 0), at(10, 30), false},
		{"fully before", at(8, 0), at(9, 0), at(10, 0), at(10, 30), false},
		{"fully after", at(11, 0), at(12, 0), at(10, 0), at(10, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s, tt.e, tt.bs, tt.be); got != tt.wantConflict {
				t.Fatalf("Overlaps(%v,%v,%v,%v) = %v, want %v", tt.s, tt.e, tt.bs, tt.be, got, tt.wantConflict)
			}
		})
	}
}

func TestExpandWindowDropsTrailingPartial(t *testing.T) {
	// 61-minute window with 30-minute slots yields exactly 2 slots.
	w := Window{StartMinute: 9 * 60, EndMinute: 9*60 + 61, SlotMinutes: 30}
	slots := ExpandWindow(2025, time.June, 2, w, time.UTC)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if got := slots[0].Start.Hour()*60 + slots[0].Start.Minute(); got != 9*60 {
		t.Errorf("first slot starts at minute %d, want %d", got, 9*60)
	}
	if got := slots[1].Start.Hour()*60 + slots[1].Start.Minute(); got != 9*60+30 {
		t.Errorf("second slot starts at minute %d, want %d", got, 9*60+30)
	}
}

func TestAvailabilityEndToEnd(t *testing.T) {
	// Monday template 09:00-17:00 with 30-minute slots and one
	// confirmed booking at [10:00, 10:30) must yield every half-hour
	// slot from 09:00 through 16:30 except 10:00.
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Barber Chair", IsActive: true})
	f.addWindow(1, time.Monday, Window{StartMinute: 9 * 60, EndMinute: 17 * 60, SlotMinutes: 30})

	eng := newTestEngine(f)
	created, err := eng.Book(context.Background(), BookRequest{
		ToolID:      1,
		ManychatID:  "mc-1",
		Start:       monday.Add(10 * time.Hour),
		DurationMin: 30,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	f.setStatus(created.BookingID, "confirmed")

	slots, hasWindows, err := eng.Availability(context.Background(), 1, monday)
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if !hasWindows {
		t.Fatal("expected active windows for Monday")
	}
	if len(slots) != 15 {
		t.Fatalf("got %d slots, want 15", len(slots))
	}
	for i, s := range slots {
		if s.Start.Hour() == 10 && s.Start.Minute() == 0 {
			t.Errorf("slot %d is the booked 10:00 slot", i)
		}
		if i > 0 && slots[i].Start.Before(slots[i-1].Start) {
			t.Errorf("slots not ascending at index %d", i)
		}
	}
	if slots[0].Start.Hour() != 9 || slots[len(slots)-1].Start.Hour() != 16 || slots[len(slots)-1].Start.Minute() != 30 {
		t.Errorf("slot range wrong: first %v last %v", slots[0].Start, slots[len(slots)-1].Start)
	}
}

func TestAvailabilityDeterministic(t *testing.T) {
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Studio", IsActive: true})
	f.addWindow(1, time.Monday, Window{StartMinute: 8 * 60, EndMinute: 12 * 60, SlotMinutes: 45})
	f.addWindow(1, time.Monday, Window{StartMinute: 14 * 60, EndMinute: 18 * 60, SlotMinutes: 45})
	eng := newTestEngine(f)

	first, _, err := eng.Availability(context.Background(), 1, monday)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := eng.Availability(context.Background(), 1, monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Fatalf("slot %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestNoActiveTemplateMeansNoWindows(t *testing.T) {
	// Disabling every template for a weekday is equivalent to never
	// having configured one: the store only surfaces active windows,
	// so the engine reports hasWindows=false and zero slots.
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Studio", IsActive: true})
	f.addWindow(1, time.Tuesday, Window{StartMinute: 9 * 60, EndMinute: 17 * 60, SlotMinutes: 30})
	eng := newTestEngine(f)

	slots, hasWindows, err := eng.Availability(context.Background(), 1, monday)
	if err != nil {
		t.Fatal(err)
	}
	if hasWindows {
		t.Error("expected no active windows for Monday")
	}
	if len(slots) != 0 {
		t.Errorf("got %d slots, want 0", len(slots))
	}
}

func TestBookValidation(t *testing.T) {
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	f.addTool(Tool{ID: 2, Name: "Closed", IsActive: false})
	f.addTool(Tool{ID: 3, Name: "Narrow", IsActive: true, MinDurationMin: 30, MaxDurationMin: 60})
	eng := newTestEngine(f)
	ctx := context.Background()
	start := monday.Add(10 * time.Hour)

	tests := []struct {
		name    string
		req     BookRequest
		wantErr error
	}{
		{"below minimum", BookRequest{ToolID: 1, ManychatID: "u", Start: start, DurationMin: 10}, ErrInvalidDuration},
		{"above maximum", BookRequest{ToolID: 1, ManychatID: "u", Start: start, DurationMin: 481}, ErrInvalidDuration},
		{"below tool minimum", BookRequest{ToolID: 3, ManychatID: "u", Start: start, DurationMin: 15}, ErrInvalidDuration},
		{"above tool maximum", BookRequest{ToolID: 3, ManychatID: "u", Start: start, DurationMin: 90}, ErrInvalidDuration},
		{"unknown tool", BookRequest{ToolID: 99, ManychatID: "u", Start: start, DurationMin: 30}, ErrToolNotFound},
		{"inactive tool", BookRequest{ToolID: 2, ManychatID: "u", Start: start, DurationMin: 30}, ErrToolInactive},
		{"crosses midnight", BookRequest{ToolID: 1, ManychatID: "u", Start: monday.Add(23*time.Hour + 30*time.Minute), DurationMin: 60}, ErrCrossesMidnight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.Book(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Ending exactly on midnight is legal: the interval is half-open.
	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "u", Start: monday.Add(23 * time.Hour), DurationMin: 60}); err != nil {
		t.Fatalf("booking ending at midnight rejected: %v", err)
	}
}

func TestTouchingBookingsBothSucceed(t *testing.T) {
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	eng := newTestEngine(f)
	ctx := context.Background()

	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "a", Start: monday.Add(10 * time.Hour), DurationMin: 30}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "b", Start: monday.Add(10*time.Hour + 30*time.Minute), DurationMin: 30}); err != nil {
		t.Fatalf("back-to-back booking failed: %v", err)
	}
}

func TestContainingBookingRejected(t *testing.T) {
	// A request that swallows an existing live booking whole must be
	// refused even though neither of its endpoints lands inside it:
	// book [10:00, 10:15), then attempt [09:00, 11:00).
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	eng := newTestEngine(f)
	ctx := context.Background()

	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "a", Start: monday.Add(10 * time.Hour), DurationMin: 15}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "b", Start: monday.Add(9 * time.Hour), DurationMin: 120}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("containing booking got %v, want ErrSlotTaken", err)
	}

	// The enclosed booking's slot stays busy for the availability query.
	f.addWindow(1, time.Monday, Window{StartMinute: 10 * 60, EndMinute: 11 * 60, SlotMinutes: 15})
	slots, _, err := eng.Availability(ctx, 1, monday)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range slots {
		if s.Start.Hour() == 10 && s.Start.Minute() == 0 {
			t.Errorf("booked 10:00 slot still offered")
		}
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	eng := newTestEngine(f)
	ctx := context.Background()
	start := monday.Add(11 * time.Hour)

	created, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "a", Start: start, DurationMin: 60})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "b", Start: start, DurationMin: 60}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken while live, got %v", err)
	}
	f.setStatus(created.BookingID, "cancelled")
	if _, err := eng.Book(ctx, BookRequest{ToolID: 1, ManychatID: "b", Start: start, DurationMin: 60}); err != nil {
		t.Fatalf("slot not freed after cancellation: %v", err)
	}
}

func TestNoDoubleBookingUnderRandomLoad(t *testing.T) {
	// Fire random sequential creates and assert every accepted pair
	// is non-overlapping under the half-open overlap test.
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	eng := newTestEngine(f)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var accepted []Interval
	for i := 0; i < 200; i++ {
		startMin := rng.Intn(20*60) / 5 * 5
		dur := (rng.Intn(8) + 1) * 15
		req := BookRequest{
			ToolID:      1,
			ManychatID:  "load",
			Start:       monday.Add(time.Duration(startMin) * time.Minute),
			DurationMin: dur,
		}
		if _, err := eng.Book(ctx, req); err == nil {
			accepted = append(accepted, Interval{
				Start: req.Start,
				End:   req.Start.Add(time.Duration(dur) * time.Minute),
			})
		} else if !errors.Is(err, ErrSlotTaken) && !errors.Is(err, ErrCrossesMidnight) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(accepted) < 2 {
		t.Fatalf("load test accepted only %d bookings", len(accepted))
	}
	for i := 0; i < len(accepted); i++ {
		for j := i + 1; j < len(accepted); j++ {
			a, b := accepted[i], accepted[j]
			if Overlaps(a.Start, a.End, b.Start, b.End) || Overlaps(b.Start, b.End, a.Start, a.End) {
				t.Fatalf("accepted bookings overlap: %v and %v", a, b)
			}
		}
	}
}

func TestConcurrentCreateRace(t *testing.T) {
	// Two concurrent creates for the same interval: exactly one must
	// succeed with pending, the other must get ErrSlotTaken.
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	eng := newTestEngine(f)
	start := monday.Add(14 * time.Hour)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := eng.Book(context.Background(), BookRequest{
				ToolID:      1,
				ManychatID:  user,
				Start:       start,
				DurationMin: 60,
			})
			results <- err
		}("user-" + string(rune('a'+i)))
	}
	wg.Wait()
	close(results)

	var ok, conflict int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotTaken):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 of each", ok, conflict)
	}
}

func TestAvailabilityRespectsTimezone(t *testing.T) {
	// The same instant falls on different weekdays depending on the
	// engine's timezone; templates must be resolved in the configured
	// zone, not in UTC.
	loc := time.FixedZone("UTC+10", 10*3600)
	f := newFakeStore()
	f.addTool(Tool{ID: 1, Name: "Chair", IsActive: true})
	f.addWindow(1, time.Tuesday, Window{StartMinute: 9 * 60, EndMinute: 10 * 60, SlotMinutes: 30})
	eng := NewEngine(f, loc)

	// 2025-06-02 20:00 UTC is already Tuesday 06:00 in UTC+10.
	queryAt := time.Date(2025, time.June, 2, 20, 0, 0, 0, time.UTC)
	slots, hasWindows, err := eng.Availability(context.Background(), 1, queryAt)
	if err != nil {
		t.Fatal(err)
	}
	if !hasWindows {
		t.Fatal("expected Tuesday windows to match in UTC+10")
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if got := slots[0].Start.In(loc).Hour(); got != 9 {
		t.Errorf("first slot local hour = %d, want 9", got)
	}
}
