package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flowkick/mchat-tools/internal/booking"
)

// BookingStore is the SQL implementation of booking.Store. It backs
// the availability query with day-bounded reads and implements the
// create path as a single transaction: lock the tool row, re-check
// the full live set, upsert the user, insert the pending booking.
// The row lock serializes concurrent creates per tool so two requests
// for the same slot can never both pass the conflict check.
type BookingStore struct {
	db    *sql.DB
	users *UserRepo
}

// NewBookingStore constructs a BookingStore with the given DB handle.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db, users: NewUserRepo(db)}
}

// ToolByID returns the engine's projection of a tool, regardless of
// owner: the booking endpoints are keyed by Manychat user, not admin.
func (s *BookingStore) ToolByID(ctx context.Context, id uint64) (booking.Tool, error) {
	var t booking.Tool
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_active, min_duration_min, max_duration_min FROM tools WHERE id = ?`,
		id).Scan(&t.ID, &t.Name, &t.IsActive, &t.MinDurationMin, &t.MaxDurationMin)
	if errors.Is(err, sql.ErrNoRows) {
		return t, booking.ErrToolNotFound
	}
	return t, err
}

// ActiveWindows returns the active templates for the weekday, ordered
// by start time. time.Weekday numbers Sunday as 0, matching the
// day_of_week column.
func (s *BookingStore) ActiveWindows(ctx context.Context, toolID uint64, day time.Weekday) ([]booking.Window, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_minute, end_minute, slot_minutes FROM availability_templates
		 WHERE tool_id = ? AND day_of_week = ? AND is_active = 1
		 ORDER BY start_minute`, toolID, int(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var windows []booking.Window
	for rows.Next() {
		var w booking.Window
		if err := rows.Scan(&w.StartMinute, &w.EndMinute, &w.SlotMinutes); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// LiveBookings returns pending/confirmed booking intervals for the
// tool intersecting [from, to), ascending by start time.
func (s *BookingStore) LiveBookings(ctx context.Context, toolID uint64, from, to time.Time) ([]booking.Interval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_time, end_time FROM bookings
		 WHERE tool_id = ? AND status IN (`+liveStatusList+`)
		   AND start_time < ? AND end_time > ?
		 ORDER BY start_time`, toolID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []booking.Interval
	for rows.Next() {
		var itv booking.Interval
		if err := rows.Scan(&itv.Start, &itv.End); err != nil {
			return nil, err
		}
		out = append(out, itv)
	}
	return out, rows.Err()
}

// CreateBooking performs the atomic conflict-check-and-insert. The
// final authority check runs against the tool's entire live set, not
// just the query date, under a FOR UPDATE lock on the tool row.
func (s *BookingStore) CreateBooking(ctx context.Context, req booking.CreateRequest) (booking.Created, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return booking.Created{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the tool row; concurrent creates for the same tool queue
	// here until this transaction commits or rolls back.
	var toolName string
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT name, is_active FROM tools WHERE id = ? FOR UPDATE`,
		req.ToolID).Scan(&toolName, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Created{}, booking.ErrToolNotFound
	}
	if err != nil {
		return booking.Created{}, err
	}
	if !isActive {
		return booking.Created{}, booking.ErrToolInactive
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT start_time, end_time FROM bookings
		 WHERE tool_id = ? AND status IN (`+liveStatusList+`)`, req.ToolID)
	if err != nil {
		return booking.Created{}, err
	}
	for rows.Next() {
		var bs, be time.Time
		if err := rows.Scan(&bs, &be); err != nil {
			rows.Close()
			return booking.Created{}, err
		}
		if booking.Overlaps(req.Start, req.End, bs, be) {
			rows.Close()
			return booking.Created{}, booking.ErrSlotTaken
		}
	}
	if err := rows.Close(); err != nil {
		return booking.Created{}, err
	}

	userID, err := s.users.UpsertTx(ctx, tx, req.ManychatID, nil)
	if err != nil {
		return booking.Created{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (tool_id, user_id, start_time, end_time, status, notes)
		 VALUES (?, ?, ?, ?, 'pending', ?)`,
		req.ToolID, userID, req.Start, req.End, req.Notes)
	if err != nil {
		return booking.Created{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return booking.Created{}, err
	}
	if err := tx.Commit(); err != nil {
		return booking.Created{}, err
	}
	committed = true
	return booking.Created{BookingID: uint64(id), ToolName: toolName, Status: "pending"}, nil
}
