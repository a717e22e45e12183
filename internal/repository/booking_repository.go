package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flowkick/mchat-tools/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// liveStatusList is the SQL IN-list of statuses that occupy calendar
// space, built from the model constants so the filters here and in
// BookingStore cannot drift from model.IsLiveStatus.
const liveStatusList = "'" + model.StatusPending + "','" + model.StatusConfirmed + "'"

// BookingRepo serves the listing and lifecycle endpoints: end users
// list their own live bookings, admins list and transition bookings
// on tools they own. Slot occupancy itself is handled by BookingStore.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// UserBooking is a booking joined with its tool name for display to
// end users via the bot.
type UserBooking struct {
	ID        uint64    `json:"booking_id"`
	ToolID    uint64    `json:"tool_id"`
	ToolName  string    `json:"tool_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
}

// ListLiveByManychatID returns the user's pending and confirmed
// bookings ascending by start time. An unknown subscriber id yields
// an empty list, not an error.
func (r *BookingRepo) ListLiveByManychatID(ctx context.Context, manychatID string) ([]UserBooking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.tool_id, t.name, b.start_time, b.end_time, b.status, b.notes
		 FROM bookings b
		 JOIN tools t ON t.id = b.tool_id
		 JOIN manychat_users u ON u.id = b.user_id
		 WHERE u.manychat_id = ? AND b.status IN (`+liveStatusList+`)
		 ORDER BY b.start_time`, manychatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserBooking, 0)
	for rows.Next() {
		var b UserBooking
		var notes sql.NullString
		if err := rows.Scan(&b.ID, &b.ToolID, &b.ToolName, &b.StartTime, &b.EndTime, &b.Status, &notes); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			b.Notes = &n
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// AdminBooking is a booking joined with the end user's subscriber id
// for the dashboard's per-tool booking list.
type AdminBooking struct {
	ID         uint64    `json:"booking_id"`
	ToolID     uint64    `json:"tool_id"`
	ManychatID string    `json:"manychat_user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListByToolForAdmin returns all bookings for a tool the admin owns,
// newest first. Returns ErrToolNotFound when the tool is absent and
// ErrForbidden when it belongs to another admin.
func (r *BookingRepo) ListByToolForAdmin(ctx context.Context, toolID, adminID uint64) ([]AdminBooking, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT admin_id FROM tools WHERE id = ?`, toolID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrToolNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID != adminID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.tool_id, u.manychat_id, b.start_time, b.end_time, b.status, b.notes, b.created_at
		 FROM bookings b
		 JOIN manychat_users u ON u.id = b.user_id
		 WHERE b.tool_id = ?
		 ORDER BY b.created_at DESC`, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AdminBooking, 0)
	for rows.Next() {
		var b AdminBooking
		var notes sql.NullString
		if err := rows.Scan(&b.ID, &b.ToolID, &b.ManychatID, &b.StartTime, &b.EndTime, &b.Status, &notes, &b.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			b.Notes = &n
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatusForAdmin transitions a booking's status on behalf of an
// admin who owns the underlying tool. The transition runs in a
// transaction: the current status is read with a row lock, the
// lifecycle rule is checked, then the update is applied. Illegal
// transitions return ErrConflict.
func (r *BookingRepo) UpdateStatusForAdmin(ctx context.Context, bookingID, adminID uint64, newStatus string) (AdminBooking, error) {
	var out AdminBooking
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID uint64
	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT t.admin_id, b.status
		 FROM bookings b
		 JOIN tools t ON t.id = b.tool_id
		 WHERE b.id = ?
		 FOR UPDATE`, bookingID).Scan(&ownerID, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrBookingNotFound
	}
	if err != nil {
		return out, err
	}
	if ownerID != adminID {
		return out, ErrForbidden
	}
	if !model.ValidTransition(current, newStatus) {
		return out, ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, newStatus, bookingID); err != nil {
		return out, err
	}

	var notes sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT b.id, b.tool_id, u.manychat_id, b.start_time, b.end_time, b.status, b.notes, b.created_at
		 FROM bookings b
		 JOIN manychat_users u ON u.id = b.user_id
		 WHERE b.id = ?`, bookingID).
		Scan(&out.ID, &out.ToolID, &out.ManychatID, &out.StartTime, &out.EndTime, &out.Status, &notes, &out.CreatedAt)
	if err != nil {
		return out, err
	}
	if notes.Valid {
		n := notes.String
		out.Notes = &n
	}
	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true
	return out, nil
}
