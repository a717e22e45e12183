package model

import "time"

// Booking statuses form a closed set. A booking starts as pending and
// moves to confirmed, cancelled or completed through explicit admin
// action. Only pending and confirmed bookings occupy calendar space;
// cancelled and completed never conflict with new bookings.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// IsLiveStatus reports whether a booking in the given status blocks
// its [StartTime, EndTime) interval on the tool's calendar.
func IsLiveStatus(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// ValidTransition reports whether a booking may move from one status
// to another. Pending may be confirmed or cancelled; confirmed may be
// cancelled or completed. Cancelled and completed are terminal.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled || to == StatusCompleted
	}
	return false
}

// Booking records a user's reservation of a tool for a half-open
// interval [StartTime, EndTime). Timestamps are stored in UTC.
//
// Fields:
//  ID        – primary key identifier.
//  ToolID    – tool being booked.
//  UserID    – Manychat user who booked.
//  StartTime – interval start (inclusive).
//  EndTime   – interval end (exclusive); always after StartTime.
//  Status    – one of the Status* constants.
//  Notes     – optional free text supplied by the user.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        uint64    // bookings.id
	ToolID    uint64    // bookings.tool_id
	UserID    uint64    // bookings.user_id
	StartTime time.Time // bookings.start_time
	EndTime   time.Time // bookings.end_time
	Status    string    // bookings.status
	Notes     *string   // bookings.notes (nullable)
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}
