package model

import "time"

// Tool represents a bookable resource configured by an admin, e.g. a
// barber chair or a consultation calendar that a Manychat bot offers
// to end users. A tool owns availability templates and bookings;
// deleting a tool cascades to both.
//
// Booking duration bounds are stored per tool but are always clamped
// to the global 15–480 minute range at the API boundary. They replace
// the free-form JSON config blob the dashboard used to keep, so the
// values are parsed exactly once when the row is scanned.
//
// Fields:
//  ID             – primary key identifier.
//  AdminID        – admin who owns the tool.
//  Name           – human readable label.
//  Description    – optional free text.
//  IsActive       – inactive tools reject availability queries and bookings.
//  MinDurationMin – smallest accepted booking duration in minutes.
//  MaxDurationMin – largest accepted booking duration in minutes.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Tool struct {
	ID             uint64    // tools.id
	AdminID        uint64    // tools.admin_id
	Name           string    // tools.name
	Description    *string   // tools.description (nullable)
	IsActive       bool      // tools.is_active
	MinDurationMin int       // tools.min_duration_min
	MaxDurationMin int       // tools.max_duration_min
	CreatedAt      time.Time // tools.created_at
	UpdatedAt      time.Time // tools.updated_at
}
