package model

import "time"

// AvailabilityTemplate defines a recurring open window for a tool on
// a given weekday. Times of day are stored as minutes from midnight
// in the configured booking timezone; they carry no date component.
// Multiple templates per (tool, weekday) are allowed, e.g. a morning
// and an afternoon window.
//
// Invariants enforced at the API boundary: 0 <= DayOfWeek <= 6
// (Sunday = 0), StartMinute < EndMinute, SlotMinutes > 0.
//
// Fields:
//  ID          – primary key identifier.
//  ToolID      – tool the window belongs to.
//  DayOfWeek   – weekday the window recurs on.
//  StartMinute – window start, minutes from midnight.
//  EndMinute   – window end, minutes from midnight.
//  SlotMinutes – granularity of generated slots.
//  IsActive    – disabled templates are ignored by the slot generator.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type AvailabilityTemplate struct {
	ID          uint64    // availability_templates.id
	ToolID      uint64    // availability_templates.tool_id
	DayOfWeek   int       // availability_templates.day_of_week
	StartMinute int       // availability_templates.start_minute
	EndMinute   int       // availability_templates.end_minute
	SlotMinutes int       // availability_templates.slot_minutes
	IsActive    bool      // availability_templates.is_active
	CreatedAt   time.Time // availability_templates.created_at
	UpdatedAt   time.Time // availability_templates.updated_at
}
