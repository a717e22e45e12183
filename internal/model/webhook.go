package model

import "time"

// WebhookEndpoint is an HTTP target registered by an admin to receive
// domain events. Delivery settings mirror the dashboard's webhook
// configuration: a bounded number of attempts, a fixed delay between
// attempts and a per-request timeout.
//
// Fields:
//  ID            – primary key identifier.
//  AdminID       – admin who registered the endpoint.
//  Name          – human readable label.
//  URL           – destination to POST event payloads to.
//  EventType     – event name the endpoint subscribes to, e.g. "booking.created".
//  IsActive      – disabled endpoints are skipped by the dispatcher.
//  RetryAttempts – total delivery attempts before giving up.
//  RetryDelayMs  – delay between attempts in milliseconds.
//  TimeoutMs     – per-attempt HTTP timeout in milliseconds.
//  CreatedAt     – creation timestamp.
type WebhookEndpoint struct {
	ID            uint64    // webhook_endpoints.id
	AdminID       uint64    // webhook_endpoints.admin_id
	Name          string    // webhook_endpoints.name
	URL           string    // webhook_endpoints.url
	EventType     string    // webhook_endpoints.event_type
	IsActive      bool      // webhook_endpoints.is_active
	RetryAttempts int       // webhook_endpoints.retry_attempts
	RetryDelayMs  int       // webhook_endpoints.retry_delay_ms
	TimeoutMs     int       // webhook_endpoints.timeout_ms
	CreatedAt     time.Time // webhook_endpoints.created_at
}
