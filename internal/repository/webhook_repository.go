package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flowkick/mchat-tools/internal/model"
)

// ErrWebhookNotFound is returned when a webhook endpoint lookup fails.
var ErrWebhookNotFound = errors.New("webhook not found")

// WebhookRepo provides CRUD for webhook_endpoints plus the dispatcher
// query that fans an event out to its subscribers.
type WebhookRepo struct {
	db *sql.DB
}

// NewWebhookRepo constructs a WebhookRepo with the given DB handle.
func NewWebhookRepo(db *sql.DB) *WebhookRepo { return &WebhookRepo{db: db} }

const webhookColumns = `id, admin_id, name, url, event_type, is_active, retry_attempts, retry_delay_ms, timeout_ms, created_at`

// Create inserts a webhook endpoint and reads the row back.
func (r *WebhookRepo) Create(ctx context.Context, w *model.WebhookEndpoint) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO webhook_endpoints (admin_id, name, url, event_type, retry_attempts, retry_delay_ms, timeout_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.AdminID, w.Name, w.URL, w.EventType, w.RetryAttempts, w.RetryDelayMs, w.TimeoutMs)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT `+webhookColumns+` FROM webhook_endpoints WHERE id = ?`, w.ID).
		Scan(&w.ID, &w.AdminID, &w.Name, &w.URL, &w.EventType, &w.IsActive,
			&w.RetryAttempts, &w.RetryDelayMs, &w.TimeoutMs, &w.CreatedAt)
}

// ListByAdmin returns all endpoints registered by the admin.
func (r *WebhookRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.WebhookEndpoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+webhookColumns+` FROM webhook_endpoints WHERE admin_id = ? ORDER BY id`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

// ListActiveByEvent returns every active endpoint subscribed to the
// given event type, across all admins. Used by the dispatcher.
func (r *WebhookRepo) ListActiveByEvent(ctx context.Context, eventType string) ([]model.WebhookEndpoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+webhookColumns+` FROM webhook_endpoints WHERE event_type = ? AND is_active = 1`, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

// SetActive toggles an endpoint's active flag for an admin who owns it.
func (r *WebhookRepo) SetActive(ctx context.Context, adminID, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE webhook_endpoints SET is_active = ? WHERE id = ? AND admin_id = ?`,
		active, id, adminID)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, id, adminID)
}

// Delete removes an endpoint owned by the admin.
func (r *WebhookRepo) Delete(ctx context.Context, adminID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM webhook_endpoints WHERE id = ? AND admin_id = ?`, id, adminID)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, id, adminID)
}

func requireRow(ctx context.Context, db *sql.DB, res sql.Result, id, adminID uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows: either absent or a no-op update on an owned row.
	var found uint64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM webhook_endpoints WHERE id = ? AND admin_id = ?`, id, adminID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrWebhookNotFound
	}
	return err
}

func scanWebhooks(rows *sql.Rows) ([]model.WebhookEndpoint, error) {
	out := make([]model.WebhookEndpoint, 0)
	for rows.Next() {
		var w model.WebhookEndpoint
		if err := rows.Scan(&w.ID, &w.AdminID, &w.Name, &w.URL, &w.EventType, &w.IsActive,
			&w.RetryAttempts, &w.RetryDelayMs, &w.TimeoutMs, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
