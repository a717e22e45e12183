package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flowkick/mchat-tools/internal/model"
)

// ErrTemplateNotFound is returned when a template lookup fails.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepo provides CRUD for availability_templates. Every write
// verifies through the tools table that the template's tool belongs
// to the calling admin.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo constructs a TemplateRepo with the given DB handle.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateColumns = `id, tool_id, day_of_week, start_minute, end_minute, slot_minutes, is_active, created_at, updated_at`

// Create inserts a template for a tool owned by the admin. Returns
// ErrToolNotFound when the tool does not exist, ErrForbidden when it
// belongs to another admin.
func (r *TemplateRepo) Create(ctx context.Context, adminID uint64, t *model.AvailabilityTemplate) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT admin_id FROM tools WHERE id = ?`, t.ToolID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrToolNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != adminID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO availability_templates (tool_id, day_of_week, start_minute, end_minute, slot_minutes)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ToolID, t.DayOfWeek, t.StartMinute, t.EndMinute, t.SlotMinutes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM availability_templates WHERE id = ?`, t.ID).
		Scan(&t.ID, &t.ToolID, &t.DayOfWeek, &t.StartMinute, &t.EndMinute,
			&t.SlotMinutes, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
}

// ListByTool returns all templates (active and disabled) for a tool
// owned by the admin, ordered by weekday then start time.
func (r *TemplateRepo) ListByTool(ctx context.Context, adminID, toolID uint64) ([]model.AvailabilityTemplate, error) {
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
		`SELECT `+templateColumns+` FROM availability_templates
		 WHERE tool_id = ? ORDER BY day_of_week, start_minute`, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailabilityTemplate, 0)
	for rows.Next() {
		var t model.AvailabilityTemplate
		if err := rows.Scan(&t.ID, &t.ToolID, &t.DayOfWeek, &t.StartMinute, &t.EndMinute,
			&t.SlotMinutes, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetActive toggles a template's active flag. Soft-disable is the
// normal way to retire a window; rows are only deleted outright when
// an admin removes them explicitly.
func (r *TemplateRepo) SetActive(ctx context.Context, adminID, templateID uint64, active bool) error {
	return r.mutate(ctx, adminID, templateID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE availability_templates SET is_active = ? WHERE id = ?`, active, templateID)
		return err
	})
}

// Delete removes a template owned (via its tool) by the admin.
func (r *TemplateRepo) Delete(ctx context.Context, adminID, templateID uint64) error {
	return r.mutate(ctx, adminID, templateID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM availability_templates WHERE id = ?`, templateID)
		return err
	})
}

// mutate runs fn after verifying the template exists and its tool is
// owned by adminID, all in one transaction.
func (r *TemplateRepo) mutate(ctx context.Context, adminID, templateID uint64, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var ownerID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT t.admin_id FROM availability_templates a JOIN tools t ON t.id = a.tool_id WHERE a.id = ?`,
		templateID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTemplateNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != adminID {
		return ErrForbidden
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
