package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flowkick/mchat-tools/internal/model"
)

// ErrToolNotFound is returned when a tool lookup fails.
var ErrToolNotFound = errors.New("tool not found")

// ToolRepo provides admin-facing CRUD for the tools table. Ownership
// is enforced by scoping every query to the admin id; a tool owned by
// another admin behaves like a missing tool.
type ToolRepo struct {
	db *sql.DB
}

// NewToolRepo constructs a ToolRepo with the given DB handle.
func NewToolRepo(db *sql.DB) *ToolRepo { return &ToolRepo{db: db} }

const toolColumns = `id, admin_id, name, description, is_active, min_duration_min, max_duration_min, created_at, updated_at`

func scanTool(row *sql.Row) (model.Tool, error) {
	var t model.Tool
	var desc sql.NullString
	err := row.Scan(&t.ID, &t.AdminID, &t.Name, &desc, &t.IsActive,
		&t.MinDurationMin, &t.MaxDurationMin, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if desc.Valid {
		d := desc.String
		t.Description = &d
	}
	return t, nil
}

// Create inserts a tool and reads the row back so defaults and
// timestamps are populated on the returned model.
func (r *ToolRepo) Create(ctx context.Context, t *model.Tool) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tools (admin_id, name, description, min_duration_min, max_duration_min)
		 VALUES (?, ?, ?, ?, ?)`,
		t.AdminID, t.Name, t.Description, t.MinDurationMin, t.MaxDurationMin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanTool(r.db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = ?`, uint64(id)))
	if err != nil {
		return err
	}
	*t = created
	return nil
}

// GetByIDAndAdmin fetches a tool owned by the given admin. Returns
// ErrToolNotFound when the tool does not exist or belongs to someone else.
func (r *ToolRepo) GetByIDAndAdmin(ctx context.Context, id, adminID uint64) (model.Tool, error) {
	t, err := scanTool(r.db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = ? AND admin_id = ?`, id, adminID))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrToolNotFound
	}
	return t, err
}

// ListByAdmin returns all tools owned by the admin, newest first.
func (r *ToolRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Tool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE admin_id = ? ORDER BY created_at DESC, id DESC`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tools := make([]model.Tool, 0)
	for rows.Next() {
		var t model.Tool
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.AdminID, &t.Name, &desc, &t.IsActive,
			&t.MinDurationMin, &t.MaxDurationMin, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			t.Description = &d
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// ListActive returns every active tool. Used by the public catalogue
// endpoint the bot links end users to.
func (r *ToolRepo) ListActive(ctx context.Context) ([]model.Tool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tools := make([]model.Tool, 0)
	for rows.Next() {
		var t model.Tool
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.AdminID, &t.Name, &desc, &t.IsActive,
			&t.MinDurationMin, &t.MaxDurationMin, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			t.Description = &d
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// Update applies the given fields to a tool owned by the admin and
// reads the row back. Returns ErrToolNotFound when no row matched.
func (r *ToolRepo) Update(ctx context.Context, t *model.Tool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tools SET name = ?, description = ?, is_active = ?, min_duration_min = ?, max_duration_min = ?
		 WHERE id = ? AND admin_id = ?`,
		t.Name, t.Description, t.IsActive, t.MinDurationMin, t.MaxDurationMin, t.ID, t.AdminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row may exist with identical values; distinguish from absent.
		if _, err := r.GetByIDAndAdmin(ctx, t.ID, t.AdminID); err != nil {
			return err
		}
	}
	updated, err := scanTool(r.db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = ?`, t.ID))
	if err != nil {
		return err
	}
	*t = updated
	return nil
}

// Delete removes a tool owned by the admin. Templates and bookings
// cascade at the schema level. Returns ErrToolNotFound when no row
// matched.
func (r *ToolRepo) Delete(ctx context.Context, id, adminID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tools WHERE id = ? AND admin_id = ?`, id, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrToolNotFound
	}
	return nil
}
