package repository

import (
	"context"
	"database/sql"

	"github.com/flowkick/mchat-tools/internal/model"
)

// UserRepo provides access to the manychat_users table. End users are
// never created through an admin flow; they appear lazily the first
// time their subscriber id shows up in a booking or verification
// request.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Upsert finds or creates a user by Manychat subscriber id and
// returns the row id. The ON DUPLICATE KEY clause makes the call
// idempotent: a concurrent duplicate insert resolves to the existing
// row instead of erroring.
func (r *UserRepo) Upsert(ctx context.Context, manychatID string, firstName *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO manychat_users (manychat_id, first_name) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id),
		 first_name = COALESCE(VALUES(first_name), first_name)`,
		manychatID, firstName)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertTx is Upsert within an existing transaction.
func (r *UserRepo) UpsertTx(ctx context.Context, tx *sql.Tx, manychatID string, firstName *string) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO manychat_users (manychat_id, first_name) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id),
		 first_name = COALESCE(VALUES(first_name), first_name)`,
		manychatID, firstName)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByManychatID fetches a user by subscriber id. Returns
// sql.ErrNoRows when the user has never interacted with the bot.
func (r *UserRepo) GetByManychatID(ctx context.Context, manychatID string) (model.ManychatUser, error) {
	var u model.ManychatUser
	var first sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, manychat_id, first_name, created_at FROM manychat_users WHERE manychat_id = ? LIMIT 1`,
		manychatID).Scan(&u.ID, &u.ManychatID, &first, &u.CreatedAt)
	if err != nil {
		return u, err
	}
	if first.Valid {
		f := first.String
		u.FirstName = &f
	}
	return u, nil
}
