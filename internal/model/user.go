package model

import "time"

// ManychatUser represents an end user of the bot, identified by the
// subscriber id Manychat assigns on their platform. Rows are created
// lazily on first contact (booking, verification) with idempotent
// find-or-create semantics; a duplicate create attempt never errors.
//
// Fields:
//  ID         – primary key identifier.
//  ManychatID – external subscriber id, unique.
//  FirstName  – optional display name from the platform.
//  CreatedAt  – creation timestamp.
type ManychatUser struct {
	ID         uint64    // manychat_users.id
	ManychatID string    // manychat_users.manychat_id
	FirstName  *string   // manychat_users.first_name (nullable)
	CreatedAt  time.Time // manychat_users.created_at
}
