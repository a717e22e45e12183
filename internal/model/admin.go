package model

import "time"

// Admin represents a dashboard account as stored in the `admins`
// table. Admins own tools, availability templates and webhook
// endpoints. The json tags are omitted because these structs are
// used internally by the repository layer; handlers define their
// own response types.
//
// Fields:
//  ID           – primary key identifier of the admin.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Admin struct {
	ID           uint64    // admins.id
	Email        string    // admins.email
	PasswordHash string    // admins.password_hash
	IsActive     bool      // admins.is_active
	CreatedAt    time.Time // admins.created_at
	UpdatedAt    time.Time // admins.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to an admin and contains metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  AdminID   – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AdminID   uint64     // refresh_tokens.admin_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
