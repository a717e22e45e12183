// Package verification implements the code issuance and polling flow
// end users go through before a tool lets them book. Codes live in
// Redis with a TTL; the relational database is never touched, so the
// flow degrades to "unavailable" rather than erroring hard when Redis
// is down.
package verification

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowkick/mchat-tools/internal/utils"
)

// Statuses reported by Status. A user is "pending" while an unexpired
// code exists, "verified" after confirming it and "none" otherwise
// (never issued, or the code expired unconfirmed).
const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// ErrUnavailable is returned when no Redis client is configured.
var ErrUnavailable = errors.New("verification store unavailable")

// verifiedTTL bounds how long a confirmed verification is remembered.
const verifiedTTL = 24 * time.Hour

// Store issues and checks verification codes for Manychat users.
type Store struct {
	rdb     *redis.Client
	codeTTL time.Duration
}

// NewStore returns a Store bound to the given Redis client. The client
// may be nil; every operation then returns ErrUnavailable. codeTTL
// controls how long an issued code stays valid.
func NewStore(rdb *redis.Client, codeTTL time.Duration) *Store {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &Store{rdb: rdb, codeTTL: codeTTL}
}

func codeKey(manychatID string) string { return "verify:code:" + manychatID }
func okKey(manychatID string) string   { return "verify:ok:" + manychatID }

// Issue generates a fresh 6-digit code for the user, replacing any
// outstanding code and clearing a previous verification. It returns
// the code and its TTL so the bot can relay both to the user.
func (s *Store) Issue(ctx context.Context, manychatID string) (string, time.Duration, error) {
	if s.rdb == nil {
		return "", 0, ErrUnavailable
	}
	code, err := utils.RandomDigits(6)
	if err != nil {
		return "", 0, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, codeKey(manychatID), code, s.codeTTL)
	pipe.Del(ctx, okKey(manychatID))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", 0, err
	}
	return code, s.codeTTL, nil
}

// Confirm checks the submitted code against the outstanding one. On a
// match the code is consumed and the user is marked verified; the
// boolean reports whether the match succeeded.
func (s *Store) Confirm(ctx context.Context, manychatID, code string) (bool, error) {
	if s.rdb == nil {
		return false, ErrUnavailable
	}
	stored, err := s.rdb.Get(ctx, codeKey(manychatID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, codeKey(manychatID))
	pipe.Set(ctx, okKey(manychatID), "1", verifiedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Status reports where the user is in the verification flow.
func (s *Store) Status(ctx context.Context, manychatID string) (string, error) {
	if s.rdb == nil {
		return "", ErrUnavailable
	}
	if n, err := s.rdb.Exists(ctx, okKey(manychatID)).Result(); err != nil {
		return "", err
	} else if n > 0 {
		return StatusVerified, nil
	}
	if n, err := s.rdb.Exists(ctx, codeKey(manychatID)).Result(); err != nil {
		return "", err
	} else if n > 0 {
		return StatusPending, nil
	}
	return StatusNone, nil
}
