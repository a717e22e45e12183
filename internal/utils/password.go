package utils

import "golang.org/x/crypto/bcrypt"

// maxBcryptCost caps BCRYPT_COST; anything higher makes admin login
// take seconds per attempt.
const maxBcryptCost = 15

// HashPassword returns the bcrypt hash of plain. The cost comes
// straight from configuration, so out-of-range values are clamped
// rather than surfaced as a hashing error at registration time.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > maxBcryptCost {
		cost = maxBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
