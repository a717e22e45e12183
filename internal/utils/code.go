package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomDigits returns a string of n decimal digits from the secure
// random source, suitable for one-time verification codes. Leading
// zeros are preserved.
func RandomDigits(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
