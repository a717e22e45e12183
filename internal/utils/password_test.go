package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	// A cost below bcrypt's minimum (e.g. unset BCRYPT_COST parsing to
	// zero) must still produce a usable hash instead of erroring.
	hash, err := HashPassword("hunter2hunter2", 0)
	if err != nil {
		t.Fatalf("HashPassword with cost 0: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default %d", cost, bcrypt.DefaultCost)
	}
}
