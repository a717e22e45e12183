package handler

import (
	"net/http"
	"testing"
)

func TestLogoutAllRequiresAuth(t *testing.T) {
	// No admin id in the context (request never passed the JWT
	// middleware): the handler must refuse before touching storage.
	h := &AuthHandler{}
	rec := doRequest(h.LogoutAll, http.MethodPost, "/owner/logout_all", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := &AuthHandler{}
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"longenough"}`},
		{"bad email", `{"email":"not-an-email","password":"longenough"}`},
		{"short password", `{"email":"a@b.test","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h.Register, http.MethodPost, "/auth/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLogoutRequiresToken(t *testing.T) {
	h := &AuthHandler{}
	rec := doRequest(h.Logout, http.MethodPost, "/auth/logout", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
