package rest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/auth"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

func seedLoginStaff(t *testing.T, env *testEnv, email, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	_, err = env.store.Staff().Create(context.Background(), &domain.StaffUser{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Login Test",
		Role:         domain.RolePreparer,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}
}

func TestAuth_LoginRefreshLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedLoginStaff(t, env, "sam@rowanledger.com", "correct password")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "sam@rowanledger.com",
		"password": "correct password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var session authResponse
	decodeBody(t, rec, &session)
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if session.Staff.Role != "preparer" {
		t.Fatalf("expected preparer role, got %q", session.Staff.Role)
	}

	// Rotate the refresh token.
	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": session.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	var rotated authResponse
	decodeBody(t, rec, &rotated)
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// The old refresh token is dead.
	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": session.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on reuse, got %d", rec.Code)
	}

	// Logout revokes the rotated one too.
	rec = env.do(t, http.MethodPost, "/api/auth/logout", rotated.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": rotated.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestAuth_WrongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedLoginStaff(t, env, "sam@rowanledger.com", "correct password")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "sam@rowanledger.com",
		"password": "wrong password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_LogoutRequiresToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
