package testhelper

import (
	"context"
	"testing"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	staff := SeedStaff(t, pool, domain.RoleAdmin)

	var email string
	err := pool.QueryRow(
		context.Background(),
		`SELECT email FROM staff_users WHERE id = $1`,
		staff.ID,
	).Scan(&email)
	if err != nil {
		t.Fatalf("expected staff user in DB, got error: %v", err)
	}

	if email != staff.Email {
		t.Fatalf("expected email %q, got %q", staff.Email, email)
	}
}
