package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/linktoken"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedStaff creates a staff user with the given role. Returns a filled domain.StaffUser.
func SeedStaff(t *testing.T, pool *pgxpool.Pool, role domain.StaffRole) domain.StaffUser {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	staff := domain.StaffUser{
		ID:           uuid.New(),
		Email:        "staff-" + suffix + "@example.com",
		Name:         "Staff " + suffix,
		Role:         role,
		PasswordHash: "$2a$10$test-hash-" + suffix,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO staff_users (id, email, name, role, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		staff.ID, staff.Email, staff.Name, string(staff.Role), staff.PasswordHash, staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedStaff insert staff_user: %v", err)
	}

	return staff
}

// SeedWorkspace creates an active client workspace with a default checklist.
// Returns a filled domain.ClientWorkspace.
func SeedWorkspace(t *testing.T, pool *pgxpool.Pool) domain.ClientWorkspace {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	ws := domain.ClientWorkspace{
		ID:          uuid.New(),
		DisplayName: "Client " + suffix,
		Status:      domain.WorkspaceActive,
		Contact: domain.ContactInfo{
			Name:  "Client " + suffix,
			Email: "client-" + suffix + "@example.com",
		},
		Tags:      []string{"test"},
		TaxYears:  []int{now.Year()},
		Checklist: domain.DefaultChecklist(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	checklist, err := json.Marshal(ws.Checklist)
	if err != nil {
		t.Fatalf("testhelper: SeedWorkspace marshal checklist: %v", err)
	}

	taxYears := make([]int32, len(ws.TaxYears))
	for i, y := range ws.TaxYears {
		taxYears[i] = int32(y)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO client_workspaces
		 (id, display_name, status, contact_name, contact_email, contact_phone, contact_address, tags, tax_years, checklist, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		ws.ID, ws.DisplayName, string(ws.Status),
		ws.Contact.Name, ws.Contact.Email, ws.Contact.Phone, ws.Contact.Address,
		ws.Tags, taxYears, checklist, ws.CreatedAt, ws.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWorkspace insert client_workspace: %v", err)
	}

	return ws
}

// SeedIntakeLink creates an active intake link bound to the given workspace
// (pass uuid.Nil for a new-client link), expiring in 72 hours.
// Returns the raw token alongside the stored link.
func SeedIntakeLink(t *testing.T, pool *pgxpool.Pool, createdBy uuid.UUID, workspaceID uuid.UUID) (string, domain.IntakeLink) {
	t.Helper()
	ctx := context.Background()

	raw, hash, last4, err := linktoken.Issue()
	if err != nil {
		t.Fatalf("testhelper: SeedIntakeLink issue token: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	link := domain.IntakeLink{
		ID:         uuid.New(),
		TokenHash:  hash,
		TokenLast4: last4,
		Channels:   []domain.IntakeChannel{domain.ChannelEmail},
		Status:     domain.IntakeLinkActive,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		ExpiresAt:  now.Add(72 * time.Hour),
	}
	if workspaceID != uuid.Nil {
		id := workspaceID
		link.WorkspaceID = &id
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO intake_links
		 (id, workspace_id, token_hash, token_last4, channels, status, created_by, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		link.ID, link.WorkspaceID, link.TokenHash, link.TokenLast4,
		[]string{string(domain.ChannelEmail)}, string(link.Status),
		link.CreatedBy, link.CreatedAt, link.ExpiresAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedIntakeLink insert intake_link: %v", err)
	}

	return raw, link
}
