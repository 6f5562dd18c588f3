package intakelink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/intakelink"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/testhelper"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/linktoken"
)

// newRepo is a test helper that sets up the DB and returns a ready Repo.
func newRepo(t *testing.T) (*intakelink.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return intakelink.New(pool), pool
}

func newLink(t *testing.T, createdBy uuid.UUID, workspaceID *uuid.UUID, expiresAt time.Time) *domain.IntakeLink {
	t.Helper()

	_, hash, last4, err := linktoken.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.IntakeLink{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		TokenHash:   hash,
		TokenLast4:  last4,
		Channels:    []domain.IntakeChannel{domain.ChannelEmail, domain.ChannelSMS},
		Status:      domain.IntakeLinkActive,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		ExpiresAt:   expiresAt.Truncate(time.Microsecond),
	}
}

func TestRepo_CreateAndGetByTokenHash(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RolePreparer)
	ws := testhelper.SeedWorkspace(t, pool)

	link := newLink(t, staff.ID, &ws.ID, time.Now().UTC().Add(72*time.Hour))
	created, err := repo.Create(ctx, link)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if created.ID != link.ID {
		t.Fatalf("expected id %s, got %s", link.ID, created.ID)
	}

	got, err := repo.GetByTokenHash(ctx, link.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash: unexpected error: %v", err)
	}
	if got.WorkspaceID == nil || *got.WorkspaceID != ws.ID {
		t.Fatalf("expected workspace %s, got %v", ws.ID, got.WorkspaceID)
	}
	if got.Status != domain.IntakeLinkActive {
		t.Fatalf("expected status active, got %s", got.Status)
	}
	if len(got.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(got.Channels))
	}
	if got.Kind() != domain.IntakeLinkExistingWorkspace {
		t.Fatalf("expected existing_workspace kind, got %s", got.Kind())
	}
}

func TestRepo_GetByTokenHash_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByTokenHash(context.Background(), linktoken.Hash("no-such-token"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_MarkUsed_ClaimsOnce(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RolePreparer)
	ws := testhelper.SeedWorkspace(t, pool)

	link := newLink(t, staff.ID, &ws.ID, time.Now().UTC().Add(time.Hour))
	if _, err := repo.Create(ctx, link); err != nil {
		t.Fatalf("Create: %v", err)
	}

	usedAt := time.Now().UTC().Truncate(time.Microsecond)
	claimed, err := repo.MarkUsed(ctx, link.ID, &ws.ID, usedAt)
	if err != nil {
		t.Fatalf("MarkUsed: unexpected error: %v", err)
	}
	if !claimed {
		t.Fatal("expected first MarkUsed to claim the link")
	}

	claimed, err = repo.MarkUsed(ctx, link.ID, &ws.ID, usedAt)
	if err != nil {
		t.Fatalf("MarkUsed second: unexpected error: %v", err)
	}
	if claimed {
		t.Fatal("expected second MarkUsed to lose the claim")
	}

	got, err := repo.GetByTokenHash(ctx, link.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if got.Status != domain.IntakeLinkUsed {
		t.Fatalf("expected status used, got %s", got.Status)
	}
	if got.UsedAt == nil || !got.UsedAt.Equal(usedAt) {
		t.Fatalf("expected used_at %v, got %v", usedAt, got.UsedAt)
	}
	if got.UsedWorkspaceID == nil || *got.UsedWorkspaceID != ws.ID {
		t.Fatalf("expected used workspace %s, got %v", ws.ID, got.UsedWorkspaceID)
	}
}

func TestRepo_SetUsedWorkspace(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RoleAdmin)

	// New-client link: no workspace binding until redemption.
	link := newLink(t, staff.ID, nil, time.Now().UTC().Add(time.Hour))
	if _, err := repo.Create(ctx, link); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.MarkUsed(ctx, link.ID, nil, time.Now().UTC())
	if err != nil || !claimed {
		t.Fatalf("MarkUsed: claimed=%v err=%v", claimed, err)
	}

	ws := testhelper.SeedWorkspace(t, pool)
	if err := repo.SetUsedWorkspace(ctx, link.ID, ws.ID); err != nil {
		t.Fatalf("SetUsedWorkspace: %v", err)
	}

	got, err := repo.GetByTokenHash(ctx, link.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if got.UsedWorkspaceID == nil || *got.UsedWorkspaceID != ws.ID {
		t.Fatalf("expected used workspace %s, got %v", ws.ID, got.UsedWorkspaceID)
	}
}

func TestRepo_ExpireLapsed(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RolePreparer)
	ws := testhelper.SeedWorkspace(t, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	lapsed := newLink(t, staff.ID, &ws.ID, now.Add(-time.Minute))
	fresh := newLink(t, staff.ID, &ws.ID, now.Add(time.Hour))
	for _, l := range []*domain.IntakeLink{lapsed, fresh} {
		if _, err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := repo.ExpireLapsed(ctx, now); err != nil {
		t.Fatalf("ExpireLapsed: %v", err)
	}

	got, err := repo.GetByTokenHash(ctx, lapsed.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash lapsed: %v", err)
	}
	if got.Status != domain.IntakeLinkExpired {
		t.Fatalf("expected lapsed link expired, got %s", got.Status)
	}

	got, err = repo.GetByTokenHash(ctx, fresh.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash fresh: %v", err)
	}
	if got.Status != domain.IntakeLinkActive {
		t.Fatalf("expected fresh link active, got %s", got.Status)
	}
}

func TestRepo_DeleteTerminalBefore(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RolePreparer)
	ws := testhelper.SeedWorkspace(t, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	stale := newLink(t, staff.ID, &ws.ID, now.Add(-48*time.Hour))
	stale.Status = domain.IntakeLinkExpired
	stale.CreatedAt = now.Add(-72 * time.Hour)
	active := newLink(t, staff.ID, &ws.ID, now.Add(time.Hour))
	for _, l := range []*domain.IntakeLink{stale, active} {
		if _, err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := repo.DeleteTerminalBefore(ctx, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("DeleteTerminalBefore: %v", err)
	}

	if _, err := repo.GetByTokenHash(ctx, stale.TokenHash); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected stale link deleted, got %v", err)
	}
	if _, err := repo.GetByTokenHash(ctx, active.TokenHash); err != nil {
		t.Fatalf("expected active link kept, got %v", err)
	}
}

func TestRepo_ListByWorkspace(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	staff := testhelper.SeedStaff(t, pool, domain.RolePreparer)
	ws := testhelper.SeedWorkspace(t, pool)
	other := testhelper.SeedWorkspace(t, pool)

	for i := 0; i < 3; i++ {
		link := newLink(t, staff.ID, &ws.ID, time.Now().UTC().Add(time.Hour))
		if _, err := repo.Create(ctx, link); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	otherLink := newLink(t, staff.ID, &other.ID, time.Now().UTC().Add(time.Hour))
	if _, err := repo.Create(ctx, otherLink); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	links, err := repo.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListByWorkspace: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	for _, l := range links {
		if l.WorkspaceID == nil || *l.WorkspaceID != ws.ID {
			t.Fatalf("unexpected workspace binding: %v", l.WorkspaceID)
		}
	}
}
