package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/linktoken"
)

func newTestLink(t *testing.T, workspaceID *uuid.UUID) *domain.IntakeLink {
	t.Helper()

	_, hash, last4, err := linktoken.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now := time.Now().UTC()
	return &domain.IntakeLink{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		TokenHash:   hash,
		TokenLast4:  last4,
		Channels:    []domain.IntakeChannel{domain.ChannelEmail},
		Status:      domain.IntakeLinkActive,
		CreatedBy:   uuid.New(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(72 * time.Hour),
	}
}

func TestIntakeLinkRepo_MarkUsed_SingleClaimUnderConcurrency(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.IntakeLinks()
	ctx := context.Background()

	wsID := uuid.New()
	link := newTestLink(t, &wsID)
	if _, err := repo.Create(ctx, link); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const attempts = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		claims int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.MarkUsed(ctx, link.ID, &wsID, time.Now().UTC())
			if err != nil {
				t.Errorf("MarkUsed: %v", err)
				return
			}
			if claimed {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if claims != 1 {
		t.Fatalf("expected exactly one claim, got %d", claims)
	}

	got, err := repo.GetByTokenHash(ctx, link.TokenHash)
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if got.Status != domain.IntakeLinkUsed {
		t.Fatalf("expected status used, got %s", got.Status)
	}
}

func TestWorkspaceRepo_ListFiltersAndPaginates(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.Workspaces()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		status := domain.WorkspaceActive
		tags := []string{"returning"}
		if i%2 == 1 {
			status = domain.WorkspaceInactive
			tags = nil
		}
		ws := &domain.ClientWorkspace{
			ID:          uuid.New(),
			DisplayName: "Client",
			Status:      status,
			Tags:        tags,
			Checklist:   domain.DefaultChecklist(),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base,
		}
		if _, err := repo.Create(ctx, ws); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	active := domain.WorkspaceActive
	list, total, err := repo.List(ctx, domain.WorkspaceFilter{Status: &active, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 active workspaces, got %d", total)
	}
	if len(list) != 2 {
		t.Fatalf("expected page of 2, got %d", len(list))
	}
	if !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	tag := "returning"
	_, total, err = repo.List(ctx, domain.WorkspaceFilter{Tag: &tag, Limit: 10})
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 tagged workspaces, got %d", total)
	}
}

func TestWorkspaceRepo_TouchReactivates(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.Workspaces()
	ctx := context.Background()

	ws := &domain.ClientWorkspace{
		ID:        uuid.New(),
		Status:    domain.WorkspaceInactive,
		Checklist: domain.DefaultChecklist(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := repo.Create(ctx, ws); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC()
	got, err := repo.Touch(ctx, ws.ID, at)
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if got.Status != domain.WorkspaceActive {
		t.Fatalf("expected active after touch, got %s", got.Status)
	}
	if got.LastActivityAt == nil || !got.LastActivityAt.Equal(at) {
		t.Fatalf("expected last activity %v, got %v", at, got.LastActivityAt)
	}
}

func TestMessageRepo_ThreadLifecycle(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.Messages()
	ctx := context.Background()

	wsID := uuid.New()
	thread, err := repo.EnsureThread(ctx, wsID, "Client conversation")
	if err != nil {
		t.Fatalf("EnsureThread: %v", err)
	}

	again, err := repo.EnsureThread(ctx, wsID, "ignored")
	if err != nil {
		t.Fatalf("EnsureThread again: %v", err)
	}
	if again.ID != thread.ID {
		t.Fatal("expected one thread per workspace")
	}

	now := time.Now().UTC()
	for i, author := range []domain.MessageAuthor{domain.AuthorClient, domain.AuthorClient, domain.AuthorStaff} {
		msg := &domain.Message{
			ID:        uuid.New(),
			ThreadID:  thread.ID,
			Author:    author,
			Body:      "hello",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if _, err := repo.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}

	views, total, err := repo.ListThreads(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected one thread view, got total=%d len=%d", total, len(views))
	}
	if views[0].UnreadCount != 2 {
		t.Fatalf("expected 2 unread client messages, got %d", views[0].UnreadCount)
	}
	if views[0].LastMessage == nil || views[0].LastMessage.Author != domain.AuthorStaff {
		t.Fatal("expected the staff reply to be the last message")
	}

	marked, err := repo.MarkThreadRead(ctx, thread.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("MarkThreadRead: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}

	views, _, err = repo.ListThreads(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListThreads after read: %v", err)
	}
	if views[0].UnreadCount != 0 {
		t.Fatalf("expected 0 unread, got %d", views[0].UnreadCount)
	}
}

func TestPageSectionRepo_UpsertKeepsPublishedFlag(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.PageSections()
	ctx := context.Background()

	s := &domain.PageSection{
		ID:         uuid.New(),
		PageSlug:   "home",
		SectionKey: "hero",
		Title:      "Welcome",
		Body:       map[string]any{"text": "v1"},
	}
	created, err := repo.Upsert(ctx, s)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.Published {
		t.Fatal("expected new sections to start unpublished")
	}

	if _, err := repo.SetPublished(ctx, created.ID, true); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}

	s2 := &domain.PageSection{
		ID:         uuid.New(),
		PageSlug:   "home",
		SectionKey: "hero",
		Title:      "Welcome back",
		Body:       map[string]any{"text": "v2"},
	}
	updated, err := repo.Upsert(ctx, s2)
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("expected upsert to hit the same section")
	}
	if !updated.Published {
		t.Fatal("expected upsert to keep the published flag")
	}
	if updated.Title != "Welcome back" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}

	public, err := repo.ListForPage(ctx, "home", true)
	if err != nil {
		t.Fatalf("ListForPage: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected 1 published section, got %d", len(public))
	}
}

func TestStaffTokenRepo_RevokeAll(t *testing.T) {
	t.Parallel()
	store := NewStore()
	repo := store.StaffTokens()
	ctx := context.Background()

	staffID := uuid.New()
	var hashes []string
	for i := 0; i < 3; i++ {
		hash := linktoken.Hash("refresh-" + uuid.New().String())
		token := &domain.StaffRefreshToken{
			ID:        uuid.New(),
			StaffID:   staffID,
			TokenHash: hash,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Create(ctx, token); err != nil {
			t.Fatalf("Create: %v", err)
		}
		hashes = append(hashes, hash)
	}

	if err := repo.RevokeAllByStaff(ctx, staffID); err != nil {
		t.Fatalf("RevokeAllByStaff: %v", err)
	}

	for _, h := range hashes {
		if _, err := repo.GetByHash(ctx, h); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected revoked token hidden, got %v", err)
		}
	}
}
