package rest

import (
	"net/http"
	"testing"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

func TestContent_PublishFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, adminToken := env.seedStaff(t, domain.RoleAdmin)

	// Draft a section.
	rec := env.do(t, http.MethodPut, "/api/admin/pages/pricing/sections/hero", adminToken, map[string]any{
		"title": "Simple pricing",
		"body":  map[string]any{"text": "Flat fee returns."},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var section sectionResponse
	decodeBody(t, rec, &section)
	if section.Published {
		t.Fatal("expected new section to start unpublished")
	}

	// Drafts are invisible on the public surface.
	rec = env.do(t, http.MethodGet, "/api/pages/pricing", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public page: expected 200, got %d", rec.Code)
	}
	var page struct {
		Sections []sectionResponse `json:"sections"`
	}
	decodeBody(t, rec, &page)
	if len(page.Sections) != 0 {
		t.Fatalf("expected no public sections before publish, got %d", len(page.Sections))
	}

	// Publish, then the public page shows it.
	rec = env.do(t, http.MethodPost, "/api/admin/sections/"+section.ID+"/publish", adminToken, map[string]bool{
		"published": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/pages/pricing", "", nil)
	decodeBody(t, rec, &page)
	if len(page.Sections) != 1 {
		t.Fatalf("expected 1 public section after publish, got %d", len(page.Sections))
	}

	// Delete removes it everywhere.
	rec = env.do(t, http.MethodDelete, "/api/admin/sections/"+section.ID, adminToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}

func TestContent_BadSlugRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, adminToken := env.seedStaff(t, domain.RoleAdmin)

	rec := env.do(t, http.MethodPut, "/api/admin/pages/Not%20A%20Slug/sections/hero", adminToken, map[string]any{
		"title": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
