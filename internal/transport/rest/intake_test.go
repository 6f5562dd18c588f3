package rest

import (
	"net/http"
	"strings"
	"testing"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

func TestIntake_CreateInspectRedeemFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, token := env.seedStaff(t, domain.RolePreparer)

	// Issue a new-client link.
	rec := env.do(t, http.MethodPost, "/api/intake-links", token, map[string]any{
		"channels": []string{"email"},
		"ttl":      "168h",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create link: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created createdLinkResponse
	decodeBody(t, rec, &created)
	if created.Token == "" || len(created.Token) != 64 {
		t.Fatalf("expected 64-char raw token, got %q", created.Token)
	}
	if created.Link.Kind != "new_client" {
		t.Fatalf("expected new_client kind, got %q", created.Link.Kind)
	}
	if !strings.HasSuffix(created.Token, created.Link.TokenLast4) {
		t.Error("tokenLast4 should be the raw token's suffix")
	}

	// Public inspect describes the full form.
	rec = env.do(t, http.MethodGet, "/api/intake-links/"+created.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var desc formDescriptorResponse
	decodeBody(t, rec, &desc)
	if !desc.Valid {
		t.Error("expected valid=true on a live link")
	}
	if len(desc.Steps) != 3 {
		t.Fatalf("expected 3 form steps for a new-client link, got %v", desc.Steps)
	}
	if desc.ClientWorkspaceID != nil {
		t.Error("new-client link should not carry a workspace id")
	}

	// Redeem creates a workspace.
	rec = env.do(t, http.MethodPost, "/api/intake-links/"+created.Token, "", map[string]any{
		"fullName": "Dana Whitfield",
		"email":    "dana@example.com",
		"phone":    "555-0134",
		"address":  "12 Elm St",
		"taxYears": []string{"2024", "2025"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var redeemed redeemResponse
	decodeBody(t, rec, &redeemed)
	if redeemed.WorkspaceID == "" || redeemed.IntakeResponse.ID == "" {
		t.Fatal("expected workspace id and intake response")
	}
	if redeemed.IntakeResponse.Answers["fullName"] != "Dana Whitfield" {
		t.Errorf("expected submitted answers echoed back, got %v", redeemed.IntakeResponse.Answers)
	}

	// The consumed token now reads as missing.
	rec = env.do(t, http.MethodGet, "/api/intake-links/"+created.Token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after redemption, got %d", rec.Code)
	}

	// The new workspace is visible to staff with the default checklist.
	rec = env.do(t, http.MethodGet, "/api/workspaces/"+redeemed.WorkspaceID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get workspace: expected 200, got %d", rec.Code)
	}
	var ws workspaceResponse
	decodeBody(t, rec, &ws)
	if ws.DisplayName != "Dana Whitfield" {
		t.Errorf("expected display name from form, got %q", ws.DisplayName)
	}
	if ws.Badge != domain.BadgeWaitingOnDocuments.String() {
		t.Errorf("expected default badge, got %q", ws.Badge)
	}
}

func TestIntake_BoundLinkFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, token := env.seedStaff(t, domain.RolePreparer)
	ws := createWorkspace(t, env, token, "Harris Family")

	rec := env.do(t, http.MethodPost, "/api/intake-links", token, map[string]any{
		"workspaceId": ws.ID,
		"channels":    []string{"email"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create link: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created createdLinkResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/api/intake-links/"+created.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var desc formDescriptorResponse
	decodeBody(t, rec, &desc)
	if !desc.Valid {
		t.Error("expected valid=true on a live link")
	}
	if desc.ClientWorkspaceID == nil || *desc.ClientWorkspaceID != ws.ID {
		t.Fatalf("expected bound workspace id %s, got %v", ws.ID, desc.ClientWorkspaceID)
	}
	if len(desc.Steps) != 1 || desc.Steps[0] != "documents" {
		t.Fatalf("expected documents-only step list, got %v", desc.Steps)
	}

	// Bound links take free-form responses; no contact fields required.
	rec = env.do(t, http.MethodPost, "/api/intake-links/"+created.Token, "", map[string]any{
		"extra": map[string]any{"documents": []string{"w2.pdf"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var redeemed redeemResponse
	decodeBody(t, rec, &redeemed)
	if redeemed.WorkspaceID != ws.ID {
		t.Fatalf("expected redemption against workspace %s, got %s", ws.ID, redeemed.WorkspaceID)
	}
	if _, ok := redeemed.IntakeResponse.Answers["documents"]; !ok {
		t.Errorf("expected documents recorded in answers, got %v", redeemed.IntakeResponse.Answers)
	}
}

func TestIntake_UnknownToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/intake-links/"+strings.Repeat("ab", 32), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIntake_RedeemMissingFields(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, token := env.seedStaff(t, domain.RolePreparer)

	rec := env.do(t, http.MethodPost, "/api/intake-links", token, map[string]any{
		"channels": []string{"sms"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create link: expected 201, got %d", rec.Code)
	}
	var created createdLinkResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodPost, "/api/intake-links/"+created.Token, "", map[string]any{
		"fullName": "Only Name",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Fields []fieldErrorResponse `json:"fields"`
	}
	decodeBody(t, rec, &body)
	if len(body.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", body.Fields)
	}

	// The failed submission must not burn the link.
	rec = env.do(t, http.MethodGet, "/api/intake-links/"+created.Token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected link still active, got %d", rec.Code)
	}
}

func TestIntake_CreateLinkRejectsBadTTL(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, token := env.seedStaff(t, domain.RolePreparer)

	rec := env.do(t, http.MethodPost, "/api/intake-links", token, map[string]any{
		"channels": []string{"email"},
		"ttl":      "36h",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for off-menu ttl, got %d", rec.Code)
	}
}
