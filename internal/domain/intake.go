package domain

import (
	"time"

	"github.com/google/uuid"
)

// IntakeLinkStatus is the lifecycle state of an intake link.
// used and expired are terminal; whichever is reached first wins.
type IntakeLinkStatus string

const (
	IntakeLinkActive  IntakeLinkStatus = "active"
	IntakeLinkUsed    IntakeLinkStatus = "used"
	IntakeLinkExpired IntakeLinkStatus = "expired"
)

func (s IntakeLinkStatus) String() string { return string(s) }

func (s IntakeLinkStatus) IsValid() bool {
	switch s {
	case IntakeLinkActive, IntakeLinkUsed, IntakeLinkExpired:
		return true
	}
	return false
}

// IntakeLinkKind distinguishes links bound to an existing workspace from
// links that create a new client workspace on redemption.
type IntakeLinkKind string

const (
	IntakeLinkExistingWorkspace IntakeLinkKind = "existing_workspace"
	IntakeLinkNewClient         IntakeLinkKind = "new_client"
)

func (k IntakeLinkKind) String() string { return string(k) }

// IntakeChannel is a delivery channel the link may be distributed over.
type IntakeChannel string

const (
	ChannelEmail IntakeChannel = "email"
	ChannelSMS   IntakeChannel = "sms"
)

func (c IntakeChannel) String() string { return string(c) }

func (c IntakeChannel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// IntakeLink is a one-time bearer credential for the intake form.
// The raw token is never persisted; only its SHA-256 hash and a last-4
// display fragment are stored.
type IntakeLink struct {
	ID              uuid.UUID
	WorkspaceID     *uuid.UUID // nil for new-client links
	TokenHash       string
	TokenLast4      string
	Channels        []IntakeChannel
	Status          IntakeLinkStatus
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	ExpiresAt       time.Time
	UsedAt          *time.Time
	UsedWorkspaceID *uuid.UUID
}

// Kind derives the redemption flow from the workspace binding.
func (l *IntakeLink) Kind() IntakeLinkKind {
	if l.WorkspaceID == nil {
		return IntakeLinkNewClient
	}
	return IntakeLinkExistingWorkspace
}

// IsExpired reports whether the link's TTL has elapsed at now.
// The boundary is inclusive: a link whose ExpiresAt equals now is expired.
func (l *IntakeLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IntakeResponse is an immutable snapshot of one intake form submission.
// Append-only; responses are never updated or deleted.
type IntakeResponse struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	LinkID      *uuid.UUID
	Answers     map[string]any
	SubmittedAt time.Time
}
