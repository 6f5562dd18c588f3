package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimelineEventType classifies workspace activity records.
type TimelineEventType string

const (
	TimelineEventIntake    TimelineEventType = "intake"
	TimelineEventChecklist TimelineEventType = "checklist"
	TimelineEventStatus    TimelineEventType = "status"
	TimelineEventMessage   TimelineEventType = "message"
	TimelineEventNote      TimelineEventType = "note"
)

func (t TimelineEventType) String() string { return string(t) }

func (t TimelineEventType) IsValid() bool {
	switch t {
	case TimelineEventIntake, TimelineEventChecklist, TimelineEventStatus,
		TimelineEventMessage, TimelineEventNote:
		return true
	}
	return false
}

// TimelineEvent is an immutable, append-only activity record on a workspace.
// Every checklist change, form action, and intake submission appends one.
type TimelineEvent struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Type        TimelineEventType
	Title       string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
