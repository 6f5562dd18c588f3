package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageAuthor identifies who wrote a message.
type MessageAuthor string

const (
	AuthorStaff  MessageAuthor = "staff"
	AuthorClient MessageAuthor = "client"
)

func (a MessageAuthor) String() string { return string(a) }

func (a MessageAuthor) IsValid() bool {
	switch a {
	case AuthorStaff, AuthorClient:
		return true
	}
	return false
}

// MessageThread is the single conversation attached to a workspace.
type MessageThread struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Subject     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is one entry in a thread. ReadAt is set when staff mark the
// thread read; client reads are not tracked.
type Message struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	Author    MessageAuthor
	AuthorID  *uuid.UUID // staff user id when Author is staff
	Body      string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// MessageThreadView is a thread with inbox-listing extras.
type MessageThreadView struct {
	Thread      MessageThread
	LastMessage *Message
	UnreadCount int
}
