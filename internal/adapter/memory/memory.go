// Package memory provides in-memory repository implementations with the same
// method sets as the postgres adapters. Intended for local development
// (DATABASE_DRIVER=memory) and service-level tests; nothing survives a restart.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// Store holds all in-memory state behind one mutex. Repos share the store so
// cross-entity operations see a consistent view.
type Store struct {
	mu sync.Mutex

	workspaces map[uuid.UUID]*domain.ClientWorkspace
	links      map[uuid.UUID]*domain.IntakeLink
	responses  map[uuid.UUID]*domain.IntakeResponse
	events     map[uuid.UUID]*domain.TimelineEvent
	threads    map[uuid.UUID]*domain.MessageThread
	messages   map[uuid.UUID]*domain.Message
	sections   map[uuid.UUID]*domain.PageSection
	staff      map[uuid.UUID]*domain.StaffUser
	tokens     map[uuid.UUID]*domain.StaffRefreshToken
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		workspaces: make(map[uuid.UUID]*domain.ClientWorkspace),
		links:      make(map[uuid.UUID]*domain.IntakeLink),
		responses:  make(map[uuid.UUID]*domain.IntakeResponse),
		events:     make(map[uuid.UUID]*domain.TimelineEvent),
		threads:    make(map[uuid.UUID]*domain.MessageThread),
		messages:   make(map[uuid.UUID]*domain.Message),
		sections:   make(map[uuid.UUID]*domain.PageSection),
		staff:      make(map[uuid.UUID]*domain.StaffUser),
		tokens:     make(map[uuid.UUID]*domain.StaffRefreshToken),
	}
}

// Workspaces returns the workspace repository view of the store.
func (s *Store) Workspaces() *WorkspaceRepo { return &WorkspaceRepo{store: s} }

// IntakeLinks returns the intake link repository view of the store.
func (s *Store) IntakeLinks() *IntakeLinkRepo { return &IntakeLinkRepo{store: s} }

// IntakeResponses returns the intake response repository view of the store.
func (s *Store) IntakeResponses() *IntakeResponseRepo { return &IntakeResponseRepo{store: s} }

// Timeline returns the timeline repository view of the store.
func (s *Store) Timeline() *TimelineRepo { return &TimelineRepo{store: s} }

// Messages returns the message repository view of the store.
func (s *Store) Messages() *MessageRepo { return &MessageRepo{store: s} }

// PageSections returns the page section repository view of the store.
func (s *Store) PageSections() *PageSectionRepo { return &PageSectionRepo{store: s} }

// Staff returns the staff repository view of the store.
func (s *Store) Staff() *StaffRepo { return &StaffRepo{store: s} }

// StaffTokens returns the refresh token repository view of the store.
func (s *Store) StaffTokens() *StaffTokenRepo { return &StaffTokenRepo{store: s} }

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortByTimeDesc[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}

func sortByTimeAsc[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).Before(at(items[j]))
	})
}
