package domain

import (
	"time"

	"github.com/google/uuid"
)

// PageSection is one managed content block on a marketing page.
// Sections are keyed by (PageSlug, SectionKey) and only published sections
// are visible on the public site.
type PageSection struct {
	ID         uuid.UUID
	PageSlug   string
	SectionKey string
	Title      string
	Body       map[string]any
	Position   int
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
