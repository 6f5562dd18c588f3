// Package content implements managed marketing page sections: staff author
// and publish them, the public site reads only published ones.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// sectionRepo defines the page section repository interface needed by the service.
type sectionRepo interface {
	Upsert(ctx context.Context, s *domain.PageSection) (*domain.PageSection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PageSection, error)
	ListForPage(ctx context.Context, pageSlug string, publishedOnly bool) ([]*domain.PageSection, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*domain.PageSection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements page content operations.
type Service struct {
	log      *slog.Logger
	sections sectionRepo
}

// NewService creates a new content service instance.
func NewService(logger *slog.Logger, sections sectionRepo) *Service {
	return &Service{
		log:      logger.With("service", "content"),
		sections: sections,
	}
}

// UpsertInput holds a section create-or-replace request.
type UpsertInput struct {
	PageSlug   string
	SectionKey string
	Title      string
	Body       map[string]any
	Position   int
}

// Validate validates the upsert input.
func (i UpsertInput) Validate() error {
	var errs []domain.FieldError

	if i.PageSlug == "" {
		errs = append(errs, domain.FieldError{Field: "pageSlug", Message: "required"})
	} else if !slugPattern.MatchString(i.PageSlug) {
		errs = append(errs, domain.FieldError{Field: "pageSlug", Message: "must be a kebab-case slug"})
	}
	if i.SectionKey == "" {
		errs = append(errs, domain.FieldError{Field: "sectionKey", Message: "required"})
	} else if !slugPattern.MatchString(i.SectionKey) {
		errs = append(errs, domain.FieldError{Field: "sectionKey", Message: "must be a kebab-case slug"})
	}
	if i.Position < 0 {
		errs = append(errs, domain.FieldError{Field: "position", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Upsert creates or replaces the section keyed by (pageSlug, sectionKey).
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*domain.PageSection, error) {
	input.PageSlug = strings.ToLower(strings.TrimSpace(input.PageSlug))
	input.SectionKey = strings.ToLower(strings.TrimSpace(input.SectionKey))
	if err := input.Validate(); err != nil {
		return nil, err
	}

	section, err := s.sections.Upsert(ctx, &domain.PageSection{
		ID:         uuid.New(),
		PageSlug:   input.PageSlug,
		SectionKey: input.SectionKey,
		Title:      input.Title,
		Body:       input.Body,
		Position:   input.Position,
	})
	if err != nil {
		return nil, fmt.Errorf("content.Upsert: %w", err)
	}

	s.log.InfoContext(ctx, "page section saved",
		slog.String("page", section.PageSlug),
		slog.String("section", section.SectionKey))

	return section, nil
}

// PublicPage returns the published sections of a page in display order.
func (s *Service) PublicPage(ctx context.Context, pageSlug string) ([]*domain.PageSection, error) {
	pageSlug = strings.ToLower(strings.TrimSpace(pageSlug))
	if !slugPattern.MatchString(pageSlug) {
		return nil, domain.NewValidationError("pageSlug", "must be a kebab-case slug")
	}

	sections, err := s.sections.ListForPage(ctx, pageSlug, true)
	if err != nil {
		return nil, fmt.Errorf("content.PublicPage: %w", err)
	}
	return sections, nil
}

// AdminPage returns every section of a page, drafts included.
func (s *Service) AdminPage(ctx context.Context, pageSlug string) ([]*domain.PageSection, error) {
	pageSlug = strings.ToLower(strings.TrimSpace(pageSlug))
	if !slugPattern.MatchString(pageSlug) {
		return nil, domain.NewValidationError("pageSlug", "must be a kebab-case slug")
	}

	sections, err := s.sections.ListForPage(ctx, pageSlug, false)
	if err != nil {
		return nil, fmt.Errorf("content.AdminPage: %w", err)
	}
	return sections, nil
}

// SetPublished publishes or unpublishes a section.
func (s *Service) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*domain.PageSection, error) {
	section, err := s.sections.SetPublished(ctx, id, published)
	if err != nil {
		return nil, fmt.Errorf("content.SetPublished: %w", err)
	}

	s.log.InfoContext(ctx, "page section publish state changed",
		slog.String("page", section.PageSlug),
		slog.String("section", section.SectionKey),
		slog.Bool("published", published))

	return section, nil
}

// Delete removes a section entirely.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.sections.Delete(ctx, id); err != nil {
		return fmt.Errorf("content.Delete: %w", err)
	}
	return nil
}
