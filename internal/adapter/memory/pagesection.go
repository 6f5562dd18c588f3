package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// PageSectionRepo is the in-memory counterpart of the postgres page section repo.
type PageSectionRepo struct {
	store *Store
}

func (r *PageSectionRepo) Upsert(ctx context.Context, s *domain.PageSection) (*domain.PageSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for _, existing := range r.store.sections {
		if existing.PageSlug == s.PageSlug && existing.SectionKey == s.SectionKey {
			existing.Title = s.Title
			existing.Body = maps.Clone(s.Body)
			existing.Position = s.Position
			existing.UpdatedAt = now
			return cloneSection(existing), nil
		}
	}

	cp := cloneSection(s)
	cp.Published = false
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.store.sections[cp.ID] = cp
	return cloneSection(cp), nil
}

func (r *PageSectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PageSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sections[id]
	if !ok {
		return nil, fmt.Errorf("page_section %s: %w", id, domain.ErrNotFound)
	}
	return cloneSection(s), nil
}

func (r *PageSectionRepo) ListForPage(ctx context.Context, pageSlug string, publishedOnly bool) ([]*domain.PageSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*domain.PageSection
	for _, s := range r.store.sections {
		if s.PageSlug != pageSlug {
			continue
		}
		if publishedOnly && !s.Published {
			continue
		}
		result = append(result, cloneSection(s))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].SectionKey < result[j].SectionKey
	})
	return result, nil
}

func (r *PageSectionRepo) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*domain.PageSection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sections[id]
	if !ok {
		return nil, fmt.Errorf("page_section %s: %w", id, domain.ErrNotFound)
	}
	s.Published = published
	s.UpdatedAt = time.Now().UTC()
	return cloneSection(s), nil
}

func (r *PageSectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sections[id]; !ok {
		return fmt.Errorf("page_section %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.sections, id)
	return nil
}

func cloneSection(s *domain.PageSection) *domain.PageSection {
	cp := *s
	if s.Body != nil {
		cp.Body = maps.Clone(s.Body)
	}
	return &cp
}
