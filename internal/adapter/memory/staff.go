package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// StaffRepo is the in-memory counterpart of the postgres staff repo.
type StaffRepo struct {
	store *Store
}

func (r *StaffRepo) Create(ctx context.Context, u *domain.StaffUser) (*domain.StaffUser, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.staff {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("staff_user %s: %w", u.Email, domain.ErrAlreadyExists)
		}
	}

	cp := *u
	r.store.staff[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *StaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.staff[id]
	if !ok {
		return nil, fmt.Errorf("staff_user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.staff {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("staff_user %s: %w", email, domain.ErrNotFound)
}

// StaffTokenRepo is the in-memory counterpart of the postgres refresh token repo.
type StaffTokenRepo struct {
	store *Store
}

func (r *StaffTokenRepo) Create(ctx context.Context, token *domain.StaffRefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := cloneToken(token)
	r.store.tokens[token.ID] = cp
	return nil
}

func (r *StaffTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.StaffRefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			return cloneToken(t), nil
		}
	}
	return nil, fmt.Errorf("staff_refresh_token: %w", domain.ErrNotFound)
}

func (r *StaffTokenRepo) RevokeByID(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tokens[id]
	if ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
	}
	return nil
}

func (r *StaffTokenRepo) RevokeAllByStaff(ctx context.Context, staffID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for _, t := range r.store.tokens {
		if t.StaffID == staffID && t.RevokedAt == nil {
			at := now
			t.RevokedAt = &at
		}
	}
	return nil
}

func (r *StaffTokenRepo) DeleteExpired(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	var deleted int
	for id, t := range r.store.tokens {
		if t.RevokedAt != nil || t.ExpiresAt.Before(now) {
			delete(r.store.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneToken(t *domain.StaffRefreshToken) *domain.StaffRefreshToken {
	cp := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		cp.RevokedAt = &at
	}
	return &cp
}
