package staffauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/auth"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token that is missing or already revoked reads as a reuse
// attempt and is logged before ErrUnauthorized is returned.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*AuthResult, error) {
	if rawToken == "" {
		return nil, domain.NewValidationError("refreshToken", "required")
	}

	token, err := s.tokens.GetByHash(ctx, auth.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "refresh token reuse attempted")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("staffauth.Refresh get token: %w", err)
	}

	if token.IsExpired(s.now()) {
		return nil, domain.ErrUnauthorized
	}

	staff, err := s.staff.GetByID(ctx, token.StaffID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "refresh for missing staff user",
				slog.String("staff_id", token.StaffID.String()))
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("staffauth.Refresh get staff: %w", err)
	}

	if err := s.tokens.RevokeByID(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("staffauth.Refresh revoke token: %w", err)
	}

	result, err := s.issueTokens(ctx, staff)
	if err != nil {
		return nil, fmt.Errorf("staffauth.Refresh issue tokens: %w", err)
	}
	return result, nil
}

// Logout revokes every refresh token the staff user holds.
func (s *Service) Logout(ctx context.Context, staffID uuid.UUID) error {
	if err := s.tokens.RevokeAllByStaff(ctx, staffID); err != nil {
		return fmt.Errorf("staffauth.Logout: %w", err)
	}
	s.log.InfoContext(ctx, "staff logged out",
		slog.String("staff_id", staffID.String()))
	return nil
}

// ValidateToken checks an access token and returns the staff id and role.
func (s *Service) ValidateToken(token string) (uuid.UUID, string, error) {
	staffID, role, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return uuid.Nil, "", domain.ErrUnauthorized
	}
	return staffID, role, nil
}
