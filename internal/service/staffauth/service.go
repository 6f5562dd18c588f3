// Package staffauth implements staff authentication: password login, rotating
// refresh tokens, and access token validation.
package staffauth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/config"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// staffRepo defines the staff repository interface needed by the service.
type staffRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	Create(ctx context.Context, u *domain.StaffUser) (*domain.StaffUser, error)
}

// tokenRepo defines the refresh token repository interface needed by the service.
type tokenRepo interface {
	Create(ctx context.Context, token *domain.StaffRefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.StaffRefreshToken, error)
	RevokeByID(ctx context.Context, id uuid.UUID) error
	RevokeAllByStaff(ctx context.Context, staffID uuid.UUID) error
}

// jwtManager defines the JWT token management interface needed by the service.
type jwtManager interface {
	GenerateAccessToken(staffID uuid.UUID, role string) (string, error)
	ValidateAccessToken(token string) (uuid.UUID, string, error)
	GenerateRefreshToken() (raw string, hash string, err error)
}

// Service implements staff auth operations.
type Service struct {
	log    *slog.Logger
	staff  staffRepo
	tokens tokenRepo
	jwt    jwtManager
	cfg    config.AuthConfig
	now    func() time.Time
}

// NewService creates a new staff auth service instance.
func NewService(
	logger *slog.Logger,
	staff staffRepo,
	tokens tokenRepo,
	jwt jwtManager,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		log:    logger.With("service", "staffauth"),
		staff:  staff,
		tokens: tokens,
		jwt:    jwt,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AuthResult carries a fresh token pair and the authenticated staff user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Staff        *domain.StaffUser
}

// issueTokens generates an access/refresh pair and stores the refresh hash.
func (s *Service) issueTokens(ctx context.Context, staff *domain.StaffUser) (*AuthResult, error) {
	accessToken, err := s.jwt.GenerateAccessToken(staff.ID, staff.Role.String())
	if err != nil {
		return nil, err
	}

	rawRefresh, hashRefresh, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.tokens.Create(ctx, &domain.StaffRefreshToken{
		ID:        uuid.New(),
		StaffID:   staff.ID,
		TokenHash: hashRefresh,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		Staff:        staff,
	}, nil
}
