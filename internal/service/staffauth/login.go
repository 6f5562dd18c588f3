package staffauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rowanledger/taxdesk-backend/internal/auth"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// LoginInput holds staff credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Validate validates the login input.
func (i LoginInput) Validate() error {
	var errs []domain.FieldError

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Login authenticates a staff user with email + password.
// Returns ErrUnauthorized if the email is unknown or the password is wrong;
// the two cases are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := input.Validate(); err != nil {
		return nil, err
	}

	staff, err := s.staff.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("staffauth.Login get staff: %w", err)
	}

	if !auth.CheckPassword(staff.PasswordHash, input.Password) {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.issueTokens(ctx, staff)
	if err != nil {
		return nil, fmt.Errorf("staffauth.Login issue tokens: %w", err)
	}

	s.log.InfoContext(ctx, "staff logged in",
		slog.String("staff_id", staff.ID.String()),
		slog.String("role", staff.Role.String()))

	return result, nil
}
