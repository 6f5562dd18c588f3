package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// CreateLinkInput holds parameters for issuing an intake link.
// WorkspaceID is nil for new-client links; TTL may only be set on those.
type CreateLinkInput struct {
	WorkspaceID *uuid.UUID
	Channels    []domain.IntakeChannel
	TTL         *time.Duration
}

// Validate validates the create-link input. TTL options for new-client links
// are checked against the configured set by the service.
func (i CreateLinkInput) Validate() error {
	var errs []domain.FieldError

	if len(i.Channels) == 0 {
		errs = append(errs, domain.FieldError{Field: "channels", Message: "required"})
	}
	for _, c := range i.Channels {
		if !c.IsValid() {
			errs = append(errs, domain.FieldError{Field: "channels", Message: "unknown channel: " + c.String()})
		}
	}

	// Existing-workspace links always get the fixed TTL; a supplied TTL is
	// an operator mistake, not something to silently ignore.
	if i.WorkspaceID != nil && i.TTL != nil {
		errs = append(errs, domain.FieldError{Field: "ttl", Message: "not configurable for workspace links"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RedeemInput holds one public intake form submission.
type RedeemInput struct {
	Token             string
	FullName          string
	Email             string
	Phone             string
	Address           string
	TaxYears          any
	ClientWorkspaceID *uuid.UUID
	Extra             map[string]any
}

// Validate checks the contact fields required to seed a new client
// workspace. Bound-link submissions are free-form and skip this. Token state
// is evaluated separately so a bad token is reported before field errors.
func (i RedeemInput) Validate() error {
	var errs []domain.FieldError

	if i.FullName == "" {
		errs = append(errs, domain.FieldError{Field: "fullName", Message: "required"})
	}
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Phone == "" {
		errs = append(errs, domain.FieldError{Field: "phone", Message: "required"})
	}
	if i.Address == "" {
		errs = append(errs, domain.FieldError{Field: "address", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
