package workspace

import (
	"strings"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// CreateInput holds parameters for creating a workspace by hand, without an
// intake link.
type CreateInput struct {
	DisplayName string
	Contact     domain.ContactInfo
	Tags        []string
	TaxYears    []int
}

// Validate validates the create input.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.DisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "displayName", Message: "required"})
	} else if len(i.DisplayName) > 255 {
		errs = append(errs, domain.FieldError{Field: "displayName", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds a partial update; nil fields are left untouched.
type UpdateInput struct {
	DisplayName *string
	Contact     *domain.ContactInfo
	Tags        *[]string
	TaxYears    *[]int
}

// Validate validates the update input.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.DisplayName != nil {
		if strings.TrimSpace(*i.DisplayName) == "" {
			errs = append(errs, domain.FieldError{Field: "displayName", Message: "cannot be empty"})
		} else if len(*i.DisplayName) > 255 {
			errs = append(errs, domain.FieldError{Field: "displayName", Message: "too long"})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds list filters and pagination.
type ListInput struct {
	Status *domain.WorkspaceStatus
	Tag    *string
	Limit  int
	Offset int
}

func (i *ListInput) normalize() {
	if i.Limit <= 0 {
		i.Limit = defaultLimit
	}
	if i.Limit > maxLimit {
		i.Limit = maxLimit
	}
	if i.Offset < 0 {
		i.Offset = 0
	}
}

// ChecklistPatch maps checklist keys to their requested statuses.
// Unknown keys and unknown statuses are rejected, not ignored: staff edits
// are deliberate, unlike the tolerant read-path normalization.
type ChecklistPatch map[string]string

// Validate validates the patch against the canonical key and status sets.
func (p ChecklistPatch) Validate() error {
	var errs []domain.FieldError

	if len(p) == 0 {
		errs = append(errs, domain.FieldError{Field: "checklist", Message: "no changes supplied"})
	}
	for key, status := range p {
		if _, ok := domain.DefaultChecklist().Get(key); !ok {
			errs = append(errs, domain.FieldError{Field: key, Message: "unknown checklist key"})
			continue
		}
		if !domain.IsChecklistStatus(status) {
			errs = append(errs, domain.FieldError{Field: key, Message: "unknown status: " + status})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
