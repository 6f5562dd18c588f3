package domain

import (
	"errors"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("email", "required")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
	want := "validation: email: required"
	if err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "fullName", Message: "required"},
		{Field: "phone", Message: "required"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
	if err.Error() != "validation: 2 errors" {
		t.Errorf("message: got %q", err.Error())
	}
}

func TestLinkErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	if errors.Is(ErrLinkExpired, ErrLinkNotFound) {
		t.Error("expired and not-found must be distinguishable")
	}
}
