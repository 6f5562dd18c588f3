package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	staffIDKey   ctxKey = "staff_id"
	staffRoleKey ctxKey = "staff_role"
	requestIDKey ctxKey = "request_id"
)

// WithStaffID stores the authenticated staff user ID in the context.
func WithStaffID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, staffIDKey, id)
}

// StaffIDFromCtx extracts the staff user ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func StaffIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(staffIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithStaffRole stores the authenticated staff user's role in the context.
func WithStaffRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, staffRoleKey, role)
}

// StaffRoleFromCtx extracts the staff role from the context.
// Returns an empty string if absent.
func StaffRoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(staffRoleKey).(string)
	return role
}

// IsAdminCtx reports whether the context carries an admin staff role.
func IsAdminCtx(ctx context.Context) bool {
	return StaffRoleFromCtx(ctx) == "admin"
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
