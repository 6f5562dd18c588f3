package middleware

import (
	"context"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrForbidden if the context staff user is not
// an admin. Use in handlers guarding admin-only operations.
func RequireAdmin(ctx context.Context) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	return nil
}
