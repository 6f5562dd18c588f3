package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/pkg/ctxutil"
)

// AccessTokenValidator checks an access token and returns the staff id and
// role it carries.
type AccessTokenValidator interface {
	ValidateToken(token string) (uuid.UUID, string, error)
}

// Auth returns middleware that validates a Bearer access token when one is
// present and stores the staff identity in the context. Requests without a
// token pass through anonymously; route groups that need an authenticated
// staff user stack RequireStaff on top.
func Auth(validator AccessTokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			staffID, role, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithStaffID(r.Context(), staffID)
			ctx = ctxutil.WithStaffRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff returns middleware that rejects requests lacking an
// authenticated staff identity. Use after Auth on staff-only route groups.
func RequireStaff() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ctxutil.StaffIDFromCtx(r.Context()); !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
