package api

import (
	"context"
	"net/http"
)

// Authentication happens upstream: the gateway verifies the token and
// forwards the caller as X-User-ID / X-User-Role headers. This package
// only carries that identity into the request context.

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type Identity struct {
	UserID string
	Role   string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type ctxKey struct{}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// WithIdentity is used by tests to prepare an authenticated request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequireIdentity rejects requests the gateway did not authenticate.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		role := r.Header.Get(HeaderUserRole)
		if userID == "" || role == "" {
			Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := WithIdentity(r.Context(), Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates privileged routes. It assumes RequireIdentity ran.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !id.IsAdmin() {
			Fail(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
