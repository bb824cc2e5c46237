// Package middleware carries the already-resolved caller identity from
// the session collaborator into the request context. This service never
// issues or validates tokens.
package middleware

import (
	"context"
	"net/http"

	"github.com/valuelab/fundpipe/internal/core"
)

type contextKey int

const identityKey contextKey = iota

// Identity returns middleware that reads the resolved identity claims
// from the X-User-Id, X-User-Role, X-Org-Id and X-Parent-Id headers.
// A request without claims proceeds with no identity; authorization then
// denies downstream.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-User-Id"); id != "" {
				ident := &core.Identity{
					ID:             id,
					Role:           r.Header.Get("X-User-Role"),
					OrganizationID: r.Header.Get("X-Org-Id"),
					ParentID:       r.Header.Get("X-Parent-Id"),
				}
				r = r.WithContext(context.WithValue(r.Context(), identityKey, ident))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom returns the caller identity from ctx, or nil when the
// request carried no claims.
func IdentityFrom(ctx context.Context) *core.Identity {
	ident, _ := ctx.Value(identityKey).(*core.Identity)
	return ident
}

// WithIdentity injects an identity into ctx (for tests and CLI use).
func WithIdentity(ctx context.Context, ident *core.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}
