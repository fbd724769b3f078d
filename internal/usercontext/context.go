// Package usercontext carries the authenticated identity through request contexts.
package usercontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Identity is the acting user attached to a request.
type Identity struct {
	UserID  snowflake.ID
	IsStaff bool
}

type identityKey struct{}

// WithIdentity stores the acting identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the acting identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}
