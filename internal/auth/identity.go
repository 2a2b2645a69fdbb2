package auth

import (
	"context"
	"strings"
)

// Identity is the caller resolved by the upstream auth gateway.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

type identityKey struct{}

// WithIdentity returns a context carrying id. Blank user ids are ignored.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	id.UserID = strings.TrimSpace(id.UserID)
	if id.UserID == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
