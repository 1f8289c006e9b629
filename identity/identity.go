// Package identity exposes the signed-in customer, if any. The actual
// sign-in lives in an external provider; this core only consumes its
// tokens and redirect targets.
package identity

import "context"

// Identity is the signed-in customer.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Provider resolves identities from bearer tokens and supplies the
// authentication redirects. The HTTP middleware consumes this, so a
// deployment can swap the token scheme without touching the surface.
type Provider interface {
	ParseToken(token string) (Identity, error)
	Current(ctx context.Context) (Identity, bool)
	SignInURL(returnTo string) string
	SignOut(ctx context.Context) error
}

type ctxKey struct{}

// NewContext attaches an identity to the context.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached to the context, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
