package auth

import (
	"context"

	"github.com/princinho/elearnbackend/models"
)

// Identity is the authenticated principal of a request.
type Identity struct {
	User        models.User
	AccessToken string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
