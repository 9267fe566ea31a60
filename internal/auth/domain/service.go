package domain

import "context"

type Service interface {
	// Authenticate verifies a bearer token and resolves the caller identity.
	Authenticate(ctx context.Context, token string) (*Identity, error)
}
