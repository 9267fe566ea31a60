package authorization

import (
	"context"
	"errors"
)

var (
	ErrInvalidActor        = errors.New("authorization_invalid_actor")
	ErrInvalidOrganization = errors.New("authorization_invalid_organization")
	ErrInvalidObject       = errors.New("authorization_invalid_object")
	ErrInvalidAction       = errors.New("authorization_invalid_action")
	ErrForbidden           = errors.New("authorization_forbidden")
)

// Service answers capability questions scoped to an organization. Actors are
// "user:<id>" or "system".
type Service interface {
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}
