package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenInvalid    = errors.New("token_invalid")
	ErrIDPUnavailable  = errors.New("identity_provider_unavailable")
)
