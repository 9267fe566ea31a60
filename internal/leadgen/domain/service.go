package domain

import (
	"context"
	"strings"

	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
)

// ValidationError carries field-level messages for a malformed request.
// It maps to a client error, never to an internal one.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, "; ")
}

type Service interface {
	// Generate runs the full pipeline: validate, guard quota, check cache,
	// invoke the provider chain, score, persist, account, and shape the
	// response. The parent search always ends in a terminal status.
	Generate(ctx context.Context, requester authdomain.Identity, req GenerateRequest) (*GenerateResponse, error)
}
