package server

import (
	"errors"
	"net/http"
	"testing"

	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/authorization"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	organizationdomain "github.com/evoleadai/evolead/internal/organization/domain"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/evoleadai/evolead/internal/webhook"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation errors carry field details",
			err:        &leadgendomain.ValidationError{Fields: []string{"city is required"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "quota errors surface their message",
			err:        organizationdomain.NewTrialQuotaError(2, 2),
			wantStatus: http.StatusForbidden,
			wantError:  "Trial limit reached: you have used 2 of 2 free searches (0 remaining). Upgrade to continue generating leads.",
		},
		{
			name:       "invalid tokens are unauthorized",
			err:        authdomain.ErrTokenInvalid,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Unauthorized",
		},
		{
			name:       "unset webhook secret rejects rather than bypasses",
			err:        webhook.ErrSecretUnset,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Unauthorized",
		},
		{
			name:       "bad webhook signature",
			err:        webhook.ErrBadSignature,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Unauthorized",
		},
		{
			name:       "non-members are denied",
			err:        organizationdomain.ErrNotMember,
			wantStatus: http.StatusForbidden,
			wantError:  "Access denied",
		},
		{
			name:       "unrecognized plans are denied, not defaulted",
			err:        organizationdomain.ErrUnknownPlan,
			wantStatus: http.StatusForbidden,
			wantError:  "Access denied",
		},
		{
			name:       "policy denials",
			err:        authorization.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantError:  "Access denied",
		},
		{
			name:       "missing search",
			err:        searchdomain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Not found",
		},
		{
			name:       "missing lead metadata",
			err:        leaddomain.ErrMetadataNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Not found",
		},
		{
			name:       "unknown webhook status is a bad request",
			err:        webhook.ErrUnknownStatus,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "rate limited",
			err:        ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantError:  "Rate limit exceeded",
		},
		{
			name:       "provider chain exhausted",
			err:        leadgendomain.ErrProviderUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Service temporarily unavailable",
		},
		{
			name:       "identity provider down",
			err:        authdomain.ErrIDPUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Service temporarily unavailable",
		},
		{
			name:       "anything else is internal",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, payload.Error)
		})
	}
}

func TestMapErrorValidationDetails(t *testing.T) {
	status, payload := mapError(&leadgendomain.ValidationError{Fields: []string{"a", "b"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"a", "b"}, payload.Details)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(&leadgendomain.ValidationError{Fields: []string{"x"}})
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "invalid_request", code)

	errType, _ = classifyErrorForLog(authdomain.ErrTokenInvalid)
	assert.Equal(t, "auth_error", errType)

	errType, _ = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", errType)
}
