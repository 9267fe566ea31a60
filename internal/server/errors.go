package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/authorization"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	organizationdomain "github.com/evoleadai/evolead/internal/organization/domain"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/evoleadai/evolead/internal/webhook"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ErrorHandlingMiddleware converts errors pushed onto the gin context
// into the response envelope. Handlers call AbortWithError and return.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	var verr *leadgendomain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Details: verr.Fields,
		}
	}

	var qerr *organizationdomain.QuotaError
	if errors.As(err, &qerr) {
		return http.StatusForbidden, errorResponse{Error: qerr.Message}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrTokenInvalid),
		errors.Is(err, webhook.ErrMissingSignature),
		errors.Is(err, webhook.ErrMissingTimestamp),
		errors.Is(err, webhook.ErrStaleTimestamp),
		errors.Is(err, webhook.ErrBadSignature),
		errors.Is(err, webhook.ErrSecretUnset):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized"}

	case errors.Is(err, ErrForbidden),
		errors.Is(err, organizationdomain.ErrNotMember),
		errors.Is(err, organizationdomain.ErrUnknownPlan),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "Access denied"}

	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, searchdomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrMetadataNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not found"}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, webhook.ErrInvalidSearchID),
		errors.Is(err, webhook.ErrUnknownStatus):
		return http.StatusBadRequest, errorResponse{Error: "Invalid request"}

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: "Rate limit exceeded"}

	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, leadgendomain.ErrProviderUnavailable),
		errors.Is(err, authdomain.ErrIDPUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "Service temporarily unavailable"}
	}

	return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
}

// classifyErrorForLog labels errors for the request log without leaking
// internals into the response path.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		return "validation_error", "invalid_request"
	case status == http.StatusUnauthorized:
		return "auth_error", "unauthorized"
	case status == http.StatusForbidden:
		return "auth_error", "forbidden"
	case status == http.StatusNotFound:
		return "client_error", "not_found"
	case status == http.StatusTooManyRequests:
		return "rate_limit", "too_many_requests"
	case status == http.StatusServiceUnavailable:
		return "upstream_error", "service_unavailable"
	default:
		return "internal_error", "internal"
	}
}
