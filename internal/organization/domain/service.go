package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("organization_not_found")
	ErrNotMember   = errors.New("organization_access_denied")
	ErrUnknownPlan = errors.New("unknown_plan")
	ErrInvalidName = errors.New("invalid_name")
)

// QuotaError carries the human-readable remaining-allowance message that
// quota rejections must surface to the caller.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string { return e.Message }

// NewTrialQuotaError reports how many of the free searches remain.
func NewTrialQuotaError(used, limit int) *QuotaError {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaError{Message: fmt.Sprintf(
		"Trial limit reached: you have used %d of %d free searches (%d remaining). Upgrade to continue generating leads.",
		used, limit, remaining,
	)}
}

// NewCreditQuotaError reports the shortfall for a paid-plan request.
func NewCreditQuotaError(required, balance int64) *QuotaError {
	return &QuotaError{Message: fmt.Sprintf(
		"Insufficient credits: this search needs %d credit(s) but you have %d remaining.",
		required, balance,
	)}
}

// UsageSummary is the billing panel view of an account.
type UsageSummary struct {
	Plan                   Plan   `json:"plan"`
	CreditBalance          int64  `json:"credit_balance"`
	TrialSearchesUsed      int    `json:"trial_searches_used"`
	TrialSearchesRemaining *int   `json:"trial_searches_remaining,omitempty"`
	OrganizationID         string `json:"organization_id"`
}

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	Create(ctx context.Context, name string, plan Plan, ownerID snowflake.ID) (*Organization, error)
	// MemberRole resolves the requester's role, returning ErrNotMember when
	// the user does not belong to the organization.
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error)
	UsageSummary(ctx context.Context, orgID snowflake.ID, trialLimit int) (*UsageSummary, error)
}
