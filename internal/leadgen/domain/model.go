package domain

import (
	"errors"

	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
)

// ErrProviderUnavailable means every tier of the provider chain errored.
// An empty result set is not this error; only exhausted-and-erroring is.
var ErrProviderUnavailable = errors.New("lead generation service unavailable")

// RawLead is the normalized shape every provider tier returns before
// scoring and persistence. Providers must default missing fields here,
// at the boundary, not downstream.
type RawLead struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	Address      string `json:"address"`
	Industry     string `json:"industry,omitempty"`
}

// Tier names the provider that produced a batch of raw leads.
type Tier string

const (
	TierSerpAPI   Tier = "serpapi"
	TierGemini    Tier = "gemini"
	TierSynthetic Tier = "synthetic"
	TierCache     Tier = "cache"
)

type GenerateRequest struct {
	BusinessType   string `json:"business_type"`
	Country        string `json:"country"`
	State          string `json:"state"`
	City           string `json:"city"`
	LeadsRequested int    `json:"leads_requested"`
	OrganizationID string `json:"organization_id"`
}

type Usage struct {
	LeadsGenerated         int    `json:"leads_generated"`
	CreditsUsed            int64  `json:"credits_used"`
	RemainingCredits       int64  `json:"remaining_credits"`
	Plan                   string `json:"plan"`
	TrialSearchesRemaining *int   `json:"trial_searches_remaining,omitempty"`
}

type GenerateResponse struct {
	Success  bool              `json:"success"`
	SearchID string            `json:"search_id"`
	Cached   bool              `json:"cached"`
	Provider Tier              `json:"provider"`
	Leads    []leaddomain.Lead `json:"leads"`
	Usage    Usage             `json:"usage"`
}
