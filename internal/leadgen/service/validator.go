package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/config"
	"github.com/evoleadai/evolead/internal/leadgen/domain"
)

const (
	maxBusinessTypeLen = 120
	maxCountryLen      = 56
	maxStateLen        = 56
	maxCityLen         = 85
)

// validate schema-checks the request and parses the organization id. It
// has no side effects; all problems come back as field messages.
func validate(req domain.GenerateRequest, plan config.PlanConfig) (snowflake.ID, *domain.ValidationError) {
	var fields []string

	checkText := func(name, value string, maxLen int) {
		if strings.TrimSpace(value) == "" {
			fields = append(fields, fmt.Sprintf("%s is required", name))
			return
		}
		if len(value) > maxLen {
			fields = append(fields, fmt.Sprintf("%s must be at most %d characters", name, maxLen))
		}
	}

	checkText("business_type", req.BusinessType, maxBusinessTypeLen)
	checkText("country", req.Country, maxCountryLen)
	checkText("state", req.State, maxStateLen)
	checkText("city", req.City, maxCityLen)

	maxLeads := plan.MaxLeadsPerRun
	if req.LeadsRequested < 1 || req.LeadsRequested > maxLeads {
		fields = append(fields, fmt.Sprintf("leads_requested must be between 1 and %d", maxLeads))
	} else if len(plan.AllowedVolumes) > 0 && !allowedVolume(req.LeadsRequested, plan.AllowedVolumes) {
		fields = append(fields, fmt.Sprintf("leads_requested must be one of %v", plan.AllowedVolumes))
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(req.OrganizationID))
	if err != nil || orgID == 0 {
		fields = append(fields, "organization_id is invalid")
	}

	if len(fields) > 0 {
		return 0, &domain.ValidationError{Fields: fields}
	}
	return orgID, nil
}

func allowedVolume(requested int, allowed []int) bool {
	for _, volume := range allowed {
		if requested == volume {
			return true
		}
	}
	return false
}

// creditsFor rounds the requested volume up to whole credits. A partial
// block still consumes a full credit.
func creditsFor(leadsRequested, leadsPerCredit int) int64 {
	if leadsPerCredit <= 0 {
		leadsPerCredit = 100
	}
	return int64((leadsRequested + leadsPerCredit - 1) / leadsPerCredit)
}
