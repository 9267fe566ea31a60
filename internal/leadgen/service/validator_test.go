package service

import (
	"strings"
	"testing"

	"github.com/evoleadai/evolead/internal/config"
	"github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() domain.GenerateRequest {
	return domain.GenerateRequest{
		BusinessType:   "Bakery",
		Country:        "USA",
		State:          "CA",
		City:           "San Francisco",
		LeadsRequested: 10,
		OrganizationID: "1234567890123456789",
	}
}

func TestValidate(t *testing.T) {
	plan := config.DefaultPlanConfig()

	t.Run("accepts a complete request", func(t *testing.T) {
		orgID, verr := validate(validRequest(), plan)
		require.Nil(t, verr)
		assert.NotZero(t, orgID)
	})

	t.Run("collects every missing field", func(t *testing.T) {
		_, verr := validate(domain.GenerateRequest{}, plan)
		require.NotNil(t, verr)
		assert.Len(t, verr.Fields, 6)
		assert.Contains(t, verr.Fields, "business_type is required")
		assert.Contains(t, verr.Fields, "country is required")
		assert.Contains(t, verr.Fields, "state is required")
		assert.Contains(t, verr.Fields, "city is required")
		assert.Contains(t, verr.Fields, "organization_id is invalid")
	})

	t.Run("rejects oversized text fields", func(t *testing.T) {
		req := validRequest()
		req.BusinessType = strings.Repeat("x", maxBusinessTypeLen+1)
		_, verr := validate(req, plan)
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields[0], "business_type must be at most")
	})

	t.Run("bounds leads_requested", func(t *testing.T) {
		for _, n := range []int{0, -5, plan.MaxLeadsPerRun + 1} {
			req := validRequest()
			req.LeadsRequested = n
			_, verr := validate(req, plan)
			require.NotNil(t, verr, "leads_requested=%d", n)
		}
	})

	t.Run("enforces allowed volumes when configured", func(t *testing.T) {
		restricted := plan
		restricted.AllowedVolumes = []int{10, 25, 50}

		req := validRequest()
		req.LeadsRequested = 25
		_, verr := validate(req, restricted)
		assert.Nil(t, verr)

		req.LeadsRequested = 30
		_, verr = validate(req, restricted)
		require.NotNil(t, verr)
		assert.Contains(t, verr.Fields[0], "must be one of")
	})

	t.Run("rejects garbage organization ids", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "0", "12.5"} {
			req := validRequest()
			req.OrganizationID = raw
			_, verr := validate(req, plan)
			require.NotNil(t, verr, "organization_id=%q", raw)
		}
	})
}

func TestCreditsFor(t *testing.T) {
	tests := []struct {
		requested int
		perCredit int
		want      int64
	}{
		{1, 100, 1},
		{99, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
		{250, 100, 3},
		{500, 100, 5},
		{10, 0, 1}, // zero block size falls back to 100
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, creditsFor(tt.requested, tt.perCredit), "creditsFor(%d, %d)", tt.requested, tt.perCredit)
	}
}
