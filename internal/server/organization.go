package server

import (
	"net/http"

	"github.com/evoleadai/evolead/internal/authorization"
	"github.com/gin-gonic/gin"
)

// OrganizationUsage returns the billing panel view: plan, credit balance,
// trial progress and lifetime credits spent.
func (s *Server) OrganizationUsage(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgID, err := snowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authzSvc.Authorize(
		c.Request.Context(),
		identity.Actor(),
		orgID.String(),
		authorization.ObjectUsage,
		authorization.ActionUsageView,
	); err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.organizationSvc.UsageSummary(c.Request.Context(), orgID, s.plans.Current().TrialSearchLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	totalUsed, err := s.usageRepo.TotalCreditsUsed(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usage":              summary,
		"total_credits_used": totalUsed,
	})
}
