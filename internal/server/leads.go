package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/authorization"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/gin-gonic/gin"
)

// ListLeads returns leads visible to the caller, scoped by search,
// organization or requesting user.
func (s *Server) ListLeads(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	searchID, err := snowflakeQuery(c, "searchId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	orgID, err := snowflakeQuery(c, "organizationId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	userID, err := snowflakeQuery(c, "userId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Resolve the owning organization so access is always checked against
	// one.
	if orgID == 0 && searchID != 0 {
		search, err := s.searchRepo.GetByID(c.Request.Context(), searchID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		orgID = search.OrgID
	}
	if orgID == 0 {
		AbortWithError(c, &leadgendomain.ValidationError{Fields: []string{"searchId or organizationId is required"}})
		return
	}

	if err := s.authorizeLeadView(c, identity.Actor(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	filter := leaddomain.ListFilter{
		OrgID:    orgID,
		SearchID: searchID,
		UserID:   userID,
		Search:   c.Query("search"),
	}
	views, pageInfo, err := s.leadSvc.List(c.Request.Context(), identity.UserID, filter, bindPagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads":      views,
		"pagination": pageInfo,
	})
}

func (s *Server) authorizeLeadView(c *gin.Context, actor string, orgID snowflake.ID) error {
	return s.authzSvc.Authorize(
		c.Request.Context(),
		actor,
		orgID.String(),
		authorization.ObjectLead,
		authorization.ActionLeadView,
	)
}
