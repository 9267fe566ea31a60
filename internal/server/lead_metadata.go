package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/authorization"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/gin-gonic/gin"
)

type leadMetadataRequest struct {
	LeadID     string  `json:"lead_id"`
	IsFavorite *bool   `json:"is_favorite"`
	Notes      *string `json:"notes"`
}

// UpsertLeadMetadata sets the caller's favorite flag and note on a lead.
func (s *Server) UpsertLeadMetadata(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req leadMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &leadgendomain.ValidationError{Fields: []string{"body must be valid JSON"}})
		return
	}
	leadID, err := parseLeadID(req.LeadID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if req.IsFavorite == nil && req.Notes == nil {
		AbortWithError(c, &leadgendomain.ValidationError{Fields: []string{"is_favorite or notes is required"}})
		return
	}

	if err := s.authorizeLeadUpdate(c, identity.Actor(), leadID); err != nil {
		AbortWithError(c, err)
		return
	}

	meta, err := s.leadSvc.SetMetadata(c.Request.Context(), leadID, identity.UserID, leaddomain.MetadataUpdate{
		IsFavorite: req.IsFavorite,
		Notes:      req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// DeleteLeadMetadata removes the caller's favorite/note state for a lead.
func (s *Server) DeleteLeadMetadata(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req leadMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &leadgendomain.ValidationError{Fields: []string{"body must be valid JSON"}})
		return
	}
	leadID, err := parseLeadID(req.LeadID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.leadSvc.RemoveMetadata(c.Request.Context(), leadID, identity.UserID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseLeadID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, &leadgendomain.ValidationError{Fields: []string{"lead_id is invalid"}}
	}
	return id, nil
}

func (s *Server) authorizeLeadUpdate(c *gin.Context, actor string, leadID snowflake.ID) error {
	lead, err := s.leadSvc.Get(c.Request.Context(), leadID)
	if err != nil {
		return err
	}
	return s.authzSvc.Authorize(
		c.Request.Context(),
		actor,
		lead.OrgID.String(),
		authorization.ObjectLead,
		authorization.ActionLeadUpdate,
	)
}
