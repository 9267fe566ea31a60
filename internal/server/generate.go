package server

import (
	"net/http"

	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/gin-gonic/gin"
)

// GenerateLeads runs the generation pipeline for the caller's
// organization.
func (s *Server) GenerateLeads(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req leadgendomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &leadgendomain.ValidationError{Fields: []string{"body must be valid JSON"}})
		return
	}

	resp, err := s.leadgenSvc.Generate(c.Request.Context(), *identity, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("search_id", resp.SearchID)
	c.JSON(http.StatusOK, resp)
}
