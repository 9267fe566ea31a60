package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/evoleadai/evolead/internal/authorization"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListSearchLeads returns one search's leads, sortable by confidence,
// name or creation time.
func (s *Server) ListSearchLeads(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	search, err := s.resolveSearch(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authzSvc.Authorize(
		c.Request.Context(),
		identity.Actor(),
		search.OrgID.String(),
		authorization.ObjectSearch,
		authorization.ActionSearchView,
	); err != nil {
		AbortWithError(c, err)
		return
	}

	sortBy := leaddomain.SortField(strings.TrimSpace(c.DefaultQuery("sortBy", string(leaddomain.SortByConfidence))))
	if !sortBy.Valid() {
		sortBy = leaddomain.SortByConfidence
	}
	desc := !strings.EqualFold(c.DefaultQuery("order", "desc"), "asc")

	views, pageInfo, err := s.leadSvc.ListBySearch(c.Request.Context(), identity.UserID, search.ID, sortBy, desc, bindPagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("search_id", search.ID.String())
	c.JSON(http.StatusOK, gin.H{
		"search":     search,
		"leads":      views,
		"pagination": pageInfo,
	})
}

// ExportSearchLeads streams the search's leads as a CSV download.
func (s *Server) ExportSearchLeads(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	search, err := s.resolveSearch(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authzSvc.Authorize(
		c.Request.Context(),
		identity.Actor(),
		search.OrgID.String(),
		authorization.ObjectLeadExport,
		authorization.ActionLeadExportRun,
	); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("search_id", search.ID.String())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=leads-%s.csv", search.ID.String()))
	c.Status(http.StatusOK)

	if err := s.leadSvc.ExportCSV(c.Request.Context(), c.Writer, identity.UserID, search.ID); err != nil {
		// Headers are already out; log instead of rewriting the status.
		s.log.Error("csv export aborted mid-stream", zap.Error(err))
	}
}

func (s *Server) resolveSearch(c *gin.Context) (*searchdomain.UserSearch, error) {
	searchID, err := snowflakeParam(c, "searchId")
	if err != nil {
		return nil, err
	}
	return s.searchRepo.GetByID(c.Request.Context(), searchID)
}
