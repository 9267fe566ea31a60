package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/evoleadai/evolead/internal/webhook"
	"github.com/evoleadai/evolead/pkg/correlation"
	"github.com/gin-gonic/gin"
)

const (
	headerSignature = "x-webhook-signature"
	headerTimestamp = "x-webhook-timestamp"

	maxWebhookBody = 1 << 20
)

// webhookRateLimit enforces the per-sender budget before signature work.
func (s *Server) webhookRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		result := s.webhookLimiter.Allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			}
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "webhook", "window_exceeded")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// HandleLeadUpdates accepts signed status callbacks from the external
// lead workflow.
func (s *Server) HandleLeadUpdates(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.webhookVerifier.Verify(
		c.GetHeader(headerSignature),
		c.GetHeader(headerTimestamp),
		body,
	); err != nil {
		AbortWithError(c, err)
		return
	}

	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx, _ := correlation.Ensure(c.Request.Context())
	if err := s.webhookSvc.Handle(ctx, payload); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("search_id", payload.SearchID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
