package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/leadevents"
	"github.com/evoleadai/evolead/internal/observability/metrics"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/evoleadai/evolead/pkg/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrUnknownStatus   = errors.New("unknown webhook status")
	ErrInvalidSearchID = errors.New("invalid search id")
)

// Payload is the inbound lead-update event body.
type Payload struct {
	SearchID   string `json:"search_id"`
	Status     string `json:"status"`
	LeadsCount int    `json:"leads_count"`
	Message    string `json:"message"`
}

type ServiceParams struct {
	fx.In

	SearchRepo searchdomain.Repository
	Hub        *leadevents.Hub
	Metrics    *metrics.Metrics `optional:"true"`
	Log        *zap.Logger
}

// Service applies externally reported search status updates and relays
// them to live subscribers.
type Service struct {
	searchRepo searchdomain.Repository
	hub        *leadevents.Hub
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewService(p ServiceParams) *Service {
	return &Service{
		searchRepo: p.SearchRepo,
		hub:        p.Hub,
		metrics:    p.Metrics,
		log:        p.Log.Named("webhook.service"),
	}
}

func (s *Service) Handle(ctx context.Context, payload Payload) error {
	searchID, err := snowflake.ParseString(strings.TrimSpace(payload.SearchID))
	if err != nil || searchID == 0 {
		return ErrInvalidSearchID
	}

	status := strings.ToLower(strings.TrimSpace(payload.Status))
	switch status {
	case string(searchdomain.StatusProcessing):
		err = s.handleProcessing(ctx, searchID)
	case string(searchdomain.StatusCompleted):
		err = s.handleCompleted(ctx, searchID)
	case string(searchdomain.StatusFailed):
		err = s.handleFailed(ctx, searchID, payload.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, payload.Status)
	}
	if err != nil {
		return err
	}

	s.metrics.RecordWebhookEvent(ctx, status)
	s.broadcast(ctx, searchID, status, payload)
	return nil
}

func (s *Service) handleProcessing(ctx context.Context, searchID snowflake.ID) error {
	return s.transition(ctx, searchID, searchdomain.StatusProcessing, "")
}

func (s *Service) handleCompleted(ctx context.Context, searchID snowflake.ID) error {
	return s.transition(ctx, searchID, searchdomain.StatusCompleted, "")
}

func (s *Service) handleFailed(ctx context.Context, searchID snowflake.ID, message string) error {
	if strings.TrimSpace(message) == "" {
		message = "reported failed via webhook"
	}
	return s.transition(ctx, searchID, searchdomain.StatusFailed, message)
}

func (s *Service) transition(ctx context.Context, searchID snowflake.ID, status searchdomain.Status, message string) error {
	current, err := s.searchRepo.GetByID(ctx, searchID)
	if err != nil {
		return err
	}
	// A terminal status never moves, not even to the other terminal state.
	if current.Status.Terminal() {
		s.log.Debug("ignoring update for terminal search",
			zap.String("search_id", searchID.String()),
			zap.String("status", string(current.Status)),
			zap.String("requested", string(status)),
		)
		return nil
	}
	return s.searchRepo.UpdateStatus(ctx, searchID, status, message)
}

func (s *Service) broadcast(ctx context.Context, searchID snowflake.ID, status string, payload Payload) {
	event := leadevents.NewEvent(searchID.String(), status, leadevents.SourceWebhook)
	event.LeadsCount = payload.LeadsCount
	event.Message = payload.Message
	event.CorrelationID = correlation.FromContext(ctx)
	s.hub.Publish(searchID.String(), event)
}
