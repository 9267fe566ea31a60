package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	"github.com/evoleadai/evolead/internal/leadevents"
	"github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/evoleadai/evolead/internal/observability/metrics"
	orgdomain "github.com/evoleadai/evolead/internal/organization/domain"
	"github.com/evoleadai/evolead/internal/providers/gemini"
	"github.com/evoleadai/evolead/internal/providers/serpapi"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	cachedomain "github.com/evoleadai/evolead/internal/searchcache/domain"
	cacheservice "github.com/evoleadai/evolead/internal/searchcache/service"
	usagedomain "github.com/evoleadai/evolead/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	OrgRepo    orgdomain.Repository
	SearchRepo searchdomain.Repository
	LeadRepo   leaddomain.Repository
	UsageRepo  usagedomain.Repository
	Cache      cacheservice.Service
	SerpAPI    *serpapi.Client
	Gemini     *gemini.Client
	Plans      *config.PlanConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
	Hub        *leadevents.Hub
	GenID      *snowflake.Node
	Clock      clock.Clock
	Log        *zap.Logger
}

type service struct {
	orgRepo    orgdomain.Repository
	searchRepo searchdomain.Repository
	leadRepo   leaddomain.Repository
	usageRepo  usagedomain.Repository
	cache      cacheservice.Service
	serpapi    *serpapi.Client
	gemini     *gemini.Client
	plans      *config.PlanConfigHolder
	metrics    *metrics.Metrics
	hub        *leadevents.Hub
	genID      *snowflake.Node
	clock      clock.Clock
	log        *zap.Logger
}

func NewService(p Params) domain.Service {
	return &service{
		orgRepo:    p.OrgRepo,
		searchRepo: p.SearchRepo,
		leadRepo:   p.LeadRepo,
		usageRepo:  p.UsageRepo,
		cache:      p.Cache,
		serpapi:    p.SerpAPI,
		gemini:     p.Gemini,
		plans:      p.Plans,
		metrics:    p.Metrics,
		hub:        p.Hub,
		genID:      p.GenID,
		clock:      p.Clock,
		log:        p.Log.Named("leadgen.service"),
	}
}

// reservation is the quota already debited for a run, so a failed run can
// hand it back.
type reservation struct {
	trial   bool
	credits int64
}

func (s *service) Generate(ctx context.Context, requester authdomain.Identity, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	plan := s.plans.Current()

	orgID, verr := validate(req, plan)
	if verr != nil {
		s.metrics.RecordGenerationRun(ctx, "invalid")
		return nil, verr
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	role, err := s.orgRepo.MemberRole(ctx, orgID, requester.UserID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, orgdomain.ErrNotMember
	}

	// Reserve quota before any row exists: a quota rejection must leave no
	// trace, and reserving first closes the double-spend window between
	// check and debit.
	res, err := s.reserveQuota(ctx, org, req, plan)
	if err != nil {
		s.metrics.RecordGenerationRun(ctx, "quota_exceeded")
		return nil, err
	}

	now := s.clock.Now()
	search := searchdomain.UserSearch{
		ID:             s.genID.Generate(),
		OrgID:          org.ID,
		UserID:         requester.UserID,
		Industry:       req.BusinessType,
		Country:        req.Country,
		State:          req.State,
		City:           req.City,
		RequestedCount: req.LeadsRequested,
		Status:         searchdomain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.searchRepo.Create(ctx, search); err != nil {
		s.rollbackQuota(ctx, org.ID, res)
		return nil, err
	}

	resp, err := s.run(ctx, org, &search, req, res, plan)
	if err != nil {
		s.finishFailed(ctx, org.ID, search.ID, res, err)
		return nil, err
	}

	s.metrics.RecordGenerationRun(ctx, "completed")
	s.metrics.RecordLeadsGenerated(ctx, len(resp.Leads))
	return resp, nil
}

func (s *service) reserveQuota(ctx context.Context, org *orgdomain.Organization, req domain.GenerateRequest, plan config.PlanConfig) (reservation, error) {
	if !org.Plan.Known() {
		return reservation{}, orgdomain.ErrUnknownPlan
	}
	if org.Plan == orgdomain.PlanTrial {
		ok, err := s.orgRepo.ReserveTrialSearch(ctx, org.ID, plan.TrialSearchLimit)
		if err != nil {
			return reservation{}, err
		}
		if !ok {
			return reservation{}, orgdomain.NewTrialQuotaError(org.TrialSearchesUsed, plan.TrialSearchLimit)
		}
		return reservation{trial: true}, nil
	}

	credits := creditsFor(req.LeadsRequested, plan.LeadsPerCredit)
	ok, err := s.orgRepo.ReserveCredits(ctx, org.ID, credits)
	if err != nil {
		return reservation{}, err
	}
	if !ok {
		return reservation{}, orgdomain.NewCreditQuotaError(credits, org.CreditBalance)
	}
	return reservation{credits: credits}, nil
}

func (s *service) run(ctx context.Context, org *orgdomain.Organization, search *searchdomain.UserSearch, req domain.GenerateRequest, res reservation, plan config.PlanConfig) (*domain.GenerateResponse, error) {
	if err := s.searchRepo.UpdateStatus(ctx, search.ID, searchdomain.StatusProcessing, ""); err != nil {
		return nil, err
	}
	s.publish(search.ID, leadevents.TypeProcessing, 0, "")

	key := cachedomain.Key(req.BusinessType, req.Country, req.State, req.City, req.LeadsRequested)
	rawLeads, hit, err := s.cache.Lookup(ctx, key)
	if err != nil {
		s.log.Warn("cache lookup failed, treating as miss", zap.Error(err))
		hit = false
	}

	tier := domain.TierCache
	if hit {
		s.metrics.RecordCacheLookup(ctx, "hit")
	} else {
		s.metrics.RecordCacheLookup(ctx, "miss")
		rawLeads, tier, err = s.fetchLeads(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Store(ctx, key, rawLeads); err != nil {
			// Cache write failures cost a future hit, not this run.
			s.log.Warn("cache store failed", zap.Error(err))
		}
	}
	s.metrics.RecordProviderTier(ctx, string(tier))

	now := s.clock.Now()
	leads := make([]leaddomain.Lead, 0, len(rawLeads))
	for _, raw := range rawLeads {
		leads = append(leads, leaddomain.Lead{
			ID:              s.genID.Generate(),
			OrgID:           org.ID,
			SearchID:        search.ID,
			BusinessName:    raw.BusinessName,
			Email:           raw.Email,
			Phone:           raw.Phone,
			Website:         raw.Website,
			Address:         raw.Address,
			Industry:        raw.Industry,
			ConfidenceScore: Score(raw),
			CreatedAt:       now,
		})
	}
	if err := s.leadRepo.BatchInsert(ctx, leads); err != nil {
		return nil, err
	}

	record := usagedomain.Record{
		ID:          s.genID.Generate(),
		OrgID:       org.ID,
		UserID:      search.UserID,
		SearchID:    search.ID,
		Action:      usagedomain.ActionLeadGeneration,
		CreditsUsed: res.credits,
		Units:       req.LeadsRequested,
		TrialRun:    res.trial,
		CreatedAt:   now,
	}
	if err := s.usageRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	if err := s.searchRepo.UpdateStatus(ctx, search.ID, searchdomain.StatusCompleted, ""); err != nil {
		return nil, err
	}
	s.publish(search.ID, leadevents.TypeCompleted, len(leads), "")

	return s.shapeResponse(org, search, leads, res, tier, hit, plan), nil
}

// shapeResponse assembles the caller-facing view. Pure assembly, no side
// effects.
func (s *service) shapeResponse(org *orgdomain.Organization, search *searchdomain.UserSearch, leads []leaddomain.Lead, res reservation, tier domain.Tier, cached bool, plan config.PlanConfig) *domain.GenerateResponse {
	usage := domain.Usage{
		LeadsGenerated:   len(leads),
		CreditsUsed:      res.credits,
		RemainingCredits: org.CreditBalance - res.credits,
		Plan:             string(org.Plan),
	}
	if org.Plan == orgdomain.PlanTrial {
		remaining := plan.TrialSearchLimit - (org.TrialSearchesUsed + 1)
		if remaining < 0 {
			remaining = 0
		}
		usage.TrialSearchesRemaining = &remaining
	}

	return &domain.GenerateResponse{
		Success:  true,
		SearchID: search.ID.String(),
		Cached:   cached,
		Provider: tier,
		Leads:    leads,
		Usage:    usage,
	}
}

// finishFailed forces the terminal status and hands the reservation back.
// It runs on a detached context so a cancelled request still settles.
func (s *service) finishFailed(ctx context.Context, orgID, searchID snowflake.ID, res reservation, cause error) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.searchRepo.UpdateStatus(detached, searchID, searchdomain.StatusFailed, cause.Error()); err != nil {
		s.log.Error("failed to mark search failed",
			zap.String("search_id", searchID.String()),
			zap.Error(err),
		)
	}
	s.publish(searchID, leadevents.TypeFailed, 0, cause.Error())
	s.rollbackQuota(detached, orgID, res)
	s.metrics.RecordGenerationRun(detached, "failed")
}

func (s *service) rollbackQuota(ctx context.Context, orgID snowflake.ID, res reservation) {
	var err error
	if res.trial {
		err = s.orgRepo.RefundTrialSearch(ctx, orgID)
	} else if res.credits > 0 {
		err = s.orgRepo.RefundCredits(ctx, orgID, res.credits)
	}
	if err != nil {
		s.log.Error("quota refund failed",
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) publish(searchID snowflake.ID, eventType string, count int, message string) {
	event := leadevents.NewEvent(searchID.String(), eventType, leadevents.SourcePipeline)
	event.LeadsCount = count
	event.Message = message
	s.hub.Publish(searchID.String(), event)
}
