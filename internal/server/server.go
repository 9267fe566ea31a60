package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/auth"
	authdomain "github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/authorization"
	"github.com/evoleadai/evolead/internal/config"
	"github.com/evoleadai/evolead/internal/lead"
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	"github.com/evoleadai/evolead/internal/leadevents"
	"github.com/evoleadai/evolead/internal/leadgen"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/evoleadai/evolead/internal/migration"
	"github.com/evoleadai/evolead/internal/observability"
	obsmiddleware "github.com/evoleadai/evolead/internal/observability/logger"
	obsmetrics "github.com/evoleadai/evolead/internal/observability/metrics"
	obstracing "github.com/evoleadai/evolead/internal/observability/tracing"
	"github.com/evoleadai/evolead/internal/organization"
	organizationdomain "github.com/evoleadai/evolead/internal/organization/domain"
	"github.com/evoleadai/evolead/internal/providers"
	"github.com/evoleadai/evolead/internal/ratelimit"
	"github.com/evoleadai/evolead/internal/scheduler"
	"github.com/evoleadai/evolead/internal/search"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/evoleadai/evolead/internal/searchcache"
	"github.com/evoleadai/evolead/internal/usage"
	usagedomain "github.com/evoleadai/evolead/internal/usage/domain"
	"github.com/evoleadai/evolead/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	organization.Module,
	search.Module,
	searchcache.Module,
	providers.Module,
	lead.Module,
	leadgen.Module,
	leadevents.Module,
	usage.Module,
	ratelimit.Module,
	webhook.Module,
	scheduler.Module,
	migration.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	genID           *snowflake.Node
	authSvc         authdomain.Service
	authzSvc        authorization.Service
	organizationSvc organizationdomain.Service
	plans           *config.PlanConfigHolder
	leadgenSvc      leadgendomain.Service
	leadSvc         leaddomain.Service
	searchRepo      searchdomain.Repository
	usageRepo       usagedomain.Repository
	webhookVerifier *webhook.Verifier
	webhookSvc      *webhook.Service
	webhookLimiter  *ratelimit.WebhookLimiter
	liveEvents      *leadevents.Hub
	obsMetrics      *obsmetrics.Metrics
	log             *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	GenID           *snowflake.Node
	AuthSvc         authdomain.Service
	AuthzSvc        authorization.Service
	OrganizationSvc organizationdomain.Service
	Plans           *config.PlanConfigHolder
	LeadgenSvc      leadgendomain.Service
	LeadSvc         leaddomain.Service
	SearchRepo      searchdomain.Repository
	UsageRepo       usagedomain.Repository
	WebhookVerifier *webhook.Verifier
	WebhookSvc      *webhook.Service
	WebhookLimiter  *ratelimit.WebhookLimiter
	LiveEvents      *leadevents.Hub     `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
	Log             *zap.Logger
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		genID:           p.GenID,
		authSvc:         p.AuthSvc,
		authzSvc:        p.AuthzSvc,
		organizationSvc: p.OrganizationSvc,
		plans:           p.Plans,
		leadgenSvc:      p.LeadgenSvc,
		leadSvc:         p.LeadSvc,
		searchRepo:      p.SearchRepo,
		usageRepo:       p.UsageRepo,
		webhookVerifier: p.WebhookVerifier,
		webhookSvc:      p.WebhookSvc,
		webhookLimiter:  p.WebhookLimiter,
		liveEvents:      p.LiveEvents,
		obsMetrics:      p.ObsMetrics,
		log:             p.Log.Named("server"),
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	api.POST("/leads/generate", s.GenerateLeads)
	api.GET("/leads", s.ListLeads)
	api.PATCH("/leads", s.UpsertLeadMetadata)
	api.POST("/leads/metadata", s.UpsertLeadMetadata)
	api.DELETE("/leads/metadata", s.DeleteLeadMetadata)
	api.GET("/leads/search/:searchId", s.ListSearchLeads)
	api.POST("/leads/search/:searchId/export", s.ExportSearchLeads)
	api.GET("/leads/search/:searchId/events", s.StreamSearchEvents)
	api.GET("/organizations/:id/usage", s.OrganizationUsage)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/lead-updates", s.webhookRateLimit(), s.HandleLeadUpdates)
}
