package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/cache"
	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/evoleadai/evolead/internal/searchcache/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Service is the request-tuple result cache in front of the provider
// chain. A hot in-process layer sits over the durable table so repeated
// identical requests on one instance skip the database too.
type Service interface {
	Lookup(ctx context.Context, key string) ([]leadgendomain.RawLead, bool, error)
	Store(ctx context.Context, key string, leads []leadgendomain.RawLead) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type cachedBatch struct {
	leads     []leadgendomain.RawLead
	expiresAt time.Time
}

type service struct {
	repo  domain.Repository
	plans *config.PlanConfigHolder
	clock clock.Clock
	genID *snowflake.Node
	hot   *cache.TTLCache[string, cachedBatch]
	log   *zap.Logger
}

func NewService(repo domain.Repository, plans *config.PlanConfigHolder, clk clock.Clock, genID *snowflake.Node, log *zap.Logger) Service {
	return &service{
		repo:  repo,
		plans: plans,
		clock: clk,
		genID: genID,
		hot:   cache.NewTTLCache[string, cachedBatch](time.Hour, 512),
		log:   log.Named("searchcache.service"),
	}
}

func (s *service) Lookup(ctx context.Context, key string) ([]leadgendomain.RawLead, bool, error) {
	now := s.clock.Now()

	if batch, ok := s.hot.Get(key); ok {
		if now.Before(batch.expiresAt) {
			return batch.leads, true, nil
		}
		s.hot.Delete(key)
	}

	entry, err := s.repo.GetByHash(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !now.Before(entry.ExpiresAt) {
		return nil, false, nil
	}

	var leads []leadgendomain.RawLead
	if err := json.Unmarshal(entry.Results, &leads); err != nil {
		// A corrupt entry is a miss; the fresh result overwrites it.
		s.log.Warn("discarding unreadable cache entry", zap.String("query_hash", key), zap.Error(err))
		return nil, false, nil
	}

	s.hot.Store(key, cachedBatch{leads: leads, expiresAt: entry.ExpiresAt})
	return leads, true, nil
}

func (s *service) Store(ctx context.Context, key string, leads []leadgendomain.RawLead) error {
	payload, err := json.Marshal(leads)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.plans.Current().CacheTTL)
	entry := domain.Entry{
		ID:        s.genID.Generate(),
		QueryHash: key,
		Results:   datatypes.JSON(payload),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return err
	}

	s.hot.Store(key, cachedBatch{leads: leads, expiresAt: expiresAt})
	return nil
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.clock.Now())
}
