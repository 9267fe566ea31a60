package scheduler

import (
	"context"
	"time"

	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/ratelimit"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	cacheservice "github.com/evoleadai/evolead/internal/searchcache/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockKey = "scheduler:janitor"

// Config bounds the janitor loop.
type Config struct {
	Interval time.Duration
	// StaleAfter is how long a search may sit in pending/processing before
	// the sweep forces it to failed.
	StaleAfter time.Duration
	LockTTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 15 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = time.Minute
	}
	return c
}

type Params struct {
	fx.In

	SearchRepo searchdomain.Repository
	Cache      cacheservice.Service
	Locker     *ratelimit.Locker `optional:"true"`
	Clock      clock.Clock
	Log        *zap.Logger
	Config     Config `optional:"true"`
}

// Scheduler is the maintenance loop: it deletes expired cache entries and
// guarantees no search stays non-terminal forever.
type Scheduler struct {
	searchRepo searchdomain.Repository
	cache      cacheservice.Service
	locker     *ratelimit.Locker
	clock      clock.Clock
	log        *zap.Logger
	cfg        Config

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Scheduler {
	return &Scheduler{
		searchRepo: p.SearchRepo,
		cache:      p.Cache,
		locker:     p.Locker,
		clock:      p.Clock,
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes one sweep. With redis configured, a lock keeps the
// sweep to one instance; without it, every instance sweeps, which is
// harmless since both operations are idempotent.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
		if err != nil {
			s.log.Warn("janitor lock failed, sweeping anyway", zap.Error(err))
		} else if !ok {
			return
		} else {
			defer func() {
				if err := s.locker.Release(ctx, lockKey, token); err != nil {
					s.log.Warn("janitor lock release failed", zap.Error(err))
				}
			}()
		}
	}

	purged, err := s.cache.PurgeExpired(ctx)
	if err != nil {
		s.log.Error("cache purge failed", zap.Error(err))
	} else if purged > 0 {
		s.log.Info("purged expired cache entries", zap.Int64("count", purged))
	}

	cutoff := s.clock.Now().Add(-s.cfg.StaleAfter)
	swept, err := s.searchRepo.MarkStaleFailed(ctx, cutoff)
	if err != nil {
		s.log.Error("stale search sweep failed", zap.Error(err))
	} else if swept > 0 {
		s.log.Warn("forced stale searches to failed", zap.Int64("count", swept))
	}
}
