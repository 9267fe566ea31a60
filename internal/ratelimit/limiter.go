package ratelimit

import (
	"context"
	"time"

	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	"go.uber.org/zap"
)

const webhookWindow = time.Minute

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// WebhookLimiter enforces the per-key inbound webhook budget. It prefers
// the shared redis window and degrades to the in-process one when redis
// is absent or erroring.
type WebhookLimiter struct {
	window *SlidingWindow
	memory *memoryWindow
	plans  *config.PlanConfigHolder
	log    *zap.Logger
}

func NewWebhookLimiter(window *SlidingWindow, plans *config.PlanConfigHolder, clk clock.Clock, log *zap.Logger) *WebhookLimiter {
	return &WebhookLimiter{
		window: window,
		memory: newMemoryWindow(clk),
		plans:  plans,
		log:    log.Named("ratelimit.webhook"),
	}
}

func (l *WebhookLimiter) Allow(ctx context.Context, key string) *Result {
	limit := l.plans.Current().WebhookRatePerMinute

	if l.window != nil {
		result, err := l.window.Allow(ctx, "ratelimit:webhook:"+key, limit, webhookWindow)
		if err == nil {
			return result
		}
		l.log.Warn("redis rate limit failed, using in-memory window", zap.Error(err))
	}
	return l.memory.Allow(key, limit, webhookWindow)
}
