package ratelimit

import "go.uber.org/fx"

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewSlidingWindow),
	fx.Provide(NewLocker),
	fx.Provide(NewWebhookLimiter),
)
