package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const slidingWindowScript = `
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)
local cutoff = now - window

redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", cutoff)
local count = redis.call("ZCARD", KEYS[1])

local allowed = 0
if count < limit then
  allowed = 1
  redis.call("ZADD", KEYS[1], now, now .. "-" .. ARGV[3])
  count = count + 1
end
redis.call("PEXPIRE", KEYS[1], window)

return {allowed, count}
`

// SlidingWindow counts requests per key over a rolling window backed by a
// redis sorted set, so the count survives restarts and is shared across
// instances.
type SlidingWindow struct {
	client *redis.Client
	script *redis.Script
	seq    func() string
}

func NewSlidingWindow(client *redis.Client) *SlidingWindow {
	if client == nil {
		return nil
	}
	var counter atomic.Int64
	return &SlidingWindow{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		seq: func() string {
			return strconv.FormatInt(counter.Add(1), 10)
		},
	}
}

func (w *SlidingWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if w == nil || w.client == nil {
		return nil, errors.New("sliding window not configured")
	}
	if key == "" {
		return nil, errors.New("rate limit key is empty")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limit bounds must be positive")
	}

	res, err := w.script.Run(
		ctx,
		w.client,
		[]string{key},
		int64(window/time.Millisecond),
		limit,
		w.seq(),
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, errors.New("invalid rate limit script response")
	}

	allowed := castToInt(res[0]) == 1
	count := int(castToInt(res[1]))
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
	}
	if !allowed {
		result.RetryAfter = window
	}
	return result, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}
