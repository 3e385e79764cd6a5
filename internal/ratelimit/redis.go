package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the caller's window counter atomically,
// attaching a TTL so abandoned windows expire on their own.
//
// Returns { allowed, retry_after_ms }.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local current = redis.call('INCR', key)
if current == 1 then
  redis.call('PEXPIRE', key, window_ms)
else
  -- Ensure TTL exists even if the key somehow lost it
  if redis.call('PTTL', key) < 0 then
    redis.call('PEXPIRE', key, window_ms)
  end
end

if current > limit then
  local ttl = redis.call('PTTL', key)
  if ttl < 0 then ttl = window_ms end
  return { 0, ttl }
end
return { 1, 0 }
`)

// RedisLimiter is a fixed-window Limiter shared across API instances.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.rdb == nil {
		return false, 0, fmt.Errorf("redis client is nil")
	}

	fullKey := l.prefix + ":" + key
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{fullKey}, l.limit, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected script result: %v", res)
	}
	if res[0] == 1 {
		return true, 0, nil
	}
	return false, time.Duration(res[1]) * time.Millisecond, nil
}
