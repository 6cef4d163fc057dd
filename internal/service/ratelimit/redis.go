package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"RentPredict/pkg/cache"
)

// tokenBucket refills and takes one token atomically. KEYS[1] is the bucket,
// ARGV is capacity, refill per second, now in ms and ttl in seconds.
var tokenBucket = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = math.max(0, now - ts) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("EXPIRE", KEYS[1], ttl)
return allowed
`)

// RedisLimiter shares token buckets between replicas through Redis.
type RedisLimiter struct {
	store      *cache.RedisStore
	capacity   float64
	refillRate float64
	ttl        int64
}

func NewRedisLimiter(store *cache.RedisStore, capacity, refillPerSec float64) *RedisLimiter {
	ttl := int64(60)
	if refillPerSec > 0 {
		ttl = int64(math.Ceil(capacity/refillPerSec)) + 1
	}
	return &RedisLimiter{store: store, capacity: capacity, refillRate: refillPerSec, ttl: ttl}
}

// Allow returns true if one token can be consumed for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := l.store.Run(ctx, tokenBucket, []string{"ratelimit:" + key},
		l.capacity, l.refillRate, time.Now().UnixMilli(), l.ttl)
	if err != nil {
		return false, fmt.Errorf("ratelimit: %w", err)
	}
	n, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("ratelimit: unexpected script result %T", res)
	}
	return n == 1, nil
}
