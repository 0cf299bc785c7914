package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeScript refills the bucket from the elapsed server time, takes one token
// when available and replies {allowed, remaining, retry_ms}. Lua numbers come
// back truncated to integers.
const takeScript = `
local per_ms = tonumber(ARGV[1]) / 1000
local capacity = tonumber(ARGV[2])
local expire_ms = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local level = tonumber(redis.call("HGET", KEYS[1], "level"))
local stamp = tonumber(redis.call("HGET", KEYS[1], "stamp"))
if level == nil or stamp == nil then
  level = capacity
else
  level = math.min(capacity, level + math.max(0, now - stamp) * per_ms)
end

local allowed = 0
local wait = 0
if level >= 1 then
  allowed = 1
  level = level - 1
else
  wait = math.ceil((1 - level) / per_ms)
end

redis.call("HSET", KEYS[1], "level", level, "stamp", now)
redis.call("PEXPIRE", KEYS[1], expire_ms)
return {allowed, math.floor(level), wait}
`

var (
	errBucketNotConfigured = errors.New("rate limiter not configured")
	errBucketKeyEmpty      = errors.New("rate limiter key is empty")
	errBucketParams        = errors.New("rate limiter rate and burst must be positive")
	errBucketReply         = errors.New("invalid rate limit script response")
)

// Decision is the outcome of taking one token.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	client *redis.Client
	script *redis.Script
}

func newBucket(client *redis.Client) *bucket {
	if client == nil {
		return nil
	}
	return &bucket{client: client, script: redis.NewScript(takeScript)}
}

// take spends one token from key. rate is tokens per second.
func (b *bucket) take(ctx context.Context, key string, rate float64, burst int) (Decision, error) {
	switch {
	case b == nil || b.client == nil:
		return Decision{}, errBucketNotConfigured
	case key == "":
		return Decision{}, errBucketKeyEmpty
	case rate <= 0 || burst <= 0:
		return Decision{}, errBucketParams
	}

	expire := bucketTTL(rate, burst)
	reply, err := b.script.Run(ctx, b.client, []string{key}, rate, burst, expire.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(reply) != 3 {
		return Decision{}, errBucketReply
	}
	return Decision{
		Allowed:    reply[0] == 1,
		Remaining:  int(reply[1]),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// bucketTTL keeps an idle bucket around for twice its full refill time, at
// least one second.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Max(1, math.Ceil(float64(burst)/rate*2))
	return time.Duration(seconds) * time.Second
}
