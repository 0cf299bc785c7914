package ratelimit

import (
	"context"
	"strings"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const applicationKeyPrefix = "portal:ratelimit:applications:"

// ApplicationLimiter throttles anonymous application submissions per client.
// A nil limiter, or one without a bucket, allows everything.
type ApplicationLimiter struct {
	bucket *bucket
	rate   float64
	burst  int
}

func NewApplicationLimiter(cfg config.Config, client *redis.Client) *ApplicationLimiter {
	return newApplicationLimiter(newBucket(client), cfg.RateLimit)
}

func newApplicationLimiter(b *bucket, cfg config.RateLimitConfig) *ApplicationLimiter {
	if b == nil || cfg.ApplicationsPerHour <= 0 || cfg.ApplicationBurst <= 0 {
		return &ApplicationLimiter{}
	}
	return &ApplicationLimiter{
		bucket: b,
		rate:   cfg.ApplicationsPerHour / 3600,
		burst:  cfg.ApplicationBurst,
	}
}

func (l *ApplicationLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *ApplicationLimiter) Allow(ctx context.Context, client string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	return l.bucket.take(ctx, applicationKey(client), l.rate, l.burst)
}

func applicationKey(client string) string {
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return applicationKeyPrefix + client
}
