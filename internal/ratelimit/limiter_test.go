package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/config"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationLimiterDisabledWithoutRedis(t *testing.T) {
	limiter := NewApplicationLimiter(config.Config{
		RateLimit: config.RateLimitConfig{ApplicationsPerHour: 10, ApplicationBurst: 3},
	}, nil)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	var nilLimiter *ApplicationLimiter
	assert.False(t, nilLimiter.Enabled())
}

func TestApplicationKey(t *testing.T) {
	assert.Equal(t, "portal:ratelimit:applications:10.0.0.1", applicationKey(" 10.0.0.1 "))
	assert.Equal(t, "portal:ratelimit:applications:unknown", applicationKey(""))
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, bucketTTL(0, 3))
	// 3 tokens at 0.5/s refill fully in 6s, kept for twice that.
	assert.Equal(t, 12*time.Second, bucketTTL(0.5, 3))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestBucketValidatesBeforeCallingRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	b := newBucket(client)

	_, err := b.take(context.Background(), "", 1, 1)
	assert.ErrorIs(t, err, errBucketKeyEmpty)
	_, err = b.take(context.Background(), "k", 0, 1)
	assert.ErrorIs(t, err, errBucketParams)
	_, err = b.take(context.Background(), "k", 1, 0)
	assert.ErrorIs(t, err, errBucketParams)
}

func TestNilClientsAreRejected(t *testing.T) {
	assert.Nil(t, newBucket(nil))
	assert.Nil(t, NewLocker(nil))

	var b *bucket
	res, err := b.take(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, errBucketNotConfigured)
	assert.False(t, res.Allowed)

	var locker *Locker
	unlock, ok, err := locker.Acquire(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotConfigured)
	assert.False(t, ok)
	assert.Nil(t, unlock)
}

func TestAcquireValidatesBeforeCallingRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	locker := NewLocker(client)

	_, _, err := locker.Acquire(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrLockInvalid)
	_, _, err = locker.Acquire(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrLockInvalid)
}
