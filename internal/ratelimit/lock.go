package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only while it still holds the caller's token,
// so an expired lock taken over by another replica is left alone.
const unlockScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`

var (
	ErrLockNotConfigured = errors.New("lock client not configured")
	ErrLockInvalid       = errors.New("lock key and ttl are required")
)

// Locker hands out short-lived exclusive leases shared by every replica.
type Locker struct {
	client *redis.Client
	unlock *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, unlock: redis.NewScript(unlockScript)}
}

// Unlock releases a lease obtained from Acquire.
type Unlock func(ctx context.Context) error

// Acquire takes key for ttl. ok is false when another holder has it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	if l == nil || l.client == nil {
		return nil, false, ErrLockNotConfigured
	}
	if key == "" || ttl <= 0 {
		return nil, false, ErrLockInvalid
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func(ctx context.Context) error {
		return l.unlock.Run(ctx, l.client, []string{key}, token).Err()
	}, true, nil
}
