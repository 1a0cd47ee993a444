package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("slot lock not acquired")

// Locker serializes the check-then-write window for one doctor/start-time
// slot across service instances. The Postgres exclusion constraint remains
// the authoritative guard; the lock keeps concurrent interactive bookers
// from both travelling the slow path and one of them eating a 409.
type Locker interface {
	WithSlotLock(ctx context.Context, doctorID string, start time.Time, fn func(ctx context.Context) error) error
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) WithSlotLock(ctx context.Context, doctorID string, start time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:slot:%s:%d", doctorID, start.Unix())
	fence := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, fence, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrNotAcquired
	}
	defer func() { _ = l.release(ctx, key, fence) }()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(lockCtx)
}

// Release only deletes the key if it still carries our fence value, so an
// expired lock re-acquired by someone else is never released from here.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) release(ctx context.Context, key, fence string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, fence).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

type noopLocker struct{}

// NewNoopLocker is used when Redis is not configured; single-instance
// deployments still have the database constraint.
func NewNoopLocker() Locker {
	return noopLocker{}
}

func (noopLocker) WithSlotLock(ctx context.Context, _ string, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
