package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// Acquire attempts to take the payment lock for a session.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, paymentLockKey(sessionID), "1", ttl).Result()
}

// Release releases the payment lock for a session.
func (s *LockStore) Release(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, paymentLockKey(sessionID)).Err()
}

func paymentLockKey(sessionID string) string {
	return fmt.Sprintf("lock:payment:%s", sessionID)
}
