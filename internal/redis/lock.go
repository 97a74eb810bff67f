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

// AcquireTaskLock attempts to take the acceptance lock for a task.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireTaskLock(ctx context.Context, taskID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, taskLockKey(taskID), "1", ttl).Result()
}

// ReleaseTaskLock releases the acceptance lock for a task.
func (s *LockStore) ReleaseTaskLock(ctx context.Context, taskID string) error {
	return s.client.Del(ctx, taskLockKey(taskID)).Err()
}

func taskLockKey(taskID string) string {
	return fmt.Sprintf("lock:task:%s", taskID)
}
