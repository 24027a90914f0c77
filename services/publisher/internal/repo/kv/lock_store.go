package kv

import (
	"context"
	"fmt"
	"time"

	"social-publisher/services/publisher/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// acquireScript sets the lock only when absent and indexes it by lock id, both with the same expiry.
var acquireScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
	redis.call('SET', KEYS[2], KEYS[1], 'PX', ARGV[2])
	return 1
end
return 0
`)

// releaseScript deletes the lock named by the id index, provided it still carries that id.
var releaseScript = redis.NewScript(`
local key = redis.call('GET', KEYS[1])
if not key then
	return 0
end
redis.call('DEL', KEYS[1])
if redis.call('GET', key) == ARGV[1] then
	redis.call('DEL', key)
	return 1
end
return 0
`)

type LockStore interface {
	Acquire(ctx context.Context, contentID string, platform entity.Platform, ttl time.Duration, now time.Time) (*entity.PublishLock, bool, error)
	// Release reports whether a live lock was removed. Expired or reclaimed locks release as a no-op.
	Release(ctx context.Context, lockID string) (bool, error)
}

type lockStore struct {
	client *redis.Client
}

func NewLockStore(client *redis.Client) LockStore {
	return &lockStore{client: client}
}

func lockKey(contentID string, platform entity.Platform) string {
	return fmt.Sprintf("publish_lock:%s:%s", contentID, platform)
}

func lockIndexKey(lockID string) string {
	return "publish_lock_id:" + lockID
}

func (s *lockStore) Acquire(ctx context.Context, contentID string, platform entity.Platform, ttl time.Duration, now time.Time) (*entity.PublishLock, bool, error) {
	lock := &entity.PublishLock{
		ID:         uuid.New().String(),
		Key:        lockKey(contentID, platform),
		ContentID:  contentID,
		Platform:   platform,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	acquired, err := acquireScript.Run(ctx, s.client,
		[]string{lock.Key, lockIndexKey(lock.ID)},
		lock.ID, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", lock.Key, err)
	}
	if acquired != 1 {
		return nil, false, nil
	}
	return lock, true, nil
}

func (s *lockStore) Release(ctx context.Context, lockID string) (bool, error) {
	released, err := releaseScript.Run(ctx, s.client, []string{lockIndexKey(lockID)}, lockID).Int()
	if err != nil {
		return false, fmt.Errorf("failed to release lock %s: %w", lockID, err)
	}
	return released == 1, nil
}
