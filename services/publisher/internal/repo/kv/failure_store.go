package kv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"social-publisher/services/publisher/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FailureStore tracks platform failures in a sliding window, with auth failures kept apart.
type FailureStore interface {
	Add(ctx context.Context, platform entity.Platform, auth bool, member string, at time.Time, window time.Duration) error
	CountSince(ctx context.Context, platform entity.Platform, auth bool, since time.Time) (int64, error)
	ClearAuth(ctx context.Context, platform entity.Platform) error
}

type failureStore struct {
	client *redis.Client
}

func NewFailureStore(client *redis.Client) FailureStore {
	return &failureStore{client: client}
}

func failureKey(platform entity.Platform, auth bool) string {
	if auth {
		return fmt.Sprintf("failures:%s:auth", platform)
	}
	return fmt.Sprintf("failures:%s:all", platform)
}

func (s *failureStore) Add(ctx context.Context, platform entity.Platform, auth bool, member string, at time.Time, window time.Duration) error {
	// Repeated failures for the same content must count separately.
	member = fmt.Sprintf("%d:%s:%s", at.UnixNano(), member, uuid.New().String())
	cutoff := strconv.FormatInt(at.Add(-window).UnixMilli(), 10)

	keys := []string{failureKey(platform, false)}
	if auth {
		keys = append(keys, failureKey(platform, true))
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: member})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
		pipe.Expire(ctx, key, window)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record failure for %s: %w", platform, err)
	}
	return nil
}

func (s *failureStore) CountSince(ctx context.Context, platform entity.Platform, auth bool, since time.Time) (int64, error) {
	count, err := s.client.ZCount(ctx, failureKey(platform, auth), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count failures for %s: %w", platform, err)
	}
	return count, nil
}

func (s *failureStore) ClearAuth(ctx context.Context, platform entity.Platform) error {
	if err := s.client.Del(ctx, failureKey(platform, true)).Err(); err != nil {
		return fmt.Errorf("failed to clear auth failures for %s: %w", platform, err)
	}
	return nil
}
