package kv

import (
	"context"
	"fmt"
	"time"

	"social-publisher/services/publisher/internal/entity"

	"github.com/redis/go-redis/v9"
)

type PauseStore interface {
	// Get returns the stored state, or an unpaused state when nothing is stored for the scope.
	Get(ctx context.Context, scope entity.PauseScope) (*entity.PauseState, error)
	Set(ctx context.Context, state *entity.PauseState) error
}

type pauseStore struct {
	client *redis.Client
}

func NewPauseStore(client *redis.Client) PauseStore {
	return &pauseStore{client: client}
}

func pauseKey(scope entity.PauseScope) string {
	return "pause:" + string(scope)
}

func (s *pauseStore) Get(ctx context.Context, scope entity.PauseScope) (*entity.PauseState, error) {
	fields, err := s.client.HGetAll(ctx, pauseKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pause state %s: %w", scope, err)
	}

	state := &entity.PauseState{Scope: scope}
	if len(fields) == 0 {
		return state, nil
	}

	state.Paused = fields["paused"] == "1"
	state.Reason = fields["reason"]
	state.Actor = fields["actor"]
	state.PausedAt = parseTime(fields["paused_at"])
	state.LastUpdated = parseTime(fields["updated_at"])
	return state, nil
}

func (s *pauseStore) Set(ctx context.Context, state *entity.PauseState) error {
	paused := "0"
	if state.Paused {
		paused = "1"
	}

	err := s.client.HSet(ctx, pauseKey(state.Scope), map[string]interface{}{
		"paused":     paused,
		"reason":     state.Reason,
		"actor":      state.Actor,
		"paused_at":  formatTime(state.PausedAt),
		"updated_at": formatTime(state.LastUpdated),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to write pause state %s: %w", state.Scope, err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}
