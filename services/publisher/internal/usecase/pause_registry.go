package usecase

import (
	"context"
	"fmt"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/pkg/queue"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/kv"
)

// PauseRegistry holds the global kill switch and the per-platform switches.
// Reads always go to the store; a scope with no stored state is not paused.
type PauseRegistry interface {
	IsPaused(ctx context.Context, scope entity.PauseScope) (bool, error)
	State(ctx context.Context, scope entity.PauseScope) (*entity.PauseState, error)
	SetPaused(ctx context.Context, scope entity.PauseScope, paused bool, reason, actor string) (*entity.PauseState, error)
	ListPlatformStates(ctx context.Context) ([]*entity.PauseState, error)
}

type pauseRegistry struct {
	store     kv.PauseStore
	platforms []entity.Platform
	logger    *logger.Logger
	now       func() time.Time
}

func NewPauseRegistry(store kv.PauseStore, platforms []entity.Platform, logger *logger.Logger) PauseRegistry {
	return &pauseRegistry{
		store:     store,
		platforms: platforms,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *pauseRegistry) IsPaused(ctx context.Context, scope entity.PauseScope) (bool, error) {
	state, err := r.store.Get(ctx, scope)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

func (r *pauseRegistry) State(ctx context.Context, scope entity.PauseScope) (*entity.PauseState, error) {
	return r.store.Get(ctx, scope)
}

func (r *pauseRegistry) SetPaused(ctx context.Context, scope entity.PauseScope, paused bool, reason, actor string) (*entity.PauseState, error) {
	now := r.now().UTC()
	state := &entity.PauseState{
		Scope:       scope,
		Paused:      paused,
		Reason:      reason,
		Actor:       actor,
		LastUpdated: &now,
	}
	if paused {
		state.PausedAt = &now
	}

	if err := r.store.Set(ctx, state); err != nil {
		return nil, err
	}

	if paused {
		r.logger.Warn("Publishing paused for %s by %s: %s", scope, actor, reason)
	} else {
		r.logger.Info("Publishing resumed for %s by %s", scope, actor)
	}
	return state, nil
}

func (r *pauseRegistry) ListPlatformStates(ctx context.Context) ([]*entity.PauseState, error) {
	states := make([]*entity.PauseState, 0, len(r.platforms))
	for _, p := range r.platforms {
		state, err := r.store.Get(ctx, entity.PlatformScope(p))
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// AlertPublisher hands auto-pause notices to the notification side. queue.Client implements it.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert queue.Alert) error
}

// autoPauser is the shared write path for automatic platform pauses.
type autoPauser struct {
	registry PauseRegistry
	alerts   AlertPublisher
	metrics  *metrics.Collector
	logger   *logger.Logger
}

func (a *autoPauser) pause(ctx context.Context, platform entity.Platform, reason, actor string) error {
	state, err := a.registry.SetPaused(ctx, entity.PlatformScope(platform), true, reason, actor)
	if err != nil {
		return fmt.Errorf("failed to auto-pause %s: %w", platform, err)
	}
	a.metrics.ObserveAutoPause(string(platform), actor)

	if a.alerts == nil {
		return nil
	}
	alert := queue.Alert{
		Type:       "auto_pause",
		Scope:      string(state.Scope),
		Platform:   string(platform),
		Reason:     reason,
		Actor:      actor,
		OccurredAt: *state.PausedAt,
	}
	if err := a.alerts.PublishAlert(ctx, alert); err != nil {
		a.logger.Error("Failed to publish auto-pause alert for %s: %v", platform, err)
	}
	return nil
}
