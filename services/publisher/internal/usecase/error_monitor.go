package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/kv"
)

const errorMonitorActor = "error-monitor"

type ErrorClass string

const (
	ErrorClassAuth  ErrorClass = "auth"
	ErrorClassOther ErrorClass = "other"
)

var authFailurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)OAuthException`),
	regexp.MustCompile(`(?i)\bcode[ :=]*190\b`),
	regexp.MustCompile(`(?i)(invalid|expired)[\w ]{0,20}access[ _]token`),
	regexp.MustCompile(`(?i)access[ _]token[\w ]{0,20}(invalid|expired)`),
	regexp.MustCompile(`(?i)session has expired`),
	regexp.MustCompile(`\(#(10|200)\)`),
	regexp.MustCompile(`(?i)\bpermissions? error\b`),
	regexp.MustCompile(`(?i)\b401\b|unauthori[sz]ed`),
}

// ClassifyError reports whether a platform error message looks like an authentication failure.
func ClassifyError(message string) ErrorClass {
	for _, pattern := range authFailurePatterns {
		if pattern.MatchString(message) {
			return ErrorClassAuth
		}
	}
	return ErrorClassOther
}

type AuthCheck struct {
	ShouldPause bool   `json:"should_pause"`
	Count       int64  `json:"count"`
	Threshold   int    `json:"threshold"`
	Reason      string `json:"reason,omitempty"`
}

type ErrorMonitor interface {
	// RecordPublishError adds the failure to the window and pauses the platform once auth failures reach the threshold.
	RecordPublishError(ctx context.Context, platform entity.Platform, message, contentID string) (ErrorClass, error)
	CheckAuthFailures(ctx context.Context, platform entity.Platform) (AuthCheck, error)
	RecordSuccess(ctx context.Context, platform entity.Platform) error
	RecentFailures(ctx context.Context, platform entity.Platform) (int64, error)
}

type errorMonitor struct {
	store     kv.FailureStore
	registry  PauseRegistry
	pauser    *autoPauser
	threshold int
	window    time.Duration
	metrics   *metrics.Collector
	logger    *logger.Logger
	now       func() time.Time
}

func NewErrorMonitor(
	store kv.FailureStore,
	registry PauseRegistry,
	alerts AlertPublisher,
	threshold int,
	window time.Duration,
	metrics *metrics.Collector,
	logger *logger.Logger,
) ErrorMonitor {
	return &errorMonitor{
		store:     store,
		registry:  registry,
		pauser:    &autoPauser{registry: registry, alerts: alerts, metrics: metrics, logger: logger},
		threshold: threshold,
		window:    window,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (m *errorMonitor) RecordPublishError(ctx context.Context, platform entity.Platform, message, contentID string) (ErrorClass, error) {
	class := ClassifyError(message)
	if err := m.store.Add(ctx, platform, class == ErrorClassAuth, contentID, m.now(), m.window); err != nil {
		return class, err
	}
	m.metrics.ObservePlatformFailure(string(platform), string(class))

	if class != ErrorClassAuth {
		return class, nil
	}

	check, err := m.CheckAuthFailures(ctx, platform)
	if err != nil {
		return class, err
	}
	if !check.ShouldPause {
		return class, nil
	}

	paused, err := m.registry.IsPaused(ctx, entity.PlatformScope(platform))
	if err != nil {
		return class, err
	}
	if paused {
		return class, nil
	}

	m.logger.Warn("Auto-pausing %s: %s", platform, check.Reason)
	return class, m.pauser.pause(ctx, platform, check.Reason, errorMonitorActor)
}

func (m *errorMonitor) CheckAuthFailures(ctx context.Context, platform entity.Platform) (AuthCheck, error) {
	count, err := m.store.CountSince(ctx, platform, true, m.now().Add(-m.window))
	if err != nil {
		return AuthCheck{}, err
	}
	check := AuthCheck{Count: count, Threshold: m.threshold}
	if m.threshold > 0 && count >= int64(m.threshold) {
		check.ShouldPause = true
		check.Reason = fmt.Sprintf("%d authentication failures on %s within %s", count, platform, m.window)
	}
	return check, nil
}

func (m *errorMonitor) RecordSuccess(ctx context.Context, platform entity.Platform) error {
	return m.store.ClearAuth(ctx, platform)
}

func (m *errorMonitor) RecentFailures(ctx context.Context, platform entity.Platform) (int64, error) {
	return m.store.CountSince(ctx, platform, false, m.now().Add(-m.window))
}
