package http

import (
	"context"
	"time"

	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/usecase"

	"github.com/stretchr/testify/mock"
)

type MockPauseRegistry struct {
	mock.Mock
}

func (m *MockPauseRegistry) IsPaused(ctx context.Context, scope entity.PauseScope) (bool, error) {
	args := m.Called(ctx, scope)
	return args.Bool(0), args.Error(1)
}

func (m *MockPauseRegistry) State(ctx context.Context, scope entity.PauseScope) (*entity.PauseState, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PauseState), args.Error(1)
}

func (m *MockPauseRegistry) SetPaused(ctx context.Context, scope entity.PauseScope, paused bool, reason, actor string) (*entity.PauseState, error) {
	args := m.Called(ctx, scope, paused, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PauseState), args.Error(1)
}

func (m *MockPauseRegistry) ListPlatformStates(ctx context.Context) ([]*entity.PauseState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PauseState), args.Error(1)
}

type MockRateCapTracker struct {
	mock.Mock
}

func (m *MockRateCapTracker) CheckRateCaps(ctx context.Context, platform entity.Platform) (usecase.RateDecision, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).(usecase.RateDecision), args.Error(1)
}

func (m *MockRateCapTracker) ReserveSlot(ctx context.Context, platform entity.Platform) (*usecase.RateSlot, usecase.RateDecision, error) {
	args := m.Called(ctx, platform)
	slot, _ := args.Get(0).(*usecase.RateSlot)
	return slot, args.Get(1).(usecase.RateDecision), args.Error(2)
}

func (m *MockRateCapTracker) ReleaseSlot(ctx context.Context, slot *usecase.RateSlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockRateCapTracker) RecordPublish(ctx context.Context, platform entity.Platform, member string, at time.Time) error {
	args := m.Called(ctx, platform, member, at)
	return args.Error(0)
}

func (m *MockRateCapTracker) AutoPausePlatformIfNeeded(ctx context.Context, platform entity.Platform, decision usecase.RateDecision) (bool, error) {
	args := m.Called(ctx, platform, decision)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateCapTracker) Usage(ctx context.Context, platform entity.Platform) (*usecase.RateUsage, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RateUsage), args.Error(1)
}

type MockErrorMonitor struct {
	mock.Mock
}

func (m *MockErrorMonitor) RecordPublishError(ctx context.Context, platform entity.Platform, message, contentID string) (usecase.ErrorClass, error) {
	args := m.Called(ctx, platform, message, contentID)
	return args.Get(0).(usecase.ErrorClass), args.Error(1)
}

func (m *MockErrorMonitor) CheckAuthFailures(ctx context.Context, platform entity.Platform) (usecase.AuthCheck, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).(usecase.AuthCheck), args.Error(1)
}

func (m *MockErrorMonitor) RecordSuccess(ctx context.Context, platform entity.Platform) error {
	return m.Called(ctx, platform).Error(0)
}

func (m *MockErrorMonitor) RecentFailures(ctx context.Context, platform entity.Platform) (int64, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Blocked(ctx context.Context, entry *entity.AuditEntry) { m.Called(ctx, entry) }
func (m *MockAuditLog) Posted(ctx context.Context, entry *entity.AuditEntry)  { m.Called(ctx, entry) }
func (m *MockAuditLog) Failed(ctx context.Context, entry *entity.AuditEntry)  { m.Called(ctx, entry) }

func (m *MockAuditLog) Recent(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AuditEntry), args.Error(1)
}

type MockPublishUseCase struct {
	mock.Mock
}

func (m *MockPublishUseCase) Publish(ctx context.Context, req entity.PublishRequest, actor string) entity.PublishResult {
	args := m.Called(ctx, req, actor)
	return args.Get(0).(entity.PublishResult)
}

type MockDuePostJob struct {
	mock.Mock
}

func (m *MockDuePostJob) Run(ctx context.Context, now time.Time) (*usecase.DueJobSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DueJobSummary), args.Error(1)
}

var (
	_ usecase.PauseRegistry  = (*MockPauseRegistry)(nil)
	_ usecase.RateCapTracker = (*MockRateCapTracker)(nil)
	_ usecase.ErrorMonitor   = (*MockErrorMonitor)(nil)
	_ usecase.AuditLog       = (*MockAuditLog)(nil)
	_ usecase.PublishUseCase = (*MockPublishUseCase)(nil)
	_ usecase.DuePostJob     = (*MockDuePostJob)(nil)
)
