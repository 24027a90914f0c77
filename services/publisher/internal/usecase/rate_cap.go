package usecase

import (
	"context"
	"fmt"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/kv"

	"github.com/google/uuid"
)

const (
	rateCapActor  = "rate-cap-tracker"
	rateRetention = 24 * time.Hour
)

// RateCapPolicy is the publishing budget for one platform. A zero field disables that rule.
type RateCapPolicy struct {
	Cooldown  time.Duration
	HourlyCap int
	DailyCap  int
}

type RateDecisionKind string

const (
	RateAllowed  RateDecisionKind = "none"
	RateCooldown RateDecisionKind = "cooldown"
	RateCap      RateDecisionKind = "cap"
)

type RateDecision struct {
	Allowed bool             `json:"allowed"`
	Kind    RateDecisionKind `json:"kind"`
	Message string           `json:"message,omitempty"`
}

// ErrorKind maps a denied decision to the caller-visible error kind.
func (d RateDecision) ErrorKind() entity.ErrorKind {
	if d.Kind == RateCooldown {
		return entity.ErrCooldownActive
	}
	return entity.ErrRateCapExceeded
}

type RateUsage struct {
	Platform    entity.Platform `json:"platform"`
	LastHour    int64           `json:"last_hour"`
	LastDay     int64           `json:"last_day"`
	HourlyCap   int             `json:"hourly_cap"`
	DailyCap    int             `json:"daily_cap"`
	Cooldown    string          `json:"cooldown"`
	LastPublish *time.Time      `json:"last_publish,omitempty"`
}

// RateSlot is publish budget held from the rate gate until the platform call settles.
type RateSlot struct {
	Platform    entity.Platform
	Member      string
	reservation *kv.RateReservation
}

type RateCapTracker interface {
	// CheckRateCaps evaluates the budget without taking any of it.
	CheckRateCaps(ctx context.Context, platform entity.Platform) (RateDecision, error)
	// ReserveSlot evaluates the budget and, when allowed, takes a slot in the same atomic step.
	// The slot is either confirmed with RecordPublish or handed back with ReleaseSlot.
	ReserveSlot(ctx context.Context, platform entity.Platform) (*RateSlot, RateDecision, error)
	ReleaseSlot(ctx context.Context, slot *RateSlot) error
	RecordPublish(ctx context.Context, platform entity.Platform, member string, at time.Time) error
	// AutoPausePlatformIfNeeded pauses the platform when the decision is a cap breach. Cooldowns never pause.
	AutoPausePlatformIfNeeded(ctx context.Context, platform entity.Platform, decision RateDecision) (bool, error)
	Usage(ctx context.Context, platform entity.Platform) (*RateUsage, error)
}

type rateCapTracker struct {
	store    kv.RateStore
	policies map[entity.Platform]RateCapPolicy
	pauser   *autoPauser
	logger   *logger.Logger
	now      func() time.Time
}

func NewRateCapTracker(
	store kv.RateStore,
	policies map[entity.Platform]RateCapPolicy,
	registry PauseRegistry,
	alerts AlertPublisher,
	metrics *metrics.Collector,
	logger *logger.Logger,
) RateCapTracker {
	return &rateCapTracker{
		store:    store,
		policies: policies,
		pauser:   &autoPauser{registry: registry, alerts: alerts, metrics: metrics, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

func (t *rateCapTracker) CheckRateCaps(ctx context.Context, platform entity.Platform) (RateDecision, error) {
	policy := t.policies[platform]
	now := t.now()

	if policy.Cooldown > 0 {
		last, found, err := t.store.LastPublish(ctx, platform)
		if err != nil {
			return RateDecision{}, err
		}
		if found && now.Sub(last) < policy.Cooldown {
			return cooldownDecision(platform, policy, last, now), nil
		}
	}

	if policy.HourlyCap > 0 {
		count, err := t.store.CountSince(ctx, platform, now.Add(-time.Hour))
		if err != nil {
			return RateDecision{}, err
		}
		if count >= int64(policy.HourlyCap) {
			return hourlyCapDecision(platform, policy, count), nil
		}
	}

	if policy.DailyCap > 0 {
		count, err := t.store.CountSince(ctx, platform, now.Add(-24*time.Hour))
		if err != nil {
			return RateDecision{}, err
		}
		if count >= int64(policy.DailyCap) {
			return dailyCapDecision(platform, policy, count), nil
		}
	}

	return RateDecision{Allowed: true, Kind: RateAllowed}, nil
}

func (t *rateCapTracker) ReserveSlot(ctx context.Context, platform entity.Platform) (*RateSlot, RateDecision, error) {
	policy := t.policies[platform]
	now := t.now()
	limits := kv.RateLimits{Cooldown: policy.Cooldown, HourlyCap: policy.HourlyCap, DailyCap: policy.DailyCap}

	reservation, err := t.store.Reserve(ctx, platform, "slot_"+uuid.New().String(), now, limits, rateRetention)
	if err != nil {
		return nil, RateDecision{}, err
	}

	switch reservation.Verdict {
	case kv.RateReserved:
		slot := &RateSlot{Platform: platform, Member: reservation.Member, reservation: reservation}
		return slot, RateDecision{Allowed: true, Kind: RateAllowed}, nil
	case kv.RateVerdictCooldown:
		return nil, cooldownDecision(platform, policy, reservation.Last, now), nil
	case kv.RateVerdictHourly:
		return nil, hourlyCapDecision(platform, policy, reservation.Count), nil
	default:
		return nil, dailyCapDecision(platform, policy, reservation.Count), nil
	}
}

func (t *rateCapTracker) ReleaseSlot(ctx context.Context, slot *RateSlot) error {
	if slot == nil {
		return nil
	}
	return t.store.Cancel(ctx, slot.Platform, slot.reservation, rateRetention)
}

func (t *rateCapTracker) RecordPublish(ctx context.Context, platform entity.Platform, member string, at time.Time) error {
	return t.store.Record(ctx, platform, member, at, rateRetention)
}

func (t *rateCapTracker) AutoPausePlatformIfNeeded(ctx context.Context, platform entity.Platform, decision RateDecision) (bool, error) {
	if decision.Allowed || decision.Kind != RateCap {
		return false, nil
	}
	if err := t.pauser.pause(ctx, platform, decision.Message, rateCapActor); err != nil {
		return false, err
	}
	return true, nil
}

func (t *rateCapTracker) Usage(ctx context.Context, platform entity.Platform) (*RateUsage, error) {
	policy := t.policies[platform]
	now := t.now()

	hour, err := t.store.CountSince(ctx, platform, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	day, err := t.store.CountSince(ctx, platform, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	usage := &RateUsage{
		Platform:  platform,
		LastHour:  hour,
		LastDay:   day,
		HourlyCap: policy.HourlyCap,
		DailyCap:  policy.DailyCap,
		Cooldown:  policy.Cooldown.String(),
	}
	last, found, err := t.store.LastPublish(ctx, platform)
	if err != nil {
		return nil, err
	}
	if found {
		usage.LastPublish = &last
	}
	return usage, nil
}

func cooldownDecision(platform entity.Platform, policy RateCapPolicy, last, now time.Time) RateDecision {
	remaining := (policy.Cooldown - now.Sub(last)).Round(time.Second)
	return RateDecision{
		Kind:    RateCooldown,
		Message: fmt.Sprintf("Cooldown active for %s: next post allowed in %s", platform, remaining),
	}
}

func hourlyCapDecision(platform entity.Platform, policy RateCapPolicy, count int64) RateDecision {
	return RateDecision{
		Kind:    RateCap,
		Message: fmt.Sprintf("Hourly cap reached for %s: %d/%d posts in the last hour", platform, count, policy.HourlyCap),
	}
}

func dailyCapDecision(platform entity.Platform, policy RateCapPolicy, count int64) RateDecision {
	return RateDecision{
		Kind:    RateCap,
		Message: fmt.Sprintf("Daily cap reached for %s: %d/%d posts in the last 24h", platform, count, policy.DailyCap),
	}
}
