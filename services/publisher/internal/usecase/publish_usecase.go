package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-publisher/pkg/errtrack"
	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/platform"
	"social-publisher/services/publisher/internal/repo/persistent"
)

const defaultActor = "system"

// PublishUseCase runs every publish through the guard pipeline: pause switches, status, rate caps,
// dedup checks and the per-post lock, then the platform call and its bookkeeping.
type PublishUseCase interface {
	Publish(ctx context.Context, req entity.PublishRequest, actor string) entity.PublishResult
}

type publishUseCase struct {
	pauses    PauseRegistry
	gate      StatusGate
	rates     RateCapTracker
	dedup     DedupGuard
	monitor   ErrorMonitor
	audit     AuditLog
	platforms *platform.Registry
	postRepo  persistent.PostRepository
	metrics   *metrics.Collector
	logger    *logger.Logger
	// publishTimeout bounds the platform call; it must end before the publish lock expires.
	publishTimeout time.Duration
}

func NewPublishUseCase(
	pauses PauseRegistry,
	gate StatusGate,
	rates RateCapTracker,
	dedup DedupGuard,
	monitor ErrorMonitor,
	audit AuditLog,
	platforms *platform.Registry,
	postRepo persistent.PostRepository,
	publishTimeout time.Duration,
	metrics *metrics.Collector,
	logger *logger.Logger,
) PublishUseCase {
	return &publishUseCase{
		pauses:    pauses,
		gate:      gate,
		rates:     rates,
		dedup:     dedup,
		monitor:   monitor,
		audit:     audit,
		platforms: platforms,
		postRepo:  postRepo,
		metrics:   metrics,
		logger:    logger,

		publishTimeout: publishTimeout,
	}
}

// publishRun tracks what one call has acquired so the exit path can undo it.
type publishRun struct {
	actor     string
	contentID string
	platform  entity.Platform
	key       string
	slot      *RateSlot
	lock      *entity.PublishLock
	claimed   bool
	completed bool
	published bool
	log       *logger.Logger
}

func (r *publishRun) tags() map[string]string {
	return map[string]string{
		"content_id":      r.contentID,
		"platform":        string(r.platform),
		"idempotency_key": r.key,
	}
}

func (uc *publishUseCase) Publish(ctx context.Context, req entity.PublishRequest, actor string) (result entity.PublishResult) {
	if actor == "" {
		actor = defaultActor
	}
	run := &publishRun{
		actor:     actor,
		contentID: req.ID,
		platform:  entity.Platform(req.Platform),
		log:       uc.logger.WithFields(logger.Fields{"content_id": req.ID, "platform": req.Platform}),
	}
	defer uc.finish(ctx, run, &result)

	post, err := req.ToPost()
	if err != nil {
		return uc.block(ctx, run, entity.ErrInvalidPost, err.Error())
	}
	run.platform = post.Platform

	media, err := post.Media()
	if err != nil {
		return uc.block(ctx, run, entity.ErrInvalidPost, err.Error())
	}
	publisher, err := uc.platforms.Publisher(post.Platform)
	if err != nil {
		return uc.block(ctx, run, entity.ErrInvalidPost, err.Error())
	}

	paused, err := uc.pauses.IsPaused(ctx, entity.GlobalScope)
	if err != nil {
		return uc.internal(ctx, run, "pause check", err)
	}
	if paused {
		return uc.block(ctx, run, entity.ErrPostingPaused, "Posting is paused globally")
	}
	paused, err = uc.pauses.IsPaused(ctx, entity.PlatformScope(post.Platform))
	if err != nil {
		return uc.internal(ctx, run, "pause check", err)
	}
	if paused {
		return uc.block(ctx, run, entity.ErrPlatformDisabled, fmt.Sprintf("Posting to %s is paused", post.Platform))
	}

	if status, ok := uc.gate.CanPublish(string(post.Status)); !ok {
		return uc.block(ctx, run, entity.ErrNotApproved, fmt.Sprintf("Post status %q does not allow publishing", status))
	}

	slot, decision, err := uc.rates.ReserveSlot(ctx, post.Platform)
	if err != nil {
		return uc.internal(ctx, run, "rate check", err)
	}
	if !decision.Allowed {
		if _, err := uc.rates.AutoPausePlatformIfNeeded(ctx, post.Platform, decision); err != nil {
			run.log.Error("Failed to auto-pause after rate cap: %v", err)
		}
		return uc.block(ctx, run, decision.ErrorKind(), decision.Message)
	}
	run.slot = slot

	already, err := uc.dedup.CheckAlreadyPosted(ctx, post)
	if err != nil {
		return uc.internal(ctx, run, "already-posted check", err)
	}
	if already.AlreadyPosted {
		return uc.block(ctx, run, entity.ErrDuplicateBlocked, fmt.Sprintf("Already posted as %s", already.PlatformPostID))
	}

	run.key = GenerateIdempotencyKey(post.ID, post.Platform, post.ScheduledAt, media.Signature())
	run.log = run.log.WithFields(logger.Fields{"idempotency_key": run.key})

	duplicate, err := uc.dedup.CheckDuplicateAttempt(ctx, run.key)
	if err != nil {
		return uc.internal(ctx, run, "duplicate check", err)
	}
	if duplicate {
		return uc.block(ctx, run, entity.ErrDuplicateBlocked, "A publish attempt for this content is already in progress or complete")
	}

	lock, acquired, err := uc.dedup.AcquirePublishLock(ctx, post.ID, post.Platform)
	if err != nil {
		return uc.internal(ctx, run, "lock acquire", err)
	}
	if !acquired {
		return uc.block(ctx, run, entity.ErrDuplicateBlocked, "Another publish holds the lock for this content")
	}
	run.lock = lock

	claimed, err := uc.dedup.BeginAttempt(ctx, &entity.PublishAttempt{
		IdempotencyKey: run.key,
		ContentID:      post.ID,
		Platform:       post.Platform,
		Actor:          actor,
	})
	if err != nil {
		return uc.internal(ctx, run, "begin attempt", err)
	}
	if !claimed {
		return uc.block(ctx, run, entity.ErrDuplicateBlocked, "A publish attempt for this content is already in progress or complete")
	}
	run.claimed = true

	// A publish under another key may have landed between the first check and the claim.
	already, err = uc.dedup.CheckAlreadyPosted(ctx, post)
	if err != nil {
		return uc.internal(ctx, run, "already-posted check", err)
	}
	if already.AlreadyPosted {
		reason := fmt.Sprintf("Already posted as %s", already.PlatformPostID)
		uc.closeAttempt(ctx, run, reason)
		return uc.block(ctx, run, entity.ErrDuplicateBlocked, reason)
	}

	callCtx := ctx
	if uc.publishTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.publishTimeout)
		defer cancel()
	}
	started := time.Now()
	res, err := publisher.Publish(callCtx, platform.Request{
		Platform: post.Platform,
		Media:    media,
		Caption:  post.Caption(),
	})
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	uc.metrics.ObservePlatformCall(string(post.Platform), time.Since(started))

	if err != nil {
		return uc.recordFailure(ctx, run, res, err, timedOut)
	}
	return uc.recordSuccess(ctx, run, res)
}

// finish always runs: it turns a panic into INTERNAL_ERROR, closes a claimed attempt and releases the lock.
func (uc *publishUseCase) finish(ctx context.Context, run *publishRun, result *entity.PublishResult) {
	cleanupCtx := context.WithoutCancel(ctx)

	if recovered := recover(); recovered != nil {
		errtrack.CaptureRecovered(recovered, run.tags())
		run.log.Error("Recovered panic while publishing: %v", recovered)

		reason := fmt.Sprintf("unexpected failure: %v", recovered)
		uc.closeAttempt(cleanupCtx, run, reason)
		uc.audit.Failed(cleanupCtx, run.auditEntry(entity.ErrInternal, reason))
		uc.metrics.ObservePublish(string(run.platform), "failed", string(entity.ErrInternal))
		*result = entity.Failed(entity.ErrInternal, "Unexpected error while publishing")
	}

	if run.slot != nil && !run.published {
		if err := uc.rates.ReleaseSlot(cleanupCtx, run.slot); err != nil {
			run.log.Error("Failed to release rate slot: %v", err)
		}
	}

	if run.lock != nil {
		if err := uc.dedup.ReleasePublishLock(cleanupCtx, run.lock.ID); err != nil {
			run.log.Error("Failed to release lock %s: %v", run.lock.ID, err)
		}
	}
}

func (uc *publishUseCase) recordSuccess(ctx context.Context, run *publishRun, res *platform.Result) entity.PublishResult {
	cleanupCtx := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	run.published = true

	if err := uc.dedup.CompleteAttempt(cleanupCtx, run.key, entity.AttemptSuccess, res.PostID, ""); err != nil {
		errtrack.Capture(err, run.tags())
		run.log.Error("Published as %s but failed to record attempt: %v", res.PostID, err)
	}
	run.completed = true

	if updated, err := uc.postRepo.MarkPosted(cleanupCtx, run.contentID, res.PostID, now); err != nil {
		errtrack.Capture(err, run.tags())
		run.log.Error("Failed to mark post posted: %v", err)
	} else if !updated {
		run.log.Warn("Post record missing or already carries a platform post id")
	}

	member := run.key
	if run.slot != nil {
		member = run.slot.Member
	}
	if err := uc.rates.RecordPublish(cleanupCtx, run.platform, member, now); err != nil {
		run.log.Error("Failed to record rate usage: %v", err)
	}
	if err := uc.monitor.RecordSuccess(cleanupCtx, run.platform); err != nil {
		run.log.Error("Failed to clear auth failures: %v", err)
	}

	entry := run.auditEntry("", "")
	entry.RawResponse = res.RawResponse
	uc.audit.Posted(cleanupCtx, entry)
	uc.metrics.ObservePublish(string(run.platform), "posted", "")

	run.log.Info("Published as %s", res.PostID)
	return entity.Succeeded(res.PostID)
}

func (uc *publishUseCase) recordFailure(ctx context.Context, run *publishRun, res *platform.Result, publishErr error, timedOut bool) entity.PublishResult {
	cleanupCtx := context.WithoutCancel(ctx)
	message := publishErr.Error()

	kind := entity.ErrPlatformError
	if timedOut || errors.Is(publishErr, platform.ErrProcessingTimeout) {
		kind = entity.ErrProcessingTimeout
	}

	if err := uc.dedup.CompleteAttempt(cleanupCtx, run.key, entity.AttemptFailed, "", message); err != nil {
		run.log.Error("Failed to record failed attempt: %v", err)
	}
	run.completed = true

	if err := uc.postRepo.MarkFailed(cleanupCtx, run.contentID, message); err != nil {
		run.log.Error("Failed to mark post failed: %v", err)
	}

	class, err := uc.monitor.RecordPublishError(cleanupCtx, run.platform, message, run.contentID)
	if err != nil {
		run.log.Error("Failed to record publish error: %v", err)
	}

	entry := run.auditEntry(kind, message)
	if res != nil {
		entry.RawResponse = res.RawResponse
	}
	uc.audit.Failed(cleanupCtx, entry)
	uc.metrics.ObservePublish(string(run.platform), "failed", string(kind))

	run.log.Warn("Publish failed (%s, %s): %s", kind, class, message)
	return entity.Failed(kind, message)
}

func (uc *publishUseCase) block(ctx context.Context, run *publishRun, kind entity.ErrorKind, message string) entity.PublishResult {
	run.log.Info("Publish blocked: %s: %s", kind, message)
	uc.audit.Blocked(context.WithoutCancel(ctx), run.auditEntry(kind, message))
	uc.metrics.ObservePublish(string(run.platform), "blocked", string(kind))
	return entity.Failed(kind, message)
}

func (uc *publishUseCase) internal(ctx context.Context, run *publishRun, stage string, err error) entity.PublishResult {
	errtrack.Capture(err, run.tags())
	run.log.Error("Publish aborted at %s: %v", stage, err)
	uc.closeAttempt(ctx, run, fmt.Sprintf("%s: %v", stage, err))
	uc.audit.Failed(context.WithoutCancel(ctx), run.auditEntry(entity.ErrInternal, fmt.Sprintf("%s: %v", stage, err)))
	uc.metrics.ObservePublish(string(run.platform), "failed", string(entity.ErrInternal))
	return entity.Failed(entity.ErrInternal, fmt.Sprintf("Internal error during %s", stage))
}

// closeAttempt marks a claimed attempt failed when the run ends without reaching the platform outcome.
func (uc *publishUseCase) closeAttempt(ctx context.Context, run *publishRun, reason string) {
	if !run.claimed || run.completed {
		return
	}
	if err := uc.dedup.CompleteAttempt(context.WithoutCancel(ctx), run.key, entity.AttemptFailed, "", reason); err != nil {
		run.log.Error("Failed to record failed attempt: %v", err)
	}
	run.completed = true
}

func (r *publishRun) auditEntry(kind entity.ErrorKind, reason string) *entity.AuditEntry {
	return &entity.AuditEntry{
		Actor:          r.actor,
		Platform:       r.platform,
		ContentID:      r.contentID,
		IdempotencyKey: r.key,
		ErrorKind:      kind,
		Reason:         reason,
	}
}
