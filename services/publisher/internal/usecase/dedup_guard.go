package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/kv"
	"social-publisher/services/publisher/internal/repo/persistent"
)

const (
	idempotencyKeyPrefix = "pub_"
	idempotencyHashLen   = 32
	mediaSignatureLimit  = 100
)

// GenerateIdempotencyKey derives the key for one publish intent. A new schedule or new media is a new intent.
func GenerateIdempotencyKey(contentID string, platform entity.Platform, scheduledAt time.Time, mediaSignature string) string {
	if len(mediaSignature) > mediaSignatureLimit {
		mediaSignature = mediaSignature[:mediaSignatureLimit]
	}
	scheduled := ""
	if !scheduledAt.IsZero() {
		scheduled = scheduledAt.UTC().Format(time.RFC3339)
	}

	sum := sha256.Sum256([]byte(strings.Join([]string{contentID, string(platform), scheduled, mediaSignature}, "|")))
	return idempotencyKeyPrefix + hex.EncodeToString(sum[:])[:idempotencyHashLen]
}

type AlreadyPosted struct {
	AlreadyPosted  bool
	PlatformPostID string
}

type DedupGuard interface {
	CheckAlreadyPosted(ctx context.Context, post *entity.Post) (AlreadyPosted, error)
	CheckDuplicateAttempt(ctx context.Context, key string) (bool, error)
	AcquirePublishLock(ctx context.Context, contentID string, platform entity.Platform) (*entity.PublishLock, bool, error)
	ReleasePublishLock(ctx context.Context, lockID string) error
	// BeginAttempt atomically claims the key. false means another caller holds or already finished it.
	BeginAttempt(ctx context.Context, attempt *entity.PublishAttempt) (bool, error)
	CompleteAttempt(ctx context.Context, key string, status entity.AttemptStatus, platformPostID, errMsg string) error
}

type dedupGuard struct {
	postRepo    persistent.PostRepository
	attemptRepo persistent.AttemptRepository
	locks       kv.LockStore
	lockTTL     time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

func NewDedupGuard(
	postRepo persistent.PostRepository,
	attemptRepo persistent.AttemptRepository,
	locks kv.LockStore,
	lockTTL time.Duration,
	logger *logger.Logger,
) DedupGuard {
	return &dedupGuard{
		postRepo:    postRepo,
		attemptRepo: attemptRepo,
		locks:       locks,
		lockTTL:     lockTTL,
		logger:      logger,
		now:         time.Now,
	}
}

func (g *dedupGuard) CheckAlreadyPosted(ctx context.Context, post *entity.Post) (AlreadyPosted, error) {
	if post.PlatformPostID != "" {
		return AlreadyPosted{AlreadyPosted: true, PlatformPostID: post.PlatformPostID}, nil
	}

	stored, err := g.postRepo.GetByID(ctx, post.ID)
	if errors.Is(err, persistent.ErrPostNotFound) {
		return AlreadyPosted{}, nil
	}
	if err != nil {
		return AlreadyPosted{}, err
	}
	if stored.PlatformPostID != "" {
		return AlreadyPosted{AlreadyPosted: true, PlatformPostID: stored.PlatformPostID}, nil
	}
	return AlreadyPosted{}, nil
}

func (g *dedupGuard) CheckDuplicateAttempt(ctx context.Context, key string) (bool, error) {
	attempt, err := g.attemptRepo.FindByKey(ctx, key)
	if errors.Is(err, persistent.ErrAttemptNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return attempt.Blocks(g.staleBefore()), nil
}

func (g *dedupGuard) AcquirePublishLock(ctx context.Context, contentID string, platform entity.Platform) (*entity.PublishLock, bool, error) {
	return g.locks.Acquire(ctx, contentID, platform, g.lockTTL, g.now())
}

func (g *dedupGuard) ReleasePublishLock(ctx context.Context, lockID string) error {
	released, err := g.locks.Release(ctx, lockID)
	if err != nil {
		return err
	}
	if !released {
		g.logger.Warn("Lock %s had already expired or been reclaimed", lockID)
	}
	return nil
}

func (g *dedupGuard) BeginAttempt(ctx context.Context, attempt *entity.PublishAttempt) (bool, error) {
	now := g.now().UTC()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	return g.attemptRepo.Begin(ctx, attempt, g.staleBefore())
}

func (g *dedupGuard) CompleteAttempt(ctx context.Context, key string, status entity.AttemptStatus, platformPostID, errMsg string) error {
	return g.attemptRepo.Complete(ctx, key, status, platformPostID, errMsg, g.now().UTC())
}

// An attempt untouched for a full lock TTL has outlived any lock that could have protected it.
func (g *dedupGuard) staleBefore() time.Time {
	return g.now().UTC().Add(-g.lockTTL)
}
