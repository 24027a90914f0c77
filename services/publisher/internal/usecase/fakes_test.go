package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/pkg/metrics"
	"social-publisher/pkg/queue"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/platform"
	"social-publisher/services/publisher/internal/repo/kv"
	"social-publisher/services/publisher/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
	// afterGet runs after GetByID has read the record, outside the mutex.
	afterGet func()
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*entity.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	post, ok := r.posts[id]
	hook := r.afterGet
	if !ok {
		r.mu.Unlock()
		return nil, persistent.ErrPostNotFound
	}
	found := *post
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return &found, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*entity.Post
	for _, post := range r.posts {
		if post.Status.Publishable() && !post.ScheduledAt.IsZero() && !post.ScheduledAt.After(now) && post.PlatformPostID == "" {
			found := *post
			due = append(due, &found)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *fakePostRepo) MarkPosted(ctx context.Context, id, platformPostID string, postedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.PlatformPostID != "" {
		return false, nil
	}
	post.PlatformPostID = platformPostID
	post.PostedAt = &postedAt
	post.Status = entity.StatusPosted
	return true, nil
}

func (r *fakePostRepo) MarkFailed(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok && post.PlatformPostID == "" {
		post.Status = entity.StatusFailed
		post.LastError = reason
	}
	return nil
}

// fakeAttemptRepo mirrors the conditional upsert of the SQL repository under one mutex.
type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts map[string]*entity.PublishAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[string]*entity.PublishAttempt)}
}

func (r *fakeAttemptRepo) FindByKey(ctx context.Context, key string) (*entity.PublishAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[key]
	if !ok {
		return nil, persistent.ErrAttemptNotFound
	}
	found := *attempt
	return &found, nil
}

func (r *fakeAttemptRepo) listByContent(contentID string) []*entity.PublishAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	var attempts []*entity.PublishAttempt
	for _, attempt := range r.attempts {
		if attempt.ContentID == contentID {
			found := *attempt
			attempts = append(attempts, &found)
		}
	}
	return attempts
}

func (r *fakeAttemptRepo) Begin(ctx context.Context, attempt *entity.PublishAttempt, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.attempts[attempt.IdempotencyKey]
	if ok {
		reclaimable := existing.Status == entity.AttemptFailed ||
			(existing.Status == entity.AttemptAttempting && existing.UpdatedAt.Before(staleBefore))
		if !reclaimable {
			return false, nil
		}
		existing.Status = entity.AttemptAttempting
		existing.Actor = attempt.Actor
		existing.PlatformPostID = ""
		existing.Error = ""
		existing.UpdatedAt = attempt.UpdatedAt
		existing.CompletedAt = nil
		return true, nil
	}
	stored := *attempt
	stored.Status = entity.AttemptAttempting
	r.attempts[attempt.IdempotencyKey] = &stored
	return true, nil
}

func (r *fakeAttemptRepo) Complete(ctx context.Context, key string, status entity.AttemptStatus, platformPostID, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[key]
	if !ok {
		return persistent.ErrAttemptNotFound
	}
	attempt.Status = status
	attempt.PlatformPostID = platformPostID
	attempt.Error = errMsg
	attempt.UpdatedAt = at
	attempt.CompletedAt = &at
	return nil
}

func (r *fakeAttemptRepo) countByStatus(status entity.AttemptStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, attempt := range r.attempts {
		if attempt.Status == status {
			n++
		}
	}
	return n
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*entity.AuditEntry
	for _, entry := range r.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.ContentID != "" && entry.ContentID != filter.ContentID {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *fakeAuditRepo) byAction(action entity.AuditAction) []*entity.AuditEntry {
	entries, _ := r.List(context.Background(), entity.AuditFilter{Action: action})
	return entries
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []queue.Alert
}

func (a *fakeAlerts) PublishAlert(ctx context.Context, alert queue.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
	return nil
}

func (a *fakeAlerts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

// stubPublisher counts platform calls; fn decides the outcome of each.
type stubPublisher struct {
	calls int32
	fn    func(ctx context.Context, req platform.Request) (*platform.Result, error)
}

func (p *stubPublisher) Publish(ctx context.Context, req platform.Request) (*platform.Result, error) {
	n := atomic.AddInt32(&p.calls, 1)
	if p.fn != nil {
		return p.fn(ctx, req)
	}
	return &platform.Result{PostID: fmt.Sprintf("platform-post-%d", n), RawResponse: `{"id":"ok"}`}, nil
}

func (p *stubPublisher) callCount() int {
	return int(atomic.LoadInt32(&p.calls))
}

type harness struct {
	mr        *miniredis.Miniredis
	posts     *fakePostRepo
	attempts  *fakeAttemptRepo
	audits    *fakeAuditRepo
	alerts    *fakeAlerts
	publisher *stubPublisher
	locks     kv.LockStore

	pauses  PauseRegistry
	rates   RateCapTracker
	dedup   DedupGuard
	monitor ErrorMonitor
	audit   AuditLog
	publish PublishUseCase
}

const testLockTTL = 5 * time.Minute

func newHarness(t *testing.T, policies map[entity.Platform]RateCapPolicy) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewWithLevel("error")
	collector := metrics.NewCollector("publisher-test", "test")
	platforms := []entity.Platform{entity.PlatformInstagram, entity.PlatformFacebook}
	if policies == nil {
		policies = map[entity.Platform]RateCapPolicy{}
	}

	h := &harness{
		mr:        mr,
		posts:     newFakePostRepo(),
		attempts:  newFakeAttemptRepo(),
		audits:    &fakeAuditRepo{},
		alerts:    &fakeAlerts{},
		publisher: &stubPublisher{},
		locks:     kv.NewLockStore(client),
	}

	h.pauses = NewPauseRegistry(kv.NewPauseStore(client), platforms, log)
	h.rates = NewRateCapTracker(kv.NewRateStore(client), policies, h.pauses, h.alerts, collector, log)
	h.dedup = NewDedupGuard(h.posts, h.attempts, h.locks, testLockTTL, log)
	h.monitor = NewErrorMonitor(kv.NewFailureStore(client), h.pauses, h.alerts, 3, time.Hour, collector, log)
	h.audit = NewAuditLog(h.audits, nil, log)

	registry := platform.NewRegistry()
	registry.Register(entity.PlatformInstagram, h.publisher)
	registry.Register(entity.PlatformFacebook, h.publisher)

	h.publish = NewPublishUseCase(h.pauses, NewStatusGate(), h.rates, h.dedup, h.monitor, h.audit, registry, h.posts, testLockTTL-time.Minute, collector, log)
	return h
}

// lockHolder returns the token of the publish lock for the post, or "" when it is free.
func (h *harness) lockHolder(contentID string, p entity.Platform) string {
	key := fmt.Sprintf("publish_lock:%s:%s", contentID, p)
	if !h.mr.Exists(key) {
		return ""
	}
	holder, _ := h.mr.Get(key)
	return holder
}

func approvedRequest(id string, p entity.Platform) entity.PublishRequest {
	scheduled := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return entity.PublishRequest{
		ID:               id,
		Platform:         string(p),
		Status:           "approved",
		Text:             "Before and after",
		Hashtags:         []string{"renovation"},
		StitchedImageURL: "https://cdn.example.com/" + id + ".jpg",
		ScheduledAt:      &scheduled,
	}
}

func (h *harness) storeRequest(t *testing.T, req entity.PublishRequest) {
	t.Helper()
	post, err := req.ToPost()
	if err != nil {
		t.Fatalf("invalid request: %v", err)
	}
	h.posts.Create(context.Background(), post)
}
