package entity

import "time"

type AttemptStatus string

const (
	AttemptAttempting AttemptStatus = "attempting"
	AttemptSuccess    AttemptStatus = "success"
	AttemptFailed     AttemptStatus = "failed"
)

// PublishAttempt is the forensic record of one publish intent, keyed by its idempotency key.
type PublishAttempt struct {
	ID             string        `json:"id"`
	IdempotencyKey string        `json:"idempotency_key"`
	ContentID      string        `json:"content_id"`
	Platform       Platform      `json:"platform"`
	Status         AttemptStatus `json:"status"`
	PlatformPostID string        `json:"platform_post_id,omitempty"`
	Error          string        `json:"error,omitempty"`
	Actor          string        `json:"actor"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// Blocks reports whether this attempt prevents a new one with the same key. An attempt still marked
// attempting stops blocking once it was last touched before staleBefore.
func (a *PublishAttempt) Blocks(staleBefore time.Time) bool {
	switch a.Status {
	case AttemptSuccess:
		return true
	case AttemptAttempting:
		return a.UpdatedAt.After(staleBefore)
	default:
		return false
	}
}

// PublishLock is the mutual-exclusion token for one (content, platform) pair.
type PublishLock struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	ContentID  string    `json:"content_id"`
	Platform   Platform  `json:"platform"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
