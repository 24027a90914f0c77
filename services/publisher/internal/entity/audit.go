package entity

import "time"

type AuditAction string

const (
	AuditBlocked AuditAction = "blocked"
	AuditPosted  AuditAction = "posted"
	AuditFailed  AuditAction = "failed"
)

type AuditEntry struct {
	ID             string      `json:"id"`
	Actor          string      `json:"actor"`
	Platform       Platform    `json:"platform"`
	ContentID      string      `json:"content_id"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
	Action         AuditAction `json:"action"`
	ErrorKind      ErrorKind   `json:"error_kind,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	RawResponse    string      `json:"raw_response,omitempty"`
	RawResponseKey string      `json:"raw_response_key,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type AuditFilter struct {
	Platform  Platform
	ContentID string
	Action    AuditAction
	Limit     int
}
