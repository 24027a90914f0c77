package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"social-publisher/pkg/logger"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/persistent"

	"github.com/google/uuid"
)

const maxStoredRawResponse = 4 << 10

// Archiver stores full platform responses outside the database. s3.Client implements it.
type Archiver interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// AuditLog appends one immutable entry per publish decision. Write failures are logged and swallowed.
type AuditLog interface {
	Blocked(ctx context.Context, entry *entity.AuditEntry)
	Posted(ctx context.Context, entry *entity.AuditEntry)
	Failed(ctx context.Context, entry *entity.AuditEntry)
	Recent(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error)
}

type auditLog struct {
	repo     persistent.AuditRepository
	archiver Archiver
	logger   *logger.Logger
	now      func() time.Time
}

func NewAuditLog(repo persistent.AuditRepository, archiver Archiver, logger *logger.Logger) AuditLog {
	return &auditLog{
		repo:     repo,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *auditLog) Blocked(ctx context.Context, entry *entity.AuditEntry) {
	entry.Action = entity.AuditBlocked
	a.write(ctx, entry)
}

func (a *auditLog) Posted(ctx context.Context, entry *entity.AuditEntry) {
	entry.Action = entity.AuditPosted
	a.write(ctx, entry)
}

func (a *auditLog) Failed(ctx context.Context, entry *entity.AuditEntry) {
	entry.Action = entity.AuditFailed
	a.write(ctx, entry)
}

func (a *auditLog) Recent(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	return a.repo.List(ctx, filter)
}

func (a *auditLog) write(ctx context.Context, entry *entity.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = a.now().UTC()

	if entry.RawResponse != "" && a.archiver != nil {
		key := fmt.Sprintf("audit/%s/%s.json", entry.CreatedAt.Format("2006/01/02"), entry.ID)
		if _, err := a.archiver.PutObject(ctx, key, []byte(entry.RawResponse), "application/json"); err != nil {
			a.logger.Error("Failed to archive raw response for %s: %v", entry.ContentID, err)
		} else {
			entry.RawResponseKey = key
		}
	}
	entry.RawResponse = truncateUTF8(entry.RawResponse, maxStoredRawResponse)

	if err := a.repo.Create(ctx, entry); err != nil {
		a.logger.Error("Failed to write %s audit entry for %s/%s: %v", entry.Action, entry.ContentID, entry.Platform, err)
	}
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
