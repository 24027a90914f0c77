package persistent

import (
	"strings"
	"time"

	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/model"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:               m.ID,
		Platform:         entity.Platform(m.Platform),
		Status:           entity.ParseStatus(m.Status),
		Text:             m.Text,
		Hashtags:         splitHashtags(m.Hashtags),
		VideoURL:         m.VideoURL,
		StitchedImageURL: m.StitchedImageURL,
		ImageAfterURL:    m.ImageAfterURL,
		PlatformPostID:   m.PlatformPostID,
		PostedAt:         m.PostedAt,
		LastError:        m.LastError,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.ScheduledAt != nil {
		post.ScheduledAt = m.ScheduledAt.UTC()
	}
	return post
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	m := &model.PostModel{
		ID:               e.ID,
		Platform:         string(e.Platform),
		Status:           string(e.Status),
		Text:             e.Text,
		Hashtags:         strings.Join(e.Hashtags, ","),
		VideoURL:         e.VideoURL,
		StitchedImageURL: e.StitchedImageURL,
		ImageAfterURL:    e.ImageAfterURL,
		PlatformPostID:   e.PlatformPostID,
		PostedAt:         e.PostedAt,
		LastError:        e.LastError,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if !e.ScheduledAt.IsZero() {
		at := e.ScheduledAt
		m.ScheduledAt = &at
	}
	return m
}

func splitHashtags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func ToAttemptEntity(m *model.PublishAttemptModel) *entity.PublishAttempt {
	if m == nil {
		return nil
	}
	return &entity.PublishAttempt{
		ID:             m.ID,
		IdempotencyKey: m.IdempotencyKey,
		ContentID:      m.ContentID,
		Platform:       entity.Platform(m.Platform),
		Status:         entity.AttemptStatus(m.Status),
		PlatformPostID: m.PlatformPostID,
		Error:          m.Error,
		Actor:          m.Actor,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		CompletedAt:    m.CompletedAt,
	}
}

func ToAttemptModel(e *entity.PublishAttempt) *model.PublishAttemptModel {
	if e == nil {
		return nil
	}
	return &model.PublishAttemptModel{
		ID:             e.ID,
		IdempotencyKey: e.IdempotencyKey,
		ContentID:      e.ContentID,
		Platform:       string(e.Platform),
		Status:         string(e.Status),
		PlatformPostID: e.PlatformPostID,
		Error:          e.Error,
		Actor:          e.Actor,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		CompletedAt:    e.CompletedAt,
	}
}

func ToAuditEntity(m *model.AuditEntryModel) *entity.AuditEntry {
	if m == nil {
		return nil
	}
	return &entity.AuditEntry{
		ID:             m.ID,
		Actor:          m.Actor,
		Platform:       entity.Platform(m.Platform),
		ContentID:      m.ContentID,
		IdempotencyKey: m.IdempotencyKey,
		Action:         entity.AuditAction(m.Action),
		ErrorKind:      entity.ErrorKind(m.ErrorKind),
		Reason:         m.Reason,
		RawResponse:    m.RawResponse,
		RawResponseKey: m.RawResponseKey,
		CreatedAt:      m.CreatedAt,
	}
}

func ToAuditModel(e *entity.AuditEntry) *model.AuditEntryModel {
	if e == nil {
		return nil
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &model.AuditEntryModel{
		ID:             e.ID,
		Actor:          e.Actor,
		Platform:       string(e.Platform),
		ContentID:      e.ContentID,
		IdempotencyKey: e.IdempotencyKey,
		Action:         string(e.Action),
		ErrorKind:      string(e.ErrorKind),
		Reason:         e.Reason,
		RawResponse:    e.RawResponse,
		RawResponseKey: e.RawResponseKey,
		CreatedAt:      createdAt,
	}
}
