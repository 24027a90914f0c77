package persistent

import (
	"context"
	"fmt"

	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/model"

	"gorm.io/gorm"
)

const maxAuditPage = 500

type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	auditModel := ToAuditModel(entry)
	if err := r.db.WithContext(ctx).Create(auditModel).Error; err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	entry.ID = auditModel.ID
	entry.CreatedAt = auditModel.CreatedAt
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Platform != "" {
		query = query.Where("platform = ?", string(filter.Platform))
	}
	if filter.ContentID != "" {
		query = query.Where("content_id = ?", filter.ContentID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	limit := filter.Limit
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}

	var auditModels []model.AuditEntryModel
	if err := query.Limit(limit).Find(&auditModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	entries := make([]*entity.AuditEntry, len(auditModels))
	for i := range auditModels {
		entries[i] = ToAuditEntity(&auditModels[i])
	}
	return entries, nil
}
