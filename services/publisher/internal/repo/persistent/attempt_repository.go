package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAttemptNotFound = errors.New("publish attempt not found")

type AttemptRepository interface {
	FindByKey(ctx context.Context, key string) (*entity.PublishAttempt, error)
	// Begin claims the idempotency key by writing an attempting record. The write only happens when no record
	// exists, the existing one failed, or it has been attempting since before staleBefore. It reports whether
	// the claim was won.
	Begin(ctx context.Context, attempt *entity.PublishAttempt, staleBefore time.Time) (bool, error)
	Complete(ctx context.Context, key string, status entity.AttemptStatus, platformPostID, errMsg string, at time.Time) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindByKey(ctx context.Context, key string) (*entity.PublishAttempt, error) {
	var attemptModel model.PublishAttemptModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&attemptModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt %s: %w", key, err)
	}
	return ToAttemptEntity(&attemptModel), nil
}

func (r *attemptRepository) Begin(ctx context.Context, attempt *entity.PublishAttempt, staleBefore time.Time) (bool, error) {
	attempt.Status = entity.AttemptAttempting
	attemptModel := ToAttemptModel(attempt)

	status := clause.Column{Table: "publish_attempts", Name: "status"}
	updatedAt := clause.Column{Table: "publish_attempts", Name: "updated_at"}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "idempotency_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":           string(entity.AttemptAttempting),
			"actor":            attemptModel.Actor,
			"platform_post_id": "",
			"error":            "",
			"updated_at":       attemptModel.UpdatedAt,
			"completed_at":     nil,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Or(
				clause.Eq{Column: status, Value: string(entity.AttemptFailed)},
				clause.And(
					clause.Eq{Column: status, Value: string(entity.AttemptAttempting)},
					clause.Lt{Column: updatedAt, Value: staleBefore},
				),
			),
		}},
	}).Create(attemptModel)
	if result.Error != nil {
		return false, fmt.Errorf("failed to begin attempt %s: %w", attempt.IdempotencyKey, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *attemptRepository) Complete(ctx context.Context, key string, status entity.AttemptStatus, platformPostID, errMsg string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.PublishAttemptModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{
			"status":           string(status),
			"platform_post_id": platformPostID,
			"error":            errMsg,
			"updated_at":       at,
			"completed_at":     at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete attempt %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}
