package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/model"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Post, error)
	// MarkPosted stores the platform post id unless one is already present. It reports whether the row changed.
	MarkPosted(ctx context.Context, id, platformPostID string, postedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id, reason string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if err := r.db.WithContext(ctx).Create(postModel).Error; err != nil {
		return fmt.Errorf("failed to create post %s: %w", post.ID, err)
	}
	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}
	return ToPostEntity(&postModel), nil
}

// normalizedStatusSQL folds a stored status the same way entity.ParseStatus does, so "Approved" and
// "Ready-To-Post" match their aliases.
const normalizedStatusSQL = "REPLACE(REPLACE(LOWER(TRIM(status)), '-', '_'), ' ', '_')"

func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.Post, error) {
	var postModels []model.PostModel
	query := r.db.WithContext(ctx).
		Where(normalizedStatusSQL+" IN ?", entity.PublishableStatusValues()).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Where("(platform_post_id IS NULL OR platform_post_id = '')").
		Order("scheduled_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&postModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list due posts: %w", err)
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) MarkPosted(ctx context.Context, id, platformPostID string, postedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND (platform_post_id IS NULL OR platform_post_id = '')", id).
		Updates(map[string]interface{}{
			"platform_post_id": platformPostID,
			"posted_at":        postedAt,
			"status":           string(entity.StatusPosted),
			"last_error":       "",
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark post %s posted: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *postRepository) MarkFailed(ctx context.Context, id, reason string) error {
	err := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND (platform_post_id IS NULL OR platform_post_id = '')", id).
		Updates(map[string]interface{}{
			"status":     string(entity.StatusFailed),
			"last_error": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark post %s failed: %w", id, err)
	}
	return nil
}
