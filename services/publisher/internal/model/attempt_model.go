package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublishAttemptModel struct {
	ID             string     `gorm:"type:uuid;primary_key" json:"id"`
	IdempotencyKey string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"idempotency_key"`
	ContentID      string     `gorm:"type:varchar(64);not null;index" json:"content_id"`
	Platform       string     `gorm:"type:varchar(20);not null" json:"platform"`
	Status         string     `gorm:"type:varchar(20);not null" json:"status"`
	PlatformPostID string     `gorm:"type:varchar(128)" json:"platform_post_id"`
	Error          string     `gorm:"type:text" json:"error"`
	Actor          string     `gorm:"type:text" json:"actor"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

func (PublishAttemptModel) TableName() string { return "publish_attempts" }

func (a *PublishAttemptModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
