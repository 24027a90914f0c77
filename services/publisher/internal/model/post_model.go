package model

import (
	"time"
)

type PostModel struct {
	ID               string     `gorm:"type:varchar(64);primary_key" json:"id"`
	Platform         string     `gorm:"type:varchar(20);not null;index" json:"platform"`
	Status           string     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Text             string     `gorm:"type:text" json:"text"`
	Hashtags         string     `gorm:"type:text" json:"hashtags"`
	VideoURL         string     `gorm:"type:varchar(1000)" json:"video_url"`
	StitchedImageURL string     `gorm:"type:varchar(1000)" json:"stitched_image_url"`
	ImageAfterURL    string     `gorm:"type:varchar(1000)" json:"image_after_url"`
	ScheduledAt      *time.Time `gorm:"index" json:"scheduled_at"`
	PlatformPostID   string     `gorm:"type:varchar(128)" json:"platform_post_id"`
	PostedAt         *time.Time `json:"posted_at"`
	LastError        string     `gorm:"type:text" json:"last_error"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (PostModel) TableName() string { return "posts" }
