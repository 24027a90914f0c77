package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditEntryModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	Actor          string    `gorm:"type:text" json:"actor"`
	Platform       string    `gorm:"type:text;index" json:"platform"`
	ContentID      string    `gorm:"type:text;index" json:"content_id"`
	IdempotencyKey string    `gorm:"type:text" json:"idempotency_key"`
	Action         string    `gorm:"type:varchar(20);not null" json:"action"`
	ErrorKind      string    `gorm:"type:varchar(40)" json:"error_kind"`
	Reason         string    `gorm:"type:text" json:"reason"`
	RawResponse    string    `gorm:"type:text" json:"raw_response"`
	RawResponseKey string    `gorm:"type:varchar(255)" json:"raw_response_key"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (AuditEntryModel) TableName() string { return "audit_entries" }

func (a *AuditEntryModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
