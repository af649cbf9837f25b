// Package activity records an audit trail of notable events per client.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeOnboardingCompleted = "onboarding_completed"
	TypeDocumentGenerated   = "document_generated"
	TypeWebhookResent       = "webhook_resent"
	TypeGiftRecommended     = "gift_recommended"
	TypeLinkDeleted         = "link_deleted"
)

type Log struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientID     string         `gorm:"type:varchar(36);not null;index:idx_activity_client_created,priority:1" json:"clientId"`
	ActivityType string         `gorm:"type:varchar(64);not null" json:"activityType"`
	Description  string         `gorm:"type:text" json:"description"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"index:idx_activity_client_created,priority:2" json:"createdAt"`
}

func (Log) TableName() string { return "activity_logs" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type Recorder struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecorder(db *gorm.DB, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{db: db, log: log}
}

// Record appends an entry. Failures are logged and never returned: the
// audit trail must not break the action it describes.
func (r *Recorder) Record(ctx context.Context, clientID, activityType, description string, metadata map[string]any) {
	entry := &Log{ClientID: clientID, ActivityType: activityType, Description: description}
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.log.Warn("activity record failed", "client_id", clientID, "type", activityType, "error", err)
	}
}

// Recent returns up to limit entries, newest first.
func (r *Recorder) Recent(ctx context.Context, clientID string, limit int) ([]Log, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []Log
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByClient removes a client's history inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("client_id = ?", clientID).Delete(&Log{}).Error
}
