// Package links stores the resource links the agency shares with a client.
package links

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"gorm.io/gorm"
)

type Link struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientID    string    `gorm:"type:varchar(36);not null;index" json:"clientId"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	URL         string    `gorm:"type:varchar(2048);not null" json:"url"`
	Type        string    `gorm:"type:varchar(64)" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Link) TableName() string { return "client_links" }

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) ListByClient(ctx context.Context, clientID string) ([]Link, error) {
	var out []Link
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one link. The link must belong to clientID.
func (r *Repo) Delete(ctx context.Context, clientID, linkID string) error {
	res := r.db.WithContext(ctx).Delete(&Link{}, "id = ? AND client_id = ?", linkID, clientID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Link not found")
	}
	return nil
}

// DeleteByClient removes a client's links inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("client_id = ?", clientID).Delete(&Link{}).Error
}
