package notify

import (
	"context"
	"errors"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Delivery CRUD
func (r *Repo) CreateDelivery(ctx context.Context, d *Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	var d Delivery
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Delivery not found")
		}
		return nil, err
	}
	return &d, nil
}

// MarkRunning claims a delivery for one attempt. It reports false when the
// delivery is already running or finished.
func (r *Repo) MarkRunning(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Delivery{}).
		Where("id = ? AND status = ?", id, DeliveryQueued).
		Updates(map[string]any{
			"status":   DeliveryRunning,
			"attempts": gorm.Expr("attempts + 1"),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *Repo) MarkSucceeded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Delivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     DeliverySucceeded,
			"last_error": nil,
		}).Error
}

// MarkAttemptFailed records errMsg. With final set the delivery is closed,
// otherwise it is queued for another attempt.
func (r *Repo) MarkAttemptFailed(ctx context.Context, id, errMsg string, final bool) error {
	status := DeliveryQueued
	if final {
		status = DeliveryFailed
	}
	return r.db.WithContext(ctx).Model(&Delivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"last_error": errMsg,
		}).Error
}

func (r *Repo) CreateWebhookLog(ctx context.Context, l *WebhookLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *Repo) ListWebhookLogs(ctx context.Context, clientID string, limit int) ([]WebhookLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []WebhookLog
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteByClient removes a client's deliveries and webhook logs inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	if err := tx.Where("client_id = ?", clientID).Delete(&WebhookLog{}).Error; err != nil {
		return err
	}
	return tx.Where("client_id = ?", clientID).Delete(&Delivery{}).Error
}
