package milestones

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

// ListByClient returns milestones in display order.
func (r *Repo) ListByClient(ctx context.Context, clientID string) ([]Milestone, error) {
	var out []Milestone
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("display_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Milestone, error) {
	var m Milestone
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Milestone not found")
		}
		return nil, err
	}
	return &m, nil
}

// Append inserts ms after the client's current last milestone, numbering
// them consecutively. The max lookup and the inserts share a transaction.
func (r *Repo) Append(ctx context.Context, clientID string, ms []*Milestone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&Milestone{}).
			Where("client_id = ?", clientID).
			Select("COALESCE(MAX(display_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		for i, m := range ms {
			m.ClientID = clientID
			m.DisplayOrder = maxOrder + i + 1
		}
		return tx.Create(ms).Error
	})
}

func (r *Repo) Update(ctx context.Context, id string, updates map[string]any) (*Milestone, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&Milestone{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Milestone{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Milestone not found")
	}
	return nil
}

// DeleteByClient removes a client's milestones inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("client_id = ?", clientID).Delete(&Milestone{}).Error
}
