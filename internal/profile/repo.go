package profile

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

// Create inserts p. A second profile for the same user is a conflict.
func (r *Repo) Create(ctx context.Context, p *ClientProfile) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Onboarding already completed")
	}
	return err
}

func (r *Repo) GetByUserID(ctx context.Context, userID string) (*ClientProfile, error) {
	var p ClientProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err, "Client profile not found")
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*ClientProfile, error) {
	var p ClientProfile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Client not found")
	}
	return &p, nil
}

func (r *Repo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ClientProfile{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

// Update applies column updates to one profile and returns the fresh row.
func (r *Repo) Update(ctx context.Context, id string, updates map[string]any) (*ClientProfile, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&ClientProfile{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetByID(ctx, id)
}

// List returns all profiles, newest first.
func (r *Repo) List(ctx context.Context) ([]ClientProfile, error) {
	var out []ClientProfile
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}

// DeleteByClient removes the profile row inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("id = ?", clientID).Delete(&ClientProfile{}).Error
}
