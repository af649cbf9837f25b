package documents

import (
	"context"
	"errors"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Get(ctx context.Context, clientID string, t Type) (*Document, error) {
	var d Document
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND document_type = ?", clientID, string(t)).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, err
	}
	return &d, nil
}

// Upsert writes d in one statement keyed on (client_id, document_type). An
// existing row keeps its id and generated_at; title, content, word_count and
// updated_at are replaced. The stored row is returned.
func (r *Repo) Upsert(ctx context.Context, d *Document) (*Document, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "document_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "word_count", "updated_at"}),
		}).
		Create(d).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, d.ClientID, Type(d.DocumentType))
}

// ListByClient returns document metadata without content, newest first.
func (r *Repo) ListByClient(ctx context.Context, clientID string) ([]Document, error) {
	var out []Document
	err := r.db.WithContext(ctx).
		Select("id", "client_id", "document_type", "title", "word_count", "generated_at", "updated_at").
		Where("client_id = ?", clientID).
		Order("generated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Document{}).Where("client_id = ?", clientID).Count(&n).Error
	return n, err
}

// DeleteByClient removes a client's documents inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("client_id = ?", clientID).Delete(&Document{}).Error
}
