package chat

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListRecentMessagesDesc returns the most recent messages in DESC id order (newest -> oldest).
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, clientID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListMessages returns the whole conversation oldest first.
func (r *Repo) ListMessages(ctx context.Context, clientID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) GetMessage(ctx context.Context, id string) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Message not found")
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) SetFlagged(ctx context.Context, id string, flagged bool) (*Message, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).Where("id = ?", id).Update("flagged", flagged)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetMessage(ctx, id)
}

type statsRow struct {
	ClientID  string
	Total     int64
	Users     int64
	Assistant int64
	Flagged   int64
	LastID    string
}

// Stats aggregates per-client counts, most recently active first. Clients
// without messages are absent.
func (r *Repo) Stats(ctx context.Context) ([]ClientStats, error) {
	var rows []statsRow
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select(`client_id,
			COUNT(*) AS total,
			SUM(CASE WHEN role = ? THEN 1 ELSE 0 END) AS users,
			SUM(CASE WHEN role = ? THEN 1 ELSE 0 END) AS assistant,
			SUM(CASE WHEN flagged = ? THEN 1 ELSE 0 END) AS flagged,
			MAX(id) AS last_id`, RoleUser, RoleAssistant, true).
		Group("client_id").
		Order("last_id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ClientStats, 0, len(rows))
	for _, row := range rows {
		s := ClientStats{
			ClientID:          row.ClientID,
			TotalMessages:     row.Total,
			UserMessages:      row.Users,
			AssistantMessages: row.Assistant,
			FlaggedMessages:   row.Flagged,
		}
		if id, err := ulid.ParseStrict(row.LastID); err == nil {
			at := ulid.Time(id.Time()).UTC()
			s.LastMessageAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}

// DeleteByClient removes a client's conversation inside tx.
func DeleteByClient(tx *gorm.DB, clientID string) error {
	return tx.Where("client_id = ?", clientID).Delete(&Message{}).Error
}

