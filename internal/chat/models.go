package chat

import (
	"time"

	"github.com/suPer8Hu/client-portal/internal/common"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one line of a client's conversation with the assistant. ids are
// monotonic ULIDs, so ordering by id is ordering by creation.
type Message struct {
	ID        string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	ClientID  string    `gorm:"type:varchar(36);not null;index:idx_chat_client_id,priority:1" json:"clientId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Flagged   bool      `gorm:"not null;default:false" json:"flagged"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Message) TableName() string { return "chat_messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID != "" {
		return nil
	}
	id, err := common.NewULID()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// ClientStats summarises one client's conversation for the admin overview.
type ClientStats struct {
	ClientID          string     `json:"clientId"`
	TotalMessages     int64      `json:"totalMessages"`
	UserMessages      int64      `json:"userMessages"`
	AssistantMessages int64      `json:"assistantMessages"`
	FlaggedMessages   int64      `json:"flaggedMessages"`
	LastMessageAt     *time.Time `json:"lastMessageAt"`
}
