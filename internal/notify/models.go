package notify

import (
	"time"

	"github.com/suPer8Hu/client-portal/internal/common"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeliveryStatus string

const (
	DeliveryQueued    DeliveryStatus = "queued"
	DeliveryRunning   DeliveryStatus = "running"
	DeliverySucceeded DeliveryStatus = "succeeded"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Delivery is the outbox row for one notification.
type Delivery struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	ClientID    string  `gorm:"size:36;index" json:"clientId"`
	Channel     Channel `gorm:"type:varchar(16);not null" json:"channel"`
	Kind        string  `gorm:"type:varchar(64);not null" json:"kind"`
	Destination string  `gorm:"type:varchar(2048);not null" json:"destination"`
	Subject     string  `gorm:"type:varchar(512)" json:"subject"`
	Body        string  `gorm:"type:text" json:"-"`

	Payload datatypes.JSON `json:"-"`

	Status   DeliveryStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	Attempts int            `gorm:"not null;default:0" json:"attempts"`

	// Filled when an attempt failed
	LastError *string `gorm:"type:text" json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Delivery) TableName() string { return "notification_deliveries" }

func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID != "" {
		return nil
	}
	id, err := common.NewULID()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (d *Delivery) message() Message {
	return Message{
		Channel:     d.Channel,
		Destination: d.Destination,
		Subject:     d.Subject,
		Body:        d.Body,
		Payload:     []byte(d.Payload),
	}
}

// WebhookLog records one outbound webhook attempt.
type WebhookLog struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID     string         `gorm:"size:36;index" json:"clientId"`
	DeliveryID   string         `gorm:"size:26;index" json:"deliveryId"`
	Direction    string         `gorm:"type:varchar(16);not null;default:outbound" json:"direction"`
	WebhookType  string         `gorm:"type:varchar(64);not null" json:"webhookType"`
	Payload      datatypes.JSON `json:"payload"`
	Status       string         `gorm:"type:varchar(16);not null" json:"status"`
	ResponseCode *int           `json:"responseCode"`
	ErrorMessage *string        `gorm:"type:text" json:"errorMessage"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (WebhookLog) TableName() string { return "webhook_logs" }
