package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is the single stored copy of one document type for one client.
type Document struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientID     string    `gorm:"type:varchar(36);not null;uniqueIndex:uniq_client_doc_type,priority:1" json:"clientId"`
	DocumentType string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_client_doc_type,priority:2" json:"type"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content,omitempty"`
	WordCount    int       `gorm:"not null;default:0" json:"wordCount"`
	GeneratedAt  time.Time `gorm:"not null" json:"generatedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Document) TableName() string { return "generated_documents" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
