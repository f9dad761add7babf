package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageDirection string

const (
	MessageIn  MessageDirection = "in"
	MessageOut MessageDirection = "out"
)

type MessageStatus string

const (
	MessagePending  MessageStatus = "pending"
	MessageSent     MessageStatus = "sent"
	MessageFailed   MessageStatus = "failed"
	MessageRetrying MessageStatus = "retrying"
)

const (
	MessageKindChat   = "chat"
	MessageKindSystem = "system"
)

// Message is one WhatsApp message in either direction. Outbound rows carry
// delivery state; failed ones are picked up by the retry coordinator until
// RetryCount reaches the ceiling.
type Message struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID        `gorm:"type:uuid;not null;index" json:"business_id"`
	CustomerID uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Direction  MessageDirection `gorm:"size:10;not null" json:"direction"`
	Body       string           `gorm:"type:text;not null" json:"body"`
	Status     MessageStatus    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Kind       string           `gorm:"size:20;not null;default:'chat'" json:"kind"`
	RetryCount int              `gorm:"default:0" json:"retry_count"`
	ErrorText  string           `gorm:"type:text" json:"error_text,omitempty"`
	CreatedAt  time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
