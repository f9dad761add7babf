package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is created lazily the first time a phone number books or messages
// the business. Uniqueness is per (business, phone).
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_business_phone" json:"business_id"`
	Phone      string    `gorm:"size:20;not null;uniqueIndex:idx_business_phone" json:"phone"`
	Name       string    `gorm:"size:100" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
