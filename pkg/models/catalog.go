package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a bookable offering with a fixed duration. Services are never
// hard-deleted once an appointment references them; they are deactivated.
type Service struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID      uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Price           float64   `gorm:"type:decimal(10,2);default:0" json:"price"`
	Active          bool      `gorm:"default:true" json:"active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Combo bundles several services booked as one appointment.
type Combo struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Active     bool      `gorm:"default:true" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Services []ComboService `gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE" json:"services"`
}

func (c *Combo) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ComboService keeps the combo's services ordered by Position.
type ComboService struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ComboID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	Position  int       `gorm:"not null" json:"position"`
}

func (cs *ComboService) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}
