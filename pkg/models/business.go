package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentSettings is the per-business scheduling configuration. It is
// stored as a JSON column so new knobs can be added without a migration.
type AppointmentSettings struct {
	Reminder24h            bool `json:"reminder_24h"`
	Reminder2h             bool `json:"reminder_2h"`
	NoShowGraceMinutes     int  `json:"no_show_grace_minutes"`
	MaxAppointmentsPerSlot int  `json:"max_appointments_per_slot"`
}

// DefaultAppointmentSettings are applied when a business has never saved
// its settings.
func DefaultAppointmentSettings() AppointmentSettings {
	return AppointmentSettings{
		Reminder24h:            true,
		Reminder2h:             false,
		NoShowGraceMinutes:     30,
		MaxAppointmentsPerSlot: 1,
	}
}

// Normalize fills unset numeric fields with their documented defaults.
func (s *AppointmentSettings) Normalize() {
	if s.NoShowGraceMinutes <= 0 {
		s.NoShowGraceMinutes = 30
	}
	if s.MaxAppointmentsPerSlot <= 0 {
		s.MaxAppointmentsPerSlot = 1
	}
}

type Business struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string              `gorm:"size:100;not null" json:"name"`
	Phone     string              `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	TimeZone  string              `gorm:"size:64;not null" json:"timezone"`
	APIKey    string              `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Settings  AppointmentSettings `gorm:"serializer:json" json:"settings"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`

	Customers []Customer `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE" json:"-"`
	Services  []Service  `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE" json:"-"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
