package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentNoShow    AppointmentStatus = "no_show"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ValidAppointmentStatus reports whether s is one of the explicit statuses a
// caller may set. "scheduled" is excluded: it is only assigned by booking and
// rescheduling, never by a status update.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentCompleted, AppointmentNoShow, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment stores its start both as a UTC instant and as SlotMinutes, the
// minutes since midnight UTC, which the capacity grid is keyed on.
// DurationMinutes is the sum of the line-item durations captured at booking
// time; later edits to a service's duration do not touch existing rows.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"business_id"`
	CustomerID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	StartsAt        time.Time         `gorm:"not null;index" json:"starts_at"`
	SlotMinutes     int               `gorm:"not null" json:"slot_minutes"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	Status          AppointmentStatus `gorm:"size:32;not null;default:'scheduled';index" json:"status"`
	ComboID         *uuid.UUID        `gorm:"type:uuid" json:"combo_id,omitempty"`
	ArchivedAt      *time.Time        `json:"archived_at,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Customer            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Services []AppointmentService `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"services,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// EndsAt is the exclusive end of the appointment.
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentService is a duration snapshot of one booked service line item,
// not a live reference to the Service row.
type AppointmentService struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	AppointmentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ServiceID       uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
}

func (as *AppointmentService) BeforeCreate(tx *gorm.DB) error {
	if as.ID == uuid.Nil {
		as.ID = uuid.New()
	}
	return nil
}
