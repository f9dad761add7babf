package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RuleReminder24h = "reminder_24h"
	RuleReminder2h  = "reminder_2h"
)

// AutomationRule fires OffsetMinutes before an appointment's start. The
// message template is text/template source rendered against the reminder
// placeholder data (customer, business, services, local time).
type AutomationRule struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID      uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Type            string    `gorm:"size:50;not null;index" json:"type"`
	OffsetMinutes   int       `gorm:"not null" json:"offset_minutes"`
	MessageTemplate string    `gorm:"type:text;not null" json:"message_template"`
	Enabled         bool      `gorm:"default:true" json:"enabled"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *AutomationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AutomationLog marks that a rule already fired for an appointment. The
// composite unique index is the sole idempotency mechanism for reminders;
// the booking engine deletes these rows on reschedule so reminders can fire
// again for the new time.
type AutomationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_appointment_rule" json:"appointment_id"`
	RuleID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_appointment_rule" json:"rule_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *AutomationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
