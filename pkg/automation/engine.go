// Package automation fires reminder rules ahead of appointment starts. The
// scan window is exactly as wide as the scan period, so each appointment
// matches a rule in exactly one scan; the AutomationLog row is what makes
// re-matching within that window idempotent.
package automation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/scheduling"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/templates"
)

// scanWindow must equal the scheduler cadence for the automation job. Wider
// would double-fire across scans, narrower would skip appointments.
const scanWindow = time.Minute

type Engine struct {
	businesses   *repositories.BusinessRepository
	appointments *repositories.AppointmentRepository
	automation   *repositories.AutomationRepository
	dispatcher   *delivery.Dispatcher
	log          *zap.Logger
}

func NewEngine(db *gorm.DB, dispatcher *delivery.Dispatcher, log *zap.Logger) *Engine {
	return &Engine{
		businesses:   repositories.NewBusinessRepository(db),
		appointments: repositories.NewAppointmentRepository(db),
		automation:   repositories.NewAutomationRepository(db),
		dispatcher:   dispatcher,
		log:          log,
	}
}

// Scan walks every business and enabled rule once. A failure in one rule or
// one appointment is logged and skipped; it never aborts the pass.
func (e *Engine) Scan(ctx context.Context, now time.Time) error {
	businesses, err := e.businesses.List()
	if err != nil {
		return err
	}

	for i := range businesses {
		business := &businesses[i]
		rules, err := e.automation.ListEnabledRules(business.ID)
		if err != nil {
			e.log.Error("could not load automation rules",
				zap.String("business_id", business.ID.String()), zap.Error(err))
			continue
		}
		for _, rule := range rules {
			e.scanRule(ctx, business, rule, now)
		}
	}
	return nil
}

func (e *Engine) scanRule(ctx context.Context, business *models.Business, rule models.AutomationRule, now time.Time) {
	target := now.Add(time.Duration(rule.OffsetMinutes) * time.Minute)
	from := target.Add(-scanWindow)

	appts, err := e.appointments.ListScheduledInWindow(business.ID, from, target)
	if err != nil {
		e.log.Error("automation window query failed",
			zap.String("business_id", business.ID.String()),
			zap.String("rule", rule.Type), zap.Error(err))
		return
	}

	for _, appt := range appts {
		if err := e.fire(ctx, business, rule, appt); err != nil {
			e.log.Warn("reminder not sent",
				zap.String("appointment_id", appt.ID.String()),
				zap.String("rule", rule.Type), zap.Error(err))
		}
	}
}

// fire sends one reminder. The log row is written only after the gateway
// accepted the message; a failed dispatch leaves no log, so the reminder is
// retried on the next scan while the appointment is still inside the window.
func (e *Engine) fire(ctx context.Context, business *models.Business, rule models.AutomationRule, appt models.Appointment) error {
	exists, err := e.automation.LogExists(appt.ID, rule.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if appt.Customer == nil {
		return fmt.Errorf("appointment %s has no customer", appt.ID)
	}

	local, err := scheduling.FormatLocal(appt.StartsAt, business.TimeZone)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(appt.Services))
	for _, item := range appt.Services {
		names = append(names, item.Name)
	}
	name := appt.Customer.Name
	if name == "" {
		name = "there"
	}

	body, err := templates.Render(rule.MessageTemplate, templates.NewReminderData(name, business.Name, names, local))
	if err != nil {
		return err
	}

	if _, err := e.dispatcher.Send(ctx, business.ID, appt.CustomerID, appt.Customer.Phone, body, models.MessageKindSystem); err != nil {
		return err
	}

	metrics.RemindersSentTotal.WithLabelValues(rule.Type).Inc()
	return e.automation.CreateLog(&models.AutomationLog{AppointmentID: appt.ID, RuleID: rule.ID})
}
