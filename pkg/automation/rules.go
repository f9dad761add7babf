package automation

import (
	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

const (
	defaultReminder24hTemplate = "Hi {{.CustomerName}}, a reminder from {{.BusinessName}}: your {{.Services}} appointment is on {{.Time}}."
	defaultReminder2hTemplate  = "Hi {{.CustomerName}}, your {{.Services}} appointment at {{.BusinessName}} starts at {{.Time}}. See you soon!"
)

// SeedDefaultRules creates the stock reminder rules for a freshly registered
// business. The enabled flags mirror the settings toggles from day one.
func SeedDefaultRules(repo *repositories.AutomationRepository, businessID uuid.UUID, settings models.AppointmentSettings) error {
	rules := []models.AutomationRule{
		{
			BusinessID:      businessID,
			Type:            models.RuleReminder24h,
			OffsetMinutes:   1440,
			MessageTemplate: defaultReminder24hTemplate,
			Enabled:         settings.Reminder24h,
		},
		{
			BusinessID:      businessID,
			Type:            models.RuleReminder2h,
			OffsetMinutes:   120,
			MessageTemplate: defaultReminder2hTemplate,
			Enabled:         settings.Reminder2h,
		},
	}
	for i := range rules {
		if err := repo.CreateRule(&rules[i]); err != nil {
			return err
		}
	}
	return nil
}

// SyncRuleEnabled realigns the reminder rules' enabled flags with the
// settings toggles. Called after every settings update so the toggle and its
// rule can never disagree.
func SyncRuleEnabled(repo *repositories.AutomationRepository, businessID uuid.UUID, settings models.AppointmentSettings) error {
	if err := repo.SetRuleEnabled(businessID, models.RuleReminder24h, settings.Reminder24h); err != nil {
		return err
	}
	return repo.SetRuleEnabled(businessID, models.RuleReminder2h, settings.Reminder2h)
}
