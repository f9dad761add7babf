package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

type AutomationRepository struct {
	db *gorm.DB
}

func NewAutomationRepository(db *gorm.DB) *AutomationRepository {
	return &AutomationRepository{db: db}
}

func (r *AutomationRepository) CreateRule(rule *models.AutomationRule) error {
	return r.db.Create(rule).Error
}

func (r *AutomationRepository) GetRule(businessID, id uuid.UUID) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	if err := r.db.First(&rule, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *AutomationRepository) ListRules(businessID uuid.UUID) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	if err := r.db.Where("business_id = ?", businessID).
		Order("offset_minutes DESC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepository) ListEnabledRules(businessID uuid.UUID) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	if err := r.db.Where("business_id = ? AND enabled = ?", businessID, true).
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepository) UpdateRule(rule *models.AutomationRule) error {
	if rule.ID == uuid.Nil {
		return errors.New("invalid rule ID")
	}
	return r.db.Save(rule).Error
}

// SetRuleEnabled flips the enabled flag of a rule type. Settings updates use
// this to keep the reminder toggles and their rules consistent.
func (r *AutomationRepository) SetRuleEnabled(businessID uuid.UUID, ruleType string, enabled bool) error {
	return r.db.Model(&models.AutomationRule{}).
		Where("business_id = ? AND type = ?", businessID, ruleType).
		Update("enabled", enabled).Error
}

// LogExists reports whether the (appointment, rule) pair already fired.
func (r *AutomationRepository) LogExists(appointmentID, ruleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.AutomationLog{}).
		Where("appointment_id = ? AND rule_id = ?", appointmentID, ruleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AutomationRepository) CreateLog(log *models.AutomationLog) error {
	return r.db.Create(log).Error
}

// DeleteLogsForAppointment clears the idempotency records so reminders can
// fire again after a reschedule.
func (r *AutomationRepository) DeleteLogsForAppointment(appointmentID uuid.UUID) error {
	return r.db.Delete(&models.AutomationLog{}, "appointment_id = ?", appointmentID).Error
}
