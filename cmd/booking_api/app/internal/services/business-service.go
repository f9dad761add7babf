package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/automation"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/scheduling"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
)

type BusinessService struct {
	db   *gorm.DB
	repo *repositories.BusinessRepository
}

func NewBusinessService(db *gorm.DB) *BusinessService {
	return &BusinessService{db: db, repo: repositories.NewBusinessRepository(db)}
}

// Register creates a business together with its default automation rules.
// The generated API key is returned on the model exactly once; it is never
// serialized afterwards.
func (s *BusinessService) Register(name, phone, tzName string, settings *models.AppointmentSettings) (*models.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", booking.ErrInvalidPayload)
	}

	normalized, err := whatsapp.NormalizePhone(phone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid business phone", booking.ErrInvalidPayload)
	}

	if tzName == "" {
		return nil, scheduling.ErrInvalidTimeZone
	}
	if _, err := time.LoadLocation(tzName); err != nil {
		return nil, fmt.Errorf("%w: %q", scheduling.ErrInvalidTimeZone, tzName)
	}

	applied := models.DefaultAppointmentSettings()
	if settings != nil {
		applied = *settings
		applied.Normalize()
	}

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, err
	}

	business := &models.Business{
		Name:     name,
		Phone:    normalized,
		TimeZone: tzName,
		APIKey:   apiKey,
		Settings: applied,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewBusinessRepository(tx).Create(business); err != nil {
			return err
		}
		return automation.SeedDefaultRules(repositories.NewAutomationRepository(tx), business.ID, applied)
	})
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (s *BusinessService) Get(id uuid.UUID) (*models.Business, error) {
	business, err := s.repo.GetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return business, nil
}

// UpdateSettings persists the settings and syncs the reminder rules' enabled
// flags in the same transaction, so a toggle can never half-apply.
func (s *BusinessService) UpdateSettings(id uuid.UUID, settings models.AppointmentSettings) (*models.Business, error) {
	settings.Normalize()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewBusinessRepository(tx)
		if _, err := repo.GetByID(id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return booking.ErrNotFound
			}
			return err
		}
		if err := repo.UpdateSettings(id, settings); err != nil {
			return err
		}
		return automation.SyncRuleEnabled(repositories.NewAutomationRepository(tx), id, settings)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
