package repositories

import (
	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(business *models.Business) error {
	return r.db.Create(business).Error
}

func (r *BusinessRepository) GetByID(id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) GetByAPIKey(apiKey string) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, "api_key = ?", apiKey).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) GetByPhone(phone string) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) List() ([]models.Business, error) {
	var businesses []models.Business
	if err := r.db.Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *BusinessRepository) UpdateSettings(id uuid.UUID, settings models.AppointmentSettings) error {
	return r.db.Model(&models.Business{}).
		Where("id = ?", id).
		Update("settings", settings).Error
}
