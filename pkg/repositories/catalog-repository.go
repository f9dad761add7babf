package repositories

import (
	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

// CatalogRepository covers the bookable catalog: services and combos.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateService(service *models.Service) error {
	return r.db.Create(service).Error
}

func (r *CatalogRepository) GetService(businessID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.First(&service, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// GetServices loads the given service IDs for a business. Missing IDs simply
// do not appear in the result; the caller decides whether that is an error.
func (r *CatalogRepository) GetServices(businessID uuid.UUID, ids []uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.Where("business_id = ? AND id IN ?", businessID, ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *CatalogRepository) ListActiveServices(businessID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.Where("business_id = ? AND active = ?", businessID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *CatalogRepository) UpdateService(service *models.Service) error {
	return r.db.Save(service).Error
}

func (r *CatalogRepository) DeactivateService(businessID, id uuid.UUID) error {
	return r.db.Model(&models.Service{}).
		Where("id = ? AND business_id = ?", id, businessID).
		Update("active", false).Error
}

func (r *CatalogRepository) CreateCombo(combo *models.Combo) error {
	return r.db.Create(combo).Error
}

func (r *CatalogRepository) GetCombo(businessID, id uuid.UUID) (*models.Combo, error) {
	var combo models.Combo
	if err := r.db.Preload("Services", func(db *gorm.DB) *gorm.DB {
		return db.Order("combo_services.position ASC")
	}).First(&combo, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		return nil, err
	}
	return &combo, nil
}

func (r *CatalogRepository) ListCombos(businessID uuid.UUID) ([]models.Combo, error) {
	var combos []models.Combo
	if err := r.db.Preload("Services").
		Where("business_id = ? AND active = ?", businessID, true).
		Find(&combos).Error; err != nil {
		return nil, err
	}
	return combos, nil
}

func (r *CatalogRepository) DeactivateCombo(businessID, id uuid.UUID) error {
	return r.db.Model(&models.Combo{}).
		Where("id = ? AND business_id = ?", id, businessID).
		Update("active", false).Error
}
