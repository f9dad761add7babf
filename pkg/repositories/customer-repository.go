package repositories

import (
	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetOrCreate resolves a customer by (business, phone), creating the row on
// first contact. An existing customer's name is never overwritten; it is only
// backfilled when the stored name is empty.
func (r *CustomerRepository) GetOrCreate(businessID uuid.UUID, phone, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.
		Where(models.Customer{BusinessID: businessID, Phone: phone}).
		Attrs(models.Customer{Name: name}).
		FirstOrCreate(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.Name == "" && name != "" {
		customer.Name = name
		if err := r.db.Model(&customer).Update("name", name).Error; err != nil {
			return nil, err
		}
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByID(businessID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByPhone(businessID uuid.UUID, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "business_id = ? AND phone = ?", businessID, phone).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) List(businessID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
