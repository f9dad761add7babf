package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

type CustomerService struct {
	customers *repositories.CustomerRepository
	messages  *repositories.MessageRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{
		customers: repositories.NewCustomerRepository(db),
		messages:  repositories.NewMessageRepository(db),
	}
}

func (s *CustomerService) List(businessID uuid.UUID) ([]models.Customer, error) {
	return s.customers.List(businessID)
}

func (s *CustomerService) GetWithMessages(businessID, id uuid.UUID, limit int) (*models.Customer, []models.Message, error) {
	customer, err := s.customers.GetByID(businessID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, booking.ErrNotFound
		}
		return nil, nil, err
	}
	messages, err := s.messages.ListByCustomer(businessID, id, limit)
	if err != nil {
		return nil, nil, err
	}
	return customer, messages, nil
}
