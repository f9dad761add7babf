package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

type MessageService struct {
	customers  *repositories.CustomerRepository
	messages   *repositories.MessageRepository
	dispatcher *delivery.Dispatcher
}

func NewMessageService(db *gorm.DB, dispatcher *delivery.Dispatcher) *MessageService {
	return &MessageService{
		customers:  repositories.NewCustomerRepository(db),
		messages:   repositories.NewMessageRepository(db),
		dispatcher: dispatcher,
	}
}

func (s *MessageService) ListForCustomer(businessID, customerID uuid.UUID, limit int) ([]models.Message, error) {
	if _, err := s.customers.GetByID(businessID, customerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return s.messages.ListByCustomer(businessID, customerID, limit)
}

// Send dispatches a free-form chat message. A gateway failure still returns
// the persisted row: it sits in failed state and the retry coordinator picks
// it up, so the caller reads the outcome off the row status.
func (s *MessageService) Send(ctx context.Context, businessID, customerID uuid.UUID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is required", booking.ErrInvalidPayload)
	}

	customer, err := s.customers.GetByID(businessID, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}

	msg, err := s.dispatcher.Send(ctx, businessID, customerID, customer.Phone, body, models.MessageKindChat)
	if msg == nil && err != nil {
		return nil, err
	}
	return msg, nil
}
