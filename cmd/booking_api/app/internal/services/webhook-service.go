package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
)

// autoReplyText is the fixed acknowledgement for every inbound message.
// Conversational booking over chat is handled by staff, not parsed here.
const autoReplyText = "Thanks for your message! We'll get back to you shortly. " +
	"To book or change an appointment, just tell us the service and your preferred time."

type WebhookService struct {
	businesses *repositories.BusinessRepository
	customers  *repositories.CustomerRepository
	dispatcher *delivery.Dispatcher
}

func NewWebhookService(db *gorm.DB, dispatcher *delivery.Dispatcher) *WebhookService {
	return &WebhookService{
		businesses: repositories.NewBusinessRepository(db),
		customers:  repositories.NewCustomerRepository(db),
		dispatcher: dispatcher,
	}
}

// HandleInbound resolves the business by its WhatsApp number, records the
// inbound message under a lazily created customer and queues the auto-reply.
// A failed auto-reply is left to the retry coordinator.
func (s *WebhookService) HandleInbound(ctx context.Context, to, from, body string) (*models.Message, error) {
	toPhone, err := whatsapp.NormalizePhone(to)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid destination number", booking.ErrInvalidPayload)
	}
	fromPhone, err := whatsapp.NormalizePhone(from)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sender number", booking.ErrInvalidPayload)
	}

	business, err := s.businesses.GetByPhone(toPhone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}

	customer, err := s.customers.GetOrCreate(business.ID, fromPhone, "")
	if err != nil {
		return nil, err
	}

	inbound, err := s.dispatcher.RecordInbound(business.ID, customer.ID, body)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Send(ctx, business.ID, customer.ID, customer.Phone, autoReplyText, models.MessageKindSystem)

	return inbound, nil
}
