package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
	"go.uber.org/zap"
)

// Dispatcher is the single outbound path. Every message leaves a Message row
// behind regardless of delivery outcome, so the retry coordinator and the
// conversation history both see it.
type Dispatcher struct {
	messages *repositories.MessageRepository
	sender   whatsapp.Sender
	log      *zap.Logger
}

func NewDispatcher(messages *repositories.MessageRepository, sender whatsapp.Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		messages: messages,
		sender:   sender,
		log:      log,
	}
}

// Send persists an outbound row and hands it to the configured sender.
// A nil error means the provider accepted the message; the row is marked
// sent. On failure the row stays behind as failed with the provider error,
// eligible for retry.
func (d *Dispatcher) Send(ctx context.Context, businessID, customerID uuid.UUID, to, body, kind string) (*models.Message, error) {
	msg := &models.Message{
		BusinessID: businessID,
		CustomerID: customerID,
		Direction:  models.MessageOut,
		Body:       body,
		Status:     models.MessagePending,
		Kind:       kind,
	}
	if err := d.messages.Create(msg); err != nil {
		return nil, err
	}

	err := d.sender.Send(ctx, whatsapp.NewMessage(to, body, whatsapp.WithMessageID(msg.ID.String())))
	if err != nil {
		d.log.Warn("outbound message failed",
			zap.String("message_id", msg.ID.String()),
			zap.String("business_id", businessID.String()),
			zap.Error(err),
		)
		if dbErr := d.messages.MarkFailed(msg.ID, err.Error()); dbErr != nil {
			d.log.Error("failed to record message failure", zap.String("message_id", msg.ID.String()), zap.Error(dbErr))
		}
		metrics.MessagesDispatchedTotal.WithLabelValues(kind, "failed").Inc()
		msg.Status = models.MessageFailed
		msg.ErrorText = err.Error()
		return msg, err
	}

	if dbErr := d.messages.MarkSent(msg.ID); dbErr != nil {
		d.log.Error("failed to record message success", zap.String("message_id", msg.ID.String()), zap.Error(dbErr))
	}
	metrics.MessagesDispatchedTotal.WithLabelValues(kind, "sent").Inc()
	msg.Status = models.MessageSent
	return msg, nil
}

// RecordInbound stores a message received on the webhook. Inbound rows never
// enter the retry path.
func (d *Dispatcher) RecordInbound(businessID, customerID uuid.UUID, body string) (*models.Message, error) {
	msg := &models.Message{
		BusinessID: businessID,
		CustomerID: customerID,
		Direction:  models.MessageIn,
		Body:       body,
		Status:     models.MessageSent,
		Kind:       models.MessageKindChat,
	}
	if err := d.messages.Create(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
