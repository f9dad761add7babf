package delivery

import (
	"context"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
	"go.uber.org/zap"
)

const (
	// MaxRetries is the per-message retry ceiling. A message that fails its
	// third retry stays failed for good.
	MaxRetries = 3
	// BatchSize bounds how many messages one run picks up.
	BatchSize = 10
)

// RetryCoordinator re-drives failed outbound messages, oldest first.
type RetryCoordinator struct {
	messages  *repositories.MessageRepository
	customers *repositories.CustomerRepository
	sender    whatsapp.Sender
	log       *zap.Logger
}

func NewRetryCoordinator(
	messages *repositories.MessageRepository,
	customers *repositories.CustomerRepository,
	sender whatsapp.Sender,
	log *zap.Logger,
) *RetryCoordinator {
	return &RetryCoordinator{
		messages:  messages,
		customers: customers,
		sender:    sender,
		log:       log,
	}
}

// Run processes one batch. Failures inside the batch are isolated: one
// message failing its retry never blocks the rest.
func (c *RetryCoordinator) Run(ctx context.Context) error {
	batch, err := c.messages.ListRetryable(MaxRetries, BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range batch {
		if err := c.retry(ctx, msg); err != nil {
			c.log.Warn("message retry failed",
				zap.String("message_id", msg.ID.String()),
				zap.Int("retry_count", msg.RetryCount),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (c *RetryCoordinator) retry(ctx context.Context, msg models.Message) error {
	customer, err := c.customers.GetByID(msg.BusinessID, msg.CustomerID)
	if err != nil {
		return err
	}

	if err := c.messages.SetStatus(msg.ID, models.MessageRetrying); err != nil {
		return err
	}
	metrics.MessageRetriesTotal.Inc()

	err = c.sender.Send(ctx, whatsapp.NewMessage(customer.Phone, msg.Body, whatsapp.WithMessageID(msg.ID.String())))
	if err != nil {
		if dbErr := c.messages.MarkRetryFailed(msg.ID, err.Error()); dbErr != nil {
			return dbErr
		}
		return err
	}
	return c.messages.MarkSent(msg.ID)
}
