package repositories

import (
	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) GetByID(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) ListByCustomer(businessID, customerID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.
		Where("business_id = ? AND customer_id = ?", businessID, customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListRetryable returns the oldest failed outbound messages still under the
// retry ceiling, bounded to one batch.
func (r *MessageRepository) ListRetryable(maxRetries, batchSize int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.
		Where("direction = ? AND status = ? AND retry_count < ?",
			models.MessageOut, models.MessageFailed, maxRetries).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) SetStatus(id uuid.UUID, status models.MessageStatus) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *MessageRepository) MarkSent(id uuid.UUID) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.MessageSent,
			"error_text": "",
		}).Error
}

func (r *MessageRepository) MarkFailed(id uuid.UUID, errText string) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.MessageFailed,
			"error_text": errText,
		}).Error
}

// MarkRetryFailed restores a message to failed and consumes one retry.
// RetryCount counts retries, not attempts, so the original dispatch failure
// never touches it.
func (r *MessageRepository) MarkRetryFailed(id uuid.UUID, errText string) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.MessageFailed,
			"error_text":  errText,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}
