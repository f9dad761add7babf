package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/services"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
)

type WebhookHandler struct {
	service *services.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(db *gorm.DB, dispatcher *delivery.Dispatcher, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: services.NewWebhookService(db, dispatcher), log: log}
}

// Receive takes Twilio's form-encoded inbound callback. It always answers
// 200 for messages to unknown numbers; a non-2xx would make the provider
// retry a message nobody can receive.
func (h *WebhookHandler) Receive(c *gin.Context) {
	from := c.PostForm("From")
	to := c.PostForm("To")
	body := c.PostForm("Body")

	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "From and To are required"})
		return
	}

	msg, err := h.service.HandleInbound(c.Request.Context(), to, from, body)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			h.log.Warn("inbound message for unknown business", zap.String("to", to))
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		httpError(c, err)
		return
	}

	h.log.Info("inbound message recorded",
		zap.String("message_id", msg.ID.String()),
		zap.String("business_id", msg.BusinessID.String()),
	)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
