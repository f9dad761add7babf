package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/services"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
)

type CustomerHandler struct {
	customers *services.CustomerService
	messages  *services.MessageService
}

func NewCustomerHandler(db *gorm.DB, dispatcher *delivery.Dispatcher) *CustomerHandler {
	return &CustomerHandler{
		customers: services.NewCustomerService(db),
		messages:  services.NewMessageService(db, dispatcher),
	}
}

func (h *CustomerHandler) List(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	customers, err := h.customers.List(business.ID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	customer, messages, err := h.customers.GetWithMessages(business.ID, id, limitQuery(c, 50))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer": customer,
		"messages": messages,
	})
}

func (h *CustomerHandler) ListMessages(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	messages, err := h.messages.ListForCustomer(business.ID, id, limitQuery(c, 50))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *CustomerHandler) SendMessage(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), business.ID, id, req.Body)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
