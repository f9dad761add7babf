package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/services"
	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
)

type BusinessHandler struct {
	service *services.BusinessService
	rdb     *redis.Client
}

func NewBusinessHandler(db *gorm.DB, rdb *redis.Client) *BusinessHandler {
	return &BusinessHandler{service: services.NewBusinessService(db), rdb: rdb}
}

// Register is the one unauthenticated endpoint. The response carries the
// API key exactly once; it cannot be read back later.
func (h *BusinessHandler) Register(c *gin.Context) {
	var req struct {
		Name     string                      `json:"name" binding:"required"`
		Phone    string                      `json:"phone" binding:"required"`
		TimeZone string                      `json:"timezone" binding:"required"`
		Settings *models.AppointmentSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	business, err := h.service.Register(req.Name, req.Phone, req.TimeZone, req.Settings)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"business": business,
		"api_key":  business.APIKey,
	})
}

func (h *BusinessHandler) GetProfile(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) UpdateSettings(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}

	var req models.AppointmentSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateSettings(business.ID, req)
	if err != nil {
		httpError(c, err)
		return
	}

	// The auth middleware caches the business by API key; drop the stale
	// copy so the next booking sees the new capacity settings.
	h.rdb.Del(c.Request.Context(), middlewares.BusinessCacheKey(c.GetHeader("X-API-Key")))

	c.JSON(http.StatusOK, updated)
}
