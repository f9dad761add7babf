package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/services"
)

type CatalogHandler struct {
	service *services.CatalogService
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{service: services.NewCatalogService(db)}
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}

	var req struct {
		Name            string  `json:"name" binding:"required"`
		DurationMinutes int     `json:"duration_minutes" binding:"required"`
		Price           float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.service.CreateService(business.ID, req.Name, req.DurationMinutes, req.Price)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	list, err := h.service.ListServices(business.ID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		DurationMinutes *int     `json:"duration_minutes"`
		Price           *float64 `json:"price"`
		Active          *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service, err := h.service.UpdateService(business.ID, id, services.ServiceUpdate{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          req.Active,
	})
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *CatalogHandler) DeactivateService(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}
	if err := h.service.DeactivateService(business.ID, id); err != nil {
		httpError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateCombo(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}

	var req struct {
		Name       string   `json:"name" binding:"required"`
		ServiceIDs []string `json:"service_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ServiceIDs))
	for _, raw := range req.ServiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
			return
		}
		ids = append(ids, id)
	}

	combo, err := h.service.CreateCombo(business.ID, req.Name, ids)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, combo)
}

func (h *CatalogHandler) ListCombos(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	combos, err := h.service.ListCombos(business.ID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, combos)
}

func (h *CatalogHandler) DeactivateCombo(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid combo ID"})
		return
	}
	if err := h.service.DeactivateCombo(business.ID, id); err != nil {
		httpError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
