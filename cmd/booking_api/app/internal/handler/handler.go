package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/scheduling"
)

// httpError maps the domain sentinels onto HTTP statuses. Anything the
// switch does not recognize is a 500.
func httpError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrInvalidPayload),
		errors.Is(err, booking.ErrInvalidStatus),
		errors.Is(err, scheduling.ErrInvalidTimestamp),
		errors.Is(err, scheduling.ErrInvalidTimeZone),
		errors.Is(err, scheduling.ErrPastTime):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, booking.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrSlotFull):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func currentBusiness(c *gin.Context) (*models.Business, bool) {
	business, ok := middlewares.BusinessFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing business context"})
		return nil, false
	}
	return business, true
}

// limitQuery reads ?limit= with a default; zero or garbage falls back.
func limitQuery(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
