package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
)

type AppointmentHandler struct {
	service *booking.Service
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewAppointmentHandler(service *booking.Service, log *zap.Logger, tracer trace.Tracer) *AppointmentHandler {
	return &AppointmentHandler{service: service, log: log, tracer: tracer}
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}

	var req struct {
		CustomerPhone string   `json:"customer_phone" binding:"required"`
		CustomerName  string   `json:"customer_name"`
		ServiceIDs    []string `json:"service_ids"`
		ComboID       *string  `json:"combo_id"`
		StartsAt      string   `json:"starts_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := booking.BookingInput{
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		StartsAt:      req.StartsAt,
	}
	for _, raw := range req.ServiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
			return
		}
		in.ServiceIDs = append(in.ServiceIDs, id)
	}
	if req.ComboID != nil {
		id, err := uuid.Parse(*req.ComboID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid combo ID"})
			return
		}
		in.ComboID = &id
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "book-appointment")
	defer span.End()

	appt, err := h.service.Book(ctx, business, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		httpError(c, err)
		return
	}

	h.log.Info("appointment booked",
		zap.String("business_id", business.ID.String()),
		zap.String("appointment_id", appt.ID.String()),
		zap.Time("starts_at", appt.StartsAt),
	)
	c.JSON(http.StatusCreated, appt)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment ID"})
		return
	}

	var req struct {
		StartsAt string `json:"starts_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "reschedule-appointment")
	defer span.End()

	appt, err := h.service.Reschedule(ctx, business, id, booking.RescheduleInput{StartsAt: req.StartsAt})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reschedule failed")
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.service.UpdateStatus(business.ID, id, req.Status)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment ID"})
		return
	}

	appt, err := h.service.Cancel(business.ID, id)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment ID"})
		return
	}

	appt, err := h.service.Get(business.ID, id)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) ListUpcoming(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	appts, err := h.service.ListUpcoming(business.ID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (h *AppointmentHandler) History(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}
	appts, err := h.service.History(business.ID, limitQuery(c, 50))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

// Availability projects the day's slot grid for a given duration. Slot keys
// are minutes since midnight UTC.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	business, ok := currentBusiness(c)
	if !ok {
		return
	}

	date := c.Query("date")
	duration, err := strconv.Atoi(c.Query("duration"))
	if date == "" || err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and duration query params are required"})
		return
	}

	slots, err := h.service.Availability(business, date, duration)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":             date,
		"duration_minutes": duration,
		"slots":            slots,
	})
}
