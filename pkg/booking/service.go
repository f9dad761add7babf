// Package booking is the scheduling core: it owns appointment creation,
// rescheduling and explicit status changes, and is the only writer of
// appointment rows and their service line items.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/scheduling"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
)

const (
	confirmedText      = "Hi %s, your appointment at %s is confirmed for %s."
	rescheduledText    = "Hi %s, your appointment at %s has been moved to %s."
	defaultHistorySize = 50
)

// BookingInput is one booking attempt. Either ServiceIDs or ComboID selects
// what gets booked; when ComboID is set it wins and the combo's services
// become the line items.
type BookingInput struct {
	CustomerPhone string
	CustomerName  string
	ServiceIDs    []uuid.UUID
	ComboID       *uuid.UUID
	StartsAt      string
}

type RescheduleInput struct {
	StartsAt string
}

type Service struct {
	db           *gorm.DB
	appointments *repositories.AppointmentRepository
	customers    *repositories.CustomerRepository
	catalog      *repositories.CatalogRepository
	automation   *repositories.AutomationRepository
	dispatcher   *delivery.Dispatcher
	locks        *KeyedMutex
	log          *zap.Logger
	now          func() time.Time
}

func NewService(db *gorm.DB, dispatcher *delivery.Dispatcher, log *zap.Logger) *Service {
	return &Service{
		db:           db,
		appointments: repositories.NewAppointmentRepository(db),
		customers:    repositories.NewCustomerRepository(db),
		catalog:      repositories.NewCatalogRepository(db),
		automation:   repositories.NewAutomationRepository(db),
		dispatcher:   dispatcher,
		locks:        NewKeyedMutex(),
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Book creates an appointment for the requested local wall-clock time. The
// capacity check and the insert run inside one transaction while the
// (business, UTC day) lock is held, so two concurrent requests cannot both
// squeeze into the last free slot. A failed confirmation message never fails
// the booking.
func (s *Service) Book(ctx context.Context, business *models.Business, in BookingInput) (*models.Appointment, error) {
	phone, err := whatsapp.NormalizePhone(in.CustomerPhone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer phone", ErrInvalidPayload)
	}

	items, total, err := s.resolveServices(business.ID, in)
	if err != nil {
		return nil, err
	}

	startUTC, err := scheduling.ToUTC(in.StartsAt, business.TimeZone)
	if err != nil {
		return nil, err
	}
	if err := scheduling.EnsureFuture(startUTC, s.now()); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetOrCreate(business.ID, phone, in.CustomerName)
	if err != nil {
		return nil, err
	}

	settings := business.Settings
	settings.Normalize()

	slotMinutes := scheduling.MinuteOfDayUTC(startUTC)
	slots := scheduling.SlotRange(slotMinutes, total)
	dayStart, dayEnd := scheduling.DayBoundsUTC(startUTC)

	key := lockKey(business.ID, dayStart)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	appt := &models.Appointment{
		BusinessID:      business.ID,
		CustomerID:      customer.ID,
		StartsAt:        startUTC,
		SlotMinutes:     slotMinutes,
		DurationMinutes: total,
		Status:          models.AppointmentScheduled,
		ComboID:         in.ComboID,
		Services:        items,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewAppointmentRepository(tx)
		sameDay, err := repo.ListSameDayScheduled(business.ID, dayStart, dayEnd, uuid.Nil)
		if err != nil {
			return err
		}
		load := scheduling.BuildLoad(spansOf(sameDay))
		if !scheduling.IsRangeFree(load, slots, settings.MaxAppointmentsPerSlot) {
			return ErrSlotFull
		}
		return repo.Create(appt)
	})
	if err != nil {
		if errors.Is(err, ErrSlotFull) {
			metrics.BookingsTotal.WithLabelValues("book", "slot_full").Inc()
			metrics.SlotConflictsTotal.Inc()
		} else {
			metrics.BookingsTotal.WithLabelValues("book", "error").Inc()
		}
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues("book", "confirmed").Inc()

	appt.Customer = customer
	s.notify(ctx, business, customer, appt, confirmedText)
	return appt, nil
}

// Reschedule moves an existing appointment to a new time, keeping its
// duration snapshot. The appointment's own row is excluded from the load so
// it never blocks itself, previously fired reminder logs are deleted so the
// reminders can fire again for the new time, and the status resets to
// scheduled.
func (s *Service) Reschedule(ctx context.Context, business *models.Business, apptID uuid.UUID, in RescheduleInput) (*models.Appointment, error) {
	appt, err := s.appointments.GetByID(business.ID, apptID)
	if err != nil {
		return nil, notFound(err)
	}

	startUTC, err := scheduling.ToUTC(in.StartsAt, business.TimeZone)
	if err != nil {
		return nil, err
	}
	if err := scheduling.EnsureFuture(startUTC, s.now()); err != nil {
		return nil, err
	}

	settings := business.Settings
	settings.Normalize()

	slotMinutes := scheduling.MinuteOfDayUTC(startUTC)
	slots := scheduling.SlotRange(slotMinutes, appt.DurationMinutes)
	dayStart, dayEnd := scheduling.DayBoundsUTC(startUTC)

	key := lockKey(business.ID, dayStart)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewAppointmentRepository(tx)
		sameDay, err := repo.ListSameDayScheduled(business.ID, dayStart, dayEnd, appt.ID)
		if err != nil {
			return err
		}
		load := scheduling.BuildLoad(spansOf(sameDay))
		if !scheduling.IsRangeFree(load, slots, settings.MaxAppointmentsPerSlot) {
			return ErrSlotFull
		}
		if err := repo.UpdateSchedule(appt.ID, startUTC, slotMinutes); err != nil {
			return err
		}
		return repositories.NewAutomationRepository(tx).DeleteLogsForAppointment(appt.ID)
	})
	if err != nil {
		if errors.Is(err, ErrSlotFull) {
			metrics.BookingsTotal.WithLabelValues("reschedule", "slot_full").Inc()
			metrics.SlotConflictsTotal.Inc()
		} else {
			metrics.BookingsTotal.WithLabelValues("reschedule", "error").Inc()
		}
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues("reschedule", "confirmed").Inc()

	appt.StartsAt = startUTC
	appt.SlotMinutes = slotMinutes
	appt.Status = models.AppointmentScheduled
	s.notify(ctx, business, appt.Customer, appt, rescheduledText)
	return appt, nil
}

// UpdateStatus applies an explicit transition out of scheduled. Targets other
// than completed/no_show/cancelled are rejected, and so is any transition
// from a non-scheduled state.
func (s *Service) UpdateStatus(businessID, apptID uuid.UUID, status string) (*models.Appointment, error) {
	target := models.AppointmentStatus(status)
	if !models.ValidAppointmentStatus(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	appt, err := s.appointments.GetByID(businessID, apptID)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := s.appointments.UpdateStatus(businessID, apptID, target)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: appointment is already %s", ErrInvalidStatus, appt.Status)
	}
	appt.Status = target
	return appt, nil
}

func (s *Service) Cancel(businessID, apptID uuid.UUID) (*models.Appointment, error) {
	return s.UpdateStatus(businessID, apptID, string(models.AppointmentCancelled))
}

func (s *Service) Get(businessID, apptID uuid.UUID) (*models.Appointment, error) {
	appt, err := s.appointments.GetByID(businessID, apptID)
	if err != nil {
		return nil, notFound(err)
	}
	return appt, nil
}

// ListUpcoming returns future scheduled appointments, archived ones excluded.
func (s *Service) ListUpcoming(businessID uuid.UUID) ([]models.Appointment, error) {
	return s.appointments.ListUpcoming(businessID, s.now())
}

// History returns the most recent appointments in any status, archived rows
// included.
func (s *Service) History(businessID uuid.UUID, limit int) ([]models.Appointment, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return s.appointments.ListHistory(businessID, limit)
}

// Availability projects the bookable start minutes of one UTC day for a
// given total duration. Read only; the result is advisory and the booking
// transaction remains the authority.
func (s *Service) Availability(business *models.Business, date string, durationMinutes int) (map[int]bool, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidPayload)
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, scheduling.ErrInvalidTimestamp
	}

	dayStart, dayEnd := scheduling.DayBoundsUTC(day)
	sameDay, err := s.appointments.ListSameDayScheduled(business.ID, dayStart, dayEnd, uuid.Nil)
	if err != nil {
		return nil, err
	}

	settings := business.Settings
	settings.Normalize()
	load := scheduling.BuildLoad(spansOf(sameDay))
	return scheduling.DailyAvailability(load, durationMinutes, settings.MaxAppointmentsPerSlot), nil
}

// resolveServices turns the requested services or combo into duration
// snapshot line items and the total duration.
func (s *Service) resolveServices(businessID uuid.UUID, in BookingInput) ([]models.AppointmentService, int, error) {
	ids := in.ServiceIDs
	if in.ComboID != nil {
		combo, err := s.catalog.GetCombo(businessID, *in.ComboID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: unknown combo", ErrInvalidPayload)
			}
			return nil, 0, err
		}
		if !combo.Active {
			return nil, 0, fmt.Errorf("%w: combo %s is deactivated", ErrInvalidPayload, combo.Name)
		}
		ids = make([]uuid.UUID, 0, len(combo.Services))
		for _, cs := range combo.Services {
			ids = append(ids, cs.ServiceID)
		}
	}
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one service is required", ErrInvalidPayload)
	}

	found, err := s.catalog.GetServices(businessID, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]models.Service, len(found))
	for _, svc := range found {
		byID[svc.ID] = svc
	}

	items := make([]models.AppointmentService, 0, len(ids))
	total := 0
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: unknown service %s", ErrInvalidPayload, id)
		}
		if !svc.Active {
			return nil, 0, fmt.Errorf("%w: service %s is deactivated", ErrInvalidPayload, svc.Name)
		}
		if svc.DurationMinutes <= 0 {
			return nil, 0, fmt.Errorf("%w: service %s has no duration", ErrInvalidPayload, svc.Name)
		}
		items = append(items, models.AppointmentService{
			ServiceID:       svc.ID,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
		})
		total += svc.DurationMinutes
	}
	return items, total, nil
}

func (s *Service) notify(ctx context.Context, business *models.Business, customer *models.Customer, appt *models.Appointment, format string) {
	if customer == nil {
		return
	}
	local, err := scheduling.FormatLocal(appt.StartsAt, business.TimeZone)
	if err != nil {
		s.log.Warn("could not format appointment time",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		return
	}
	name := customer.Name
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf(format, name, business.Name, local)
	if _, err := s.dispatcher.Send(ctx, business.ID, customer.ID, customer.Phone, text, models.MessageKindSystem); err != nil {
		// The failed row stays behind for the retry coordinator.
		s.log.Warn("confirmation message not delivered",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
	}
}

func spansOf(appts []models.Appointment) []scheduling.Span {
	spans := make([]scheduling.Span, 0, len(appts))
	for _, a := range appts {
		spans = append(spans, scheduling.Span{StartMinutes: a.SlotMinutes, DurationMinutes: a.DurationMinutes})
	}
	return spans
}

func lockKey(businessID uuid.UUID, dayStart time.Time) string {
	return businessID.String() + ":" + dayStart.Format("2006-01-02")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
