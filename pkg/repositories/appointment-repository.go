package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts the appointment together with its service line items; gorm
// persists the Services association in the same statement batch, so a booking
// with no line items is never observable.
func (r *AppointmentRepository) Create(appointment *models.Appointment) error {
	return r.db.Create(appointment).Error
}

func (r *AppointmentRepository) GetByID(businessID, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.Preload("Services").Preload("Customer").
		First(&appointment, "id = ? AND business_id = ?", id, businessID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListSameDayScheduled returns the scheduled appointments whose start falls in
// [dayStart, dayEnd), excluding the given appointment ID when rescheduling.
// This is the input to the slot-load grid.
func (r *AppointmentRepository) ListSameDayScheduled(businessID uuid.UUID, dayStart, dayEnd time.Time, exclude uuid.UUID) ([]models.Appointment, error) {
	q := r.db.Where(
		"business_id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
		businessID, models.AppointmentScheduled, dayStart, dayEnd,
	)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateSchedule moves an appointment to a new start and resets it to
// scheduled, as reschedule requires.
func (r *AppointmentRepository) UpdateSchedule(id uuid.UUID, startsAt time.Time, slotMinutes int) error {
	return r.db.Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"starts_at":    startsAt,
			"slot_minutes": slotMinutes,
			"status":       models.AppointmentScheduled,
		}).Error
}

// UpdateStatus applies an explicit one-way transition out of scheduled. The
// status guard makes the update report zero rows when the appointment has
// already left the scheduled state.
func (r *AppointmentRepository) UpdateStatus(businessID, id uuid.UUID, status models.AppointmentStatus) (int64, error) {
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND business_id = ? AND status = ?", id, businessID, models.AppointmentScheduled).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *AppointmentRepository) ListUpcoming(businessID uuid.UUID, now time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.Preload("Services").Preload("Customer").
		Where("business_id = ? AND status = ? AND starts_at >= ? AND archived_at IS NULL",
			businessID, models.AppointmentScheduled, now).
		Order("starts_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) ListHistory(businessID uuid.UUID, limit int) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.Preload("Services").Preload("Customer").
		Where("business_id = ?", businessID).
		Order("starts_at DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListScheduledInWindow returns scheduled appointments with a start in
// (from, to]. The half-open window keeps an appointment sitting exactly on a
// scan boundary out of two consecutive scans.
func (r *AppointmentRepository) ListScheduledInWindow(businessID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.Preload("Services").Preload("Customer").
		Where("business_id = ? AND status = ? AND starts_at > ? AND starts_at <= ?",
			businessID, models.AppointmentScheduled, from, to).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListNoShowCandidates returns scheduled appointments whose start is before
// the deadline (now minus the business's grace period).
func (r *AppointmentRepository) ListNoShowCandidates(businessID uuid.UUID, deadline time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Where("business_id = ? AND status = ? AND starts_at < ?",
			businessID, models.AppointmentScheduled, deadline).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// MarkNoShow flips a still-scheduled appointment to no_show. The status guard
// makes re-runs and races with explicit status updates no-ops.
func (r *AppointmentRepository) MarkNoShow(id uuid.UUID) (int64, error) {
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, models.AppointmentScheduled).
		Update("status", models.AppointmentNoShow)
	return res.RowsAffected, res.Error
}

// ListArchivable returns cancelled/no_show appointments older than the cutoff
// that have not been archived yet.
func (r *AppointmentRepository) ListArchivable(cutoff time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Where("status IN ? AND starts_at < ? AND archived_at IS NULL",
			[]models.AppointmentStatus{models.AppointmentCancelled, models.AppointmentNoShow}, cutoff).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Archive stamps archived_at once; already-archived rows are left untouched.
func (r *AppointmentRepository) Archive(id uuid.UUID, at time.Time) (int64, error) {
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND archived_at IS NULL", id).
		Update("archived_at", at)
	return res.RowsAffected, res.Error
}
