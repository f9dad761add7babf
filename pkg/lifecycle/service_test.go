package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Business{}, &models.Customer{}, &models.Appointment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedBusiness(t *testing.T, db *gorm.DB, phone string, graceMinutes int) *models.Business {
	t.Helper()
	b := &models.Business{
		Name:     "Bella Studio",
		Phone:    phone,
		TimeZone: "UTC",
		APIKey:   uuid.NewString(),
		Settings: models.AppointmentSettings{NoShowGraceMinutes: graceMinutes, MaxAppointmentsPerSlot: 1},
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("create business: %v", err)
	}
	return b
}

func seedAppointment(t *testing.T, db *gorm.DB, businessID uuid.UUID, startsAt time.Time, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	customer := models.Customer{BusinessID: businessID, Phone: "+1415555" + uuid.NewString()[:4]}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	appt := &models.Appointment{
		BusinessID:      businessID,
		CustomerID:      customer.ID,
		StartsAt:        startsAt,
		SlotMinutes:     startsAt.Hour()*60 + startsAt.Minute(),
		DurationMinutes: 30,
		Status:          status,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

func loadStatus(t *testing.T, db *gorm.DB, id uuid.UUID) models.AppointmentStatus {
	t.Helper()
	var appt models.Appointment
	if err := db.First(&appt, "id = ?", id).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	return appt.Status
}

func TestMarkNoShowsPastGrace(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db, "+14155550100", 30)

	overdue := seedAppointment(t, db, business.ID, now.Add(-45*time.Minute), models.AppointmentScheduled)
	boundary := seedAppointment(t, db, business.ID, now.Add(-30*time.Minute), models.AppointmentScheduled)
	fresh := seedAppointment(t, db, business.ID, now.Add(-10*time.Minute), models.AppointmentScheduled)
	completed := seedAppointment(t, db, business.ID, now.Add(-2*time.Hour), models.AppointmentCompleted)

	svc := NewService(db, zap.NewNop())
	if err := svc.MarkNoShows(context.Background(), now); err != nil {
		t.Fatalf("MarkNoShows failed: %v", err)
	}

	if got := loadStatus(t, db, overdue.ID); got != models.AppointmentNoShow {
		t.Errorf("overdue: expected no_show, got %s", got)
	}
	// Exactly start+grace == now is not yet past the grace period.
	if got := loadStatus(t, db, boundary.ID); got != models.AppointmentScheduled {
		t.Errorf("boundary: expected scheduled, got %s", got)
	}
	if got := loadStatus(t, db, fresh.ID); got != models.AppointmentScheduled {
		t.Errorf("fresh: expected scheduled, got %s", got)
	}
	if got := loadStatus(t, db, completed.ID); got != models.AppointmentCompleted {
		t.Errorf("completed: expected untouched, got %s", got)
	}
}

func TestMarkNoShowsHonorsPerBusinessGrace(t *testing.T) {
	db := newTestDB(t)
	lenient := seedBusiness(t, db, "+14155550100", 120)
	strict := seedBusiness(t, db, "+14155550101", 15)

	lenientAppt := seedAppointment(t, db, lenient.ID, now.Add(-45*time.Minute), models.AppointmentScheduled)
	strictAppt := seedAppointment(t, db, strict.ID, now.Add(-45*time.Minute), models.AppointmentScheduled)

	svc := NewService(db, zap.NewNop())
	if err := svc.MarkNoShows(context.Background(), now); err != nil {
		t.Fatalf("MarkNoShows failed: %v", err)
	}

	if got := loadStatus(t, db, lenientAppt.ID); got != models.AppointmentScheduled {
		t.Errorf("lenient business: expected scheduled, got %s", got)
	}
	if got := loadStatus(t, db, strictAppt.ID); got != models.AppointmentNoShow {
		t.Errorf("strict business: expected no_show, got %s", got)
	}
}

func TestMarkNoShowsDefaultsGraceWhenUnset(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db, "+14155550100", 0)

	overdue := seedAppointment(t, db, business.ID, now.Add(-31*time.Minute), models.AppointmentScheduled)
	inside := seedAppointment(t, db, business.ID, now.Add(-29*time.Minute), models.AppointmentScheduled)

	svc := NewService(db, zap.NewNop())
	if err := svc.MarkNoShows(context.Background(), now); err != nil {
		t.Fatalf("MarkNoShows failed: %v", err)
	}

	if got := loadStatus(t, db, overdue.ID); got != models.AppointmentNoShow {
		t.Errorf("expected default 30m grace to mark, got %s", got)
	}
	if got := loadStatus(t, db, inside.ID); got != models.AppointmentScheduled {
		t.Errorf("expected appointment inside default grace untouched, got %s", got)
	}
}

func TestArchiveExpiredRetentionWindow(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db, "+14155550100", 30)

	old := seedAppointment(t, db, business.ID, now.Add(-6*24*time.Hour), models.AppointmentCancelled)
	recent := seedAppointment(t, db, business.ID, now.Add(-3*24*time.Hour), models.AppointmentNoShow)
	oldScheduled := seedAppointment(t, db, business.ID, now.Add(-6*24*time.Hour), models.AppointmentScheduled)
	oldCompleted := seedAppointment(t, db, business.ID, now.Add(-6*24*time.Hour), models.AppointmentCompleted)

	svc := NewService(db, zap.NewNop())
	if err := svc.ArchiveExpired(context.Background(), now); err != nil {
		t.Fatalf("ArchiveExpired failed: %v", err)
	}

	var archived models.Appointment
	if err := db.First(&archived, "id = ?", old.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if archived.ArchivedAt == nil {
		t.Error("6-day-old cancelled appointment must be archived")
	}

	for name, id := range map[string]uuid.UUID{
		"3-day-old no_show":   recent.ID,
		"6-day-old scheduled": oldScheduled.ID,
		"6-day-old completed": oldCompleted.ID,
	} {
		var appt models.Appointment
		if err := db.First(&appt, "id = ?", id).Error; err != nil {
			t.Fatalf("load: %v", err)
		}
		if appt.ArchivedAt != nil {
			t.Errorf("%s must not be archived", name)
		}
	}
}

func TestArchiveExpiredRerunIsNoOp(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db, "+14155550100", 30)
	old := seedAppointment(t, db, business.ID, now.Add(-6*24*time.Hour), models.AppointmentCancelled)

	svc := NewService(db, zap.NewNop())
	if err := svc.ArchiveExpired(context.Background(), now); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	var first models.Appointment
	if err := db.First(&first, "id = ?", old.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if first.ArchivedAt == nil {
		t.Fatal("expected archived_at set")
	}

	later := now.Add(24 * time.Hour)
	if err := svc.ArchiveExpired(context.Background(), later); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	var second models.Appointment
	if err := db.First(&second, "id = ?", old.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !second.ArchivedAt.Equal(*first.ArchivedAt) {
		t.Errorf("re-run moved archived_at from %v to %v", first.ArchivedAt, second.ArchivedAt)
	}
}
