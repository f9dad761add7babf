// Package lifecycle owns the automatic appointment transitions: marking
// overdue scheduled appointments as no_show and archiving old terminal ones.
// Explicit status changes stay in the booking engine.
package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

// archiveAfter is how long past its start a cancelled or no_show appointment
// stays unarchived.
const archiveAfter = 5 * 24 * time.Hour

type Service struct {
	businesses   *repositories.BusinessRepository
	appointments *repositories.AppointmentRepository
	log          *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		businesses:   repositories.NewBusinessRepository(db),
		appointments: repositories.NewAppointmentRepository(db),
		log:          log,
	}
}

// MarkNoShows flips scheduled appointments to no_show once the business's
// grace period has fully elapsed. An appointment sitting exactly on the
// boundary is left for the next scan. One business failing never stops the
// others.
func (s *Service) MarkNoShows(ctx context.Context, now time.Time) error {
	businesses, err := s.businesses.List()
	if err != nil {
		return err
	}

	for _, b := range businesses {
		settings := b.Settings
		settings.Normalize()
		deadline := now.Add(-time.Duration(settings.NoShowGraceMinutes) * time.Minute)

		candidates, err := s.appointments.ListNoShowCandidates(b.ID, deadline)
		if err != nil {
			s.log.Error("no-show scan failed",
				zap.String("business_id", b.ID.String()), zap.Error(err))
			continue
		}

		for _, appt := range candidates {
			rows, err := s.appointments.MarkNoShow(appt.ID)
			if err != nil {
				s.log.Error("failed to mark no-show",
					zap.String("appointment_id", appt.ID.String()), zap.Error(err))
				continue
			}
			if rows > 0 {
				metrics.NoShowsMarkedTotal.Inc()
				s.log.Info("appointment marked no_show",
					zap.String("business_id", b.ID.String()),
					zap.String("appointment_id", appt.ID.String()))
			}
		}
	}
	return nil
}

// ArchiveExpired stamps archived_at on cancelled and no_show appointments
// whose start lies more than the retention window in the past. Already
// archived rows are skipped, so re-runs are no-ops.
func (s *Service) ArchiveExpired(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-archiveAfter)

	rows, err := s.appointments.ListArchivable(cutoff)
	if err != nil {
		return err
	}

	for _, appt := range rows {
		n, err := s.appointments.Archive(appt.ID, now)
		if err != nil {
			s.log.Error("failed to archive appointment",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			continue
		}
		if n > 0 {
			metrics.AppointmentsArchivedTotal.Inc()
		}
	}
	return nil
}
