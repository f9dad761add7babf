package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

type CatalogService struct {
	repo *repositories.CatalogRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{repo: repositories.NewCatalogRepository(db)}
}

func (s *CatalogService) CreateService(businessID uuid.UUID, name string, durationMinutes int, price float64) (*models.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: service name is required", booking.ErrInvalidPayload)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", booking.ErrInvalidPayload)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", booking.ErrInvalidPayload)
	}

	service := &models.Service{
		BusinessID:      businessID,
		Name:            name,
		DurationMinutes: durationMinutes,
		Price:           price,
		Active:          true,
	}
	if err := s.repo.CreateService(service); err != nil {
		return nil, err
	}
	return service, nil
}

type ServiceUpdate struct {
	Name            *string
	DurationMinutes *int
	Price           *float64
	Active          *bool
}

func (s *CatalogService) UpdateService(businessID, id uuid.UUID, in ServiceUpdate) (*models.Service, error) {
	service, err := s.repo.GetService(businessID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: service name is required", booking.ErrInvalidPayload)
		}
		service.Name = name
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", booking.ErrInvalidPayload)
		}
		service.DurationMinutes = *in.DurationMinutes
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", booking.ErrInvalidPayload)
		}
		service.Price = *in.Price
	}
	if in.Active != nil {
		service.Active = *in.Active
	}

	if err := s.repo.UpdateService(service); err != nil {
		return nil, err
	}
	return service, nil
}

// DeactivateService soft-deletes. Existing appointments keep their duration
// snapshots, so history never changes under a deactivated service.
func (s *CatalogService) DeactivateService(businessID, id uuid.UUID) error {
	if _, err := s.repo.GetService(businessID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return booking.ErrNotFound
		}
		return err
	}
	return s.repo.DeactivateService(businessID, id)
}

func (s *CatalogService) ListServices(businessID uuid.UUID) ([]models.Service, error) {
	return s.repo.ListActiveServices(businessID)
}

// CreateCombo bundles at least two active services under one bookable name.
// Position follows the order of the incoming IDs.
func (s *CatalogService) CreateCombo(businessID uuid.UUID, name string, serviceIDs []uuid.UUID) (*models.Combo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: combo name is required", booking.ErrInvalidPayload)
	}
	if len(serviceIDs) < 2 {
		return nil, fmt.Errorf("%w: a combo needs at least two services", booking.ErrInvalidPayload)
	}

	services, err := s.repo.GetServices(businessID, serviceIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]models.Service, len(services))
	for _, svc := range services {
		known[svc.ID] = svc
	}

	items := make([]models.ComboService, 0, len(serviceIDs))
	seen := make(map[uuid.UUID]bool, len(serviceIDs))
	for i, id := range serviceIDs {
		svc, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown service %s", booking.ErrInvalidPayload, id)
		}
		if !svc.Active {
			return nil, fmt.Errorf("%w: service %q is inactive", booking.ErrInvalidPayload, svc.Name)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate service %s", booking.ErrInvalidPayload, id)
		}
		seen[id] = true
		items = append(items, models.ComboService{ServiceID: id, Position: i})
	}

	combo := &models.Combo{
		BusinessID: businessID,
		Name:       name,
		Active:     true,
		Services:   items,
	}
	if err := s.repo.CreateCombo(combo); err != nil {
		return nil, err
	}
	return combo, nil
}

func (s *CatalogService) ListCombos(businessID uuid.UUID) ([]models.Combo, error) {
	return s.repo.ListCombos(businessID)
}

func (s *CatalogService) DeactivateCombo(businessID, id uuid.UUID) error {
	if _, err := s.repo.GetCombo(businessID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return booking.ErrNotFound
		}
		return err
	}
	return s.repo.DeactivateCombo(businessID, id)
}
