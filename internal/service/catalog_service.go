package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/repository"
)

var (
	ErrServiceInvalidName        = errors.New("name must be between 3 and 120 characters")
	ErrServiceInvalidDescription = errors.New("description must be <= 500 characters")
	ErrServiceInvalidDuration    = errors.New("duration must be between 5 and 480 minutes")
	ErrServiceInvalidPrice       = errors.New("price must be greater than 0")
	ErrServiceNoUpdates          = errors.New("no updates provided")
	ErrSlotInvalidWindow         = errors.New("slot end must be after slot start")
)

type CreateServiceInput struct {
	Name        string
	Description string
	Category    string
	DurationMin int
	Price       float64
}

type UpdateServiceInput struct {
	Name        *string
	Description *string
	Category    *string
	DurationMin *int
	Price       *float64
	IsActive    *bool
}

// CatalogService manages the bookable service catalog and its
// availability slots. Photo bytes live in object storage; only the
// object key is kept on the record, and reads get a presigned URL.
type CatalogService struct {
	serviceRepo repository.SalonServiceRepository
	slotRepo    repository.SlotRepository
	storage     StorageService
}

func NewCatalogService(serviceRepo repository.SalonServiceRepository, slotRepo repository.SlotRepository, storage StorageService) *CatalogService {
	return &CatalogService{serviceRepo: serviceRepo, slotRepo: slotRepo, storage: storage}
}

func (s *CatalogService) Create(ctx context.Context, in CreateServiceInput) (*domain.SalonService, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "create", outcome, time.Since(start)) }()

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if len(name) < 3 || len(name) > 120 {
		outcome = "bad_request"
		return nil, ErrServiceInvalidName
	}
	if len(description) > 500 {
		outcome = "bad_request"
		return nil, ErrServiceInvalidDescription
	}
	if in.DurationMin < 5 || in.DurationMin > 480 {
		outcome = "bad_request"
		return nil, ErrServiceInvalidDuration
	}
	if in.Price <= 0 {
		outcome = "bad_request"
		return nil, ErrServiceInvalidPrice
	}

	svc := &domain.SalonService{
		Name:        name,
		Description: description,
		Category:    strings.TrimSpace(strings.ToLower(in.Category)),
		DurationMin: in.DurationMin,
		Price:       in.Price,
		IsActive:    true,
	}
	if err := s.serviceRepo.Create(svc); err != nil {
		outcome = "error"
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id uint) (*domain.SalonService, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "get", outcome, time.Since(start)) }()

	svc, err := s.serviceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	s.attachPhotoURL(ctx, svc)
	return svc, nil
}

func (s *CatalogService) ListPaged(ctx context.Context, req repository.PageRequest, category string, activeOnly bool) (repository.PageResult[domain.SalonService], error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "list", outcome, time.Since(start)) }()

	res, err := s.serviceRepo.ListPaged(req, strings.TrimSpace(strings.ToLower(category)), activeOnly)
	if err != nil {
		outcome = "error"
		return repository.PageResult[domain.SalonService]{}, err
	}
	for i := range res.Items {
		s.attachPhotoURL(ctx, &res.Items[i])
	}
	return res, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, in UpdateServiceInput) (*domain.SalonService, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "update", outcome, time.Since(start)) }()

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 3 || len(name) > 120 {
			outcome = "bad_request"
			return nil, ErrServiceInvalidName
		}
		updates["name"] = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len(description) > 500 {
			outcome = "bad_request"
			return nil, ErrServiceInvalidDescription
		}
		updates["description"] = description
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(strings.ToLower(*in.Category))
	}
	if in.DurationMin != nil {
		if *in.DurationMin < 5 || *in.DurationMin > 480 {
			outcome = "bad_request"
			return nil, ErrServiceInvalidDuration
		}
		updates["duration_min"] = *in.DurationMin
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			outcome = "bad_request"
			return nil, ErrServiceInvalidPrice
		}
		updates["price"] = *in.Price
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		outcome = "bad_request"
		return nil, ErrServiceNoUpdates
	}

	if err := s.serviceRepo.Update(id, updates); err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	svc, err := s.serviceRepo.FindByID(id)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.attachPhotoURL(ctx, svc)
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "delete", outcome, time.Since(start)) }()

	svc, err := s.serviceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return err
	}
	if err := s.serviceRepo.Delete(id); err != nil {
		outcome = "error"
		return err
	}
	if s.storage != nil && svc.PhotoKey != "" {
		if err := s.storage.DeleteServicePhoto(ctx, svc.PhotoKey); err != nil {
			observability.NewLogger().Warn("orphaned service photo", "serviceId", id, "error", err)
		}
	}
	return nil
}

// SetPhoto uploads a new photo and swaps the stored object key. The old
// object is removed best effort after the record points at the new one.
func (s *CatalogService) SetPhoto(ctx context.Context, id uint, file io.Reader, fileSize int64) (*domain.SalonService, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "set_photo", outcome, time.Since(start)) }()

	svc, err := s.serviceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}

	key, err := s.storage.UploadServicePhoto(ctx, id, file, fileSize)
	if err != nil {
		outcome = "bad_request"
		return nil, err
	}
	if err := s.serviceRepo.Update(id, map[string]any{"photo_key": key}); err != nil {
		outcome = "error"
		return nil, err
	}
	if svc.PhotoKey != "" {
		if err := s.storage.DeleteServicePhoto(ctx, svc.PhotoKey); err != nil {
			observability.NewLogger().Warn("failed to delete replaced photo", "serviceId", id, "error", err)
		}
	}
	svc.PhotoKey = key
	s.attachPhotoURL(ctx, svc)
	return svc, nil
}

func (s *CatalogService) AddSlot(ctx context.Context, serviceID uint, staffName string, startsAt, endsAt time.Time) (*domain.Slot, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "add_slot", outcome, time.Since(start)) }()

	if !endsAt.After(startsAt) {
		outcome = "bad_request"
		return nil, ErrSlotInvalidWindow
	}
	if _, err := s.serviceRepo.FindByID(serviceID); err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}

	slot := &domain.Slot{
		ServiceID: serviceID,
		StaffName: strings.TrimSpace(staffName),
		StartsAt:  startsAt.UTC(),
		EndsAt:    endsAt.UTC(),
		Status:    domain.SlotStatusOpen,
	}
	if err := s.slotRepo.Create(slot); err != nil {
		outcome = "error"
		return nil, err
	}
	return slot, nil
}

func (s *CatalogService) ListSlots(ctx context.Context, serviceID uint, from, to time.Time, openOnly bool) ([]domain.Slot, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "list_slots", outcome, time.Since(start)) }()

	if _, err := s.serviceRepo.FindByID(serviceID); err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	slots, err := s.slotRepo.ListForService(serviceID, from, to, openOnly)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	return slots, nil
}

func (s *CatalogService) attachPhotoURL(ctx context.Context, svc *domain.SalonService) {
	if s.storage == nil || svc.PhotoKey == "" {
		return
	}
	url, err := s.storage.GeneratePhotoURL(ctx, svc.PhotoKey)
	if err != nil {
		observability.NewLogger().Warn("failed to presign photo url", "serviceId", svc.ID, "error", err)
		return
	}
	svc.PhotoURL = url
}
