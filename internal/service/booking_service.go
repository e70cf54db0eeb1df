package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/repository"
)

var (
	ErrBookingForbidden     = errors.New("booking belongs to another user")
	ErrBookingNotCancelable = errors.New("booking is already cancelled")
	ErrServiceUnavailable   = errors.New("service is not bookable")
	ErrSlotInPast           = errors.New("slot has already started")
)

// BookingService turns open slots into confirmed bookings. Slot
// contention is settled by a guarded status update in the repository;
// the loser of a concurrent booking race gets ErrSlotTaken.
type BookingService struct {
	bookingRepo repository.BookingRepository
	slotRepo    repository.SlotRepository
	serviceRepo repository.SalonServiceRepository
	paymentRepo repository.PaymentRepository
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	serviceRepo repository.SalonServiceRepository,
	paymentRepo repository.PaymentRepository,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		serviceRepo: serviceRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *BookingService) Create(ctx context.Context, userID, slotID uint, notes string) (*domain.Booking, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordBookingOperation(ctx, "create", outcome, time.Since(start)) }()

	slot, err := s.slotRepo.FindByID(slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	if !slot.StartsAt.After(time.Now().UTC()) {
		outcome = "bad_request"
		return nil, ErrSlotInPast
	}
	svc, err := s.serviceRepo.FindByID(slot.ServiceID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	if !svc.IsActive {
		outcome = "conflict"
		return nil, ErrServiceUnavailable
	}

	if err := s.slotRepo.MarkBooked(slotID); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			outcome = "conflict"
		} else if errors.Is(err, repository.ErrSlotNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}

	booking := &domain.Booking{
		Reference: uuid.New().String(),
		UserID:    userID,
		ServiceID: slot.ServiceID,
		SlotID:    slotID,
		Status:    domain.BookingStatusConfirmed,
		Notes:     strings.TrimSpace(notes),
	}
	if err := s.bookingRepo.Create(booking); err != nil {
		// Put the slot back so a failed insert does not strand it.
		if relErr := s.slotRepo.Release(slotID); relErr != nil {
			observability.NewLogger().Error("failed to release slot after booking insert failure", "slotId", slotID, "error", relErr)
		}
		outcome = "error"
		return nil, err
	}

	payment := &domain.Payment{
		BookingID: booking.ID,
		Amount:    svc.Price,
		Currency:  "USD",
		Status:    domain.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		// Unwind the booking too, otherwise the slot stays held by a
		// confirmed booking that has no payment record.
		if cancelErr := s.bookingRepo.UpdateStatus(booking.ID, domain.BookingStatusCancelled); cancelErr != nil {
			observability.NewLogger().Error("failed to cancel booking after payment insert failure", "bookingId", booking.ID, "error", cancelErr)
		}
		if relErr := s.slotRepo.Release(slotID); relErr != nil {
			observability.NewLogger().Error("failed to release slot after payment insert failure", "slotId", slotID, "error", relErr)
		}
		outcome = "error"
		return nil, err
	}

	return s.bookingRepo.FindByID(booking.ID)
}

func (s *BookingService) GetByID(ctx context.Context, userID uint, isAdmin bool, bookingID uint) (*domain.Booking, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordBookingOperation(ctx, "get", outcome, time.Since(start)) }()

	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		outcome = "forbidden"
		return nil, ErrBookingForbidden
	}
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID uint, req repository.PageRequest) (repository.PageResult[domain.Booking], error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordBookingOperation(ctx, "list", outcome, time.Since(start)) }()

	res, err := s.bookingRepo.ListForUser(userID, req)
	if err != nil {
		outcome = "error"
		return repository.PageResult[domain.Booking]{}, err
	}
	return res, nil
}

// Cancel marks the booking cancelled and reopens its slot.
func (s *BookingService) Cancel(ctx context.Context, userID uint, isAdmin bool, bookingID uint) (*domain.Booking, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordBookingOperation(ctx, "cancel", outcome, time.Since(start)) }()

	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		outcome = "forbidden"
		return nil, ErrBookingForbidden
	}
	if booking.Status == domain.BookingStatusCancelled {
		outcome = "conflict"
		return nil, ErrBookingNotCancelable
	}

	if err := s.bookingRepo.UpdateStatus(bookingID, domain.BookingStatusCancelled); err != nil {
		outcome = "error"
		return nil, err
	}
	if err := s.slotRepo.Release(booking.SlotID); err != nil && !errors.Is(err, repository.ErrSlotNotFound) {
		outcome = "error"
		return nil, err
	}
	return s.bookingRepo.FindByID(bookingID)
}

func (s *BookingService) PaymentForBooking(ctx context.Context, userID uint, isAdmin bool, bookingID uint) (*domain.Payment, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordBookingOperation(ctx, "payment", outcome, time.Since(start)) }()

	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		outcome = "forbidden"
		return nil, ErrBookingForbidden
	}
	payment, err := s.paymentRepo.FindByBookingID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	return payment, nil
}
