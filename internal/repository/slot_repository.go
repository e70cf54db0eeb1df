package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/domain"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotTaken    = errors.New("slot already booked")
)

type SlotRepository interface {
	FindByID(id uint) (*domain.Slot, error)
	Create(slot *domain.Slot) error
	ListForService(serviceID uint, from, to time.Time, openOnly bool) ([]domain.Slot, error)
	// MarkBooked transitions open -> booked with a status precondition; a lost
	// race between two bookings of the same slot fails here with ErrSlotTaken.
	MarkBooked(id uint) error
	Release(id uint) error
	Delete(id uint) error
}

type GormSlotRepository struct{ db *gorm.DB }

func NewSlotRepository(db *gorm.DB) SlotRepository { return &GormSlotRepository{db: db} }

func (r *GormSlotRepository) FindByID(id uint) (*domain.Slot, error) {
	var s domain.Slot
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormSlotRepository) Create(slot *domain.Slot) error {
	return r.db.Create(slot).Error
}

func (r *GormSlotRepository) ListForService(serviceID uint, from, to time.Time, openOnly bool) ([]domain.Slot, error) {
	q := r.db.Where("service_id = ?", serviceID)
	if !from.IsZero() {
		q = q.Where("starts_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("starts_at < ?", to)
	}
	if openOnly {
		q = q.Where("status = ?", domain.SlotStatusOpen)
	}
	var slots []domain.Slot
	err := q.Order("starts_at ASC").Find(&slots).Error
	return slots, err
}

func (r *GormSlotRepository) MarkBooked(id uint) error {
	tx := r.db.Model(&domain.Slot{}).
		Where("id = ? AND status = ?", id, domain.SlotStatusOpen).
		Update("status", domain.SlotStatusBooked)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		if _, err := r.FindByID(id); err != nil {
			return err
		}
		return ErrSlotTaken
	}
	return nil
}

func (r *GormSlotRepository) Release(id uint) error {
	tx := r.db.Model(&domain.Slot{}).
		Where("id = ?", id).
		Update("status", domain.SlotStatusOpen)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *GormSlotRepository) Delete(id uint) error {
	tx := r.db.Delete(&domain.Slot{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
