package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/domain"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	FindByID(id uint) (*domain.Booking, error)
	Create(b *domain.Booking) error
	ListForUser(userID uint, req PageRequest) (PageResult[domain.Booking], error)
	UpdateStatus(id uint, status string) error
}

type GormBookingRepository struct{ db *gorm.DB }

func NewBookingRepository(db *gorm.DB) BookingRepository { return &GormBookingRepository{db: db} }

func (r *GormBookingRepository) FindByID(id uint) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.Preload("Service").Preload("Slot").First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Create(b *domain.Booking) error {
	return r.db.Create(b).Error
}

func (r *GormBookingRepository) ListForUser(userID uint, req PageRequest) (PageResult[domain.Booking], error) {
	req = req.Normalize()
	q := r.db.Model(&domain.Booking{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[domain.Booking]{}, err
	}
	var items []domain.Booking
	err := r.db.Preload("Service").Preload("Slot").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(req.PageSize).
		Offset(req.Offset()).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.Booking]{}, err
	}
	return newPageResult(items, req, total), nil
}

func (r *GormBookingRepository) UpdateStatus(id uint, status string) error {
	tx := r.db.Model(&domain.Booking{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
