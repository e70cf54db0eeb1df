package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/domain"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(p *domain.Payment) error
	FindByBookingID(bookingID uint) (*domain.Payment, error)
}

type GormPaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &GormPaymentRepository{db: db} }

func (r *GormPaymentRepository) Create(p *domain.Payment) error {
	return r.db.Create(p).Error
}

func (r *GormPaymentRepository) FindByBookingID(bookingID uint) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.Where("booking_id = ?", bookingID).Order("created_at DESC").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}
