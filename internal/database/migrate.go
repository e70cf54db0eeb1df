package database

import (
	"github.com/glowbook/salon-backend/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.SalonService{},
		&domain.Slot{},
		&domain.Booking{},
		&domain.Payment{},
	)
}
