package domain

import "time"

type SalonService struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Category    string    `gorm:"size:64;index:idx_salon_services_category" json:"category"`
	DurationMin int       `gorm:"not null" json:"durationMin"`
	Price       float64   `gorm:"not null" json:"price"`
	PhotoKey    string    `gorm:"size:512" json:"-"`
	PhotoURL    string    `gorm:"-" json:"photoUrl,omitempty"`
	IsActive    bool      `gorm:"not null;default:true;index:idx_salon_services_active" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
