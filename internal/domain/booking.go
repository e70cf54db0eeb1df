package domain

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	UserID    uint      `gorm:"not null;index:idx_bookings_user" json:"userId"`
	ServiceID uint      `gorm:"not null" json:"serviceId"`
	SlotID    uint      `gorm:"not null;index:idx_bookings_slot" json:"slotId"`
	Status    string    `gorm:"size:16;not null;default:pending" json:"status"`
	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Service *SalonService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Slot    *Slot         `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}
