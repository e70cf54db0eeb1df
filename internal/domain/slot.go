package domain

import "time"

const (
	SlotStatusOpen   = "open"
	SlotStatusBooked = "booked"
)

type Slot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ServiceID uint      `gorm:"not null;index:idx_slots_service_start" json:"serviceId"`
	StaffName string    `gorm:"size:100" json:"staffName,omitempty"`
	StartsAt  time.Time `gorm:"not null;index:idx_slots_service_start" json:"startsAt"`
	EndsAt    time.Time `gorm:"not null" json:"endsAt"`
	Status    string    `gorm:"size:16;not null;default:open" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
