package domain

import "time"

const (
	PaymentStatusPending = "pending"
)

// Payment records intent to pay only. There is no processor integration or
// state machine yet; bookings settle in person.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookingID uint      `gorm:"not null;index:idx_payments_booking" json:"bookingId"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Currency  string    `gorm:"size:8;not null;default:USD" json:"currency"`
	Status    string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
