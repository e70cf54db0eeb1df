package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100;not null" json:"firstName"`
	LastName     string     `gorm:"size:100;not null" json:"lastName"`
	Phone        string     `gorm:"size:32" json:"phone,omitempty"`
	Role         string     `gorm:"size:16;not null;default:customer;index:idx_users_role" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Sanitize clears derived credential material before the record crosses the
// service boundary. The json:"-" tag already hides the hash; clearing it keeps
// the invariant even if a caller re-marshals with custom tags.
func (u *User) Sanitize() *User {
	u.PasswordHash = ""
	return u
}
