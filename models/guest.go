package models

import "time"

// GuestTTL is the single expiry horizon for guest identities: the session
// issued at /auth/guest and the guest row created during guest checkout
// both live this long.
const GuestTTL = 30 * 24 * time.Hour

// Guest anchors a guest checkout to a shipping address without requiring
// a user account. Guest rows double as session identities: the id issued
// at /auth/guest is the session id owning a guest cart.
type Guest struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// AddressInfo is the shipping address captured during guest checkout.
type AddressInfo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuestID    string    `gorm:"index;not null" json:"guest_id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null" json:"email"`
	Phone      string    `gorm:"not null" json:"phone"`
	Address    string    `gorm:"not null" json:"address"`
	PostalCode string    `gorm:"not null" json:"postal_code"`
	City       string    `gorm:"not null" json:"city"`
	Country    string    `gorm:"not null" json:"country"`
	CreatedAt  time.Time `json:"created_at"`
}
