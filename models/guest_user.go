package models

import "time"

// GuestUser anchors an anonymous session. Its ID is the session cart key;
// the row is deleted once the guest logs in and the cart is merged.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the guest session has passed its lifetime.
func (g *GuestUser) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}
