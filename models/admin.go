package models

import "time"

// Admin is a staff account created on first Google login. New admins start
// unapproved and cannot use the admin surface until a superadmin flips
// Approved.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Approved  bool      `gorm:"default:false" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
