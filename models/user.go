package models

import "time"

type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"unique;not null" json:"email"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Provider string `json:"provider"`

	Address Address `gorm:"embedded" json:"address"`

	// OldCart is a denormalized JSON mirror of the session cart,
	// {"product_id": quantity}, refreshed on every cart mutation and
	// replayed on the next login. Best-effort: corrupt content is
	// discarded, never surfaced.
	OldCart string `json:"-"`

	Orders    []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Address fields embedded in User.
type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Commune  string `json:"commune"`
	Region   string `json:"region"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
}
