package models

// Workshop is a partner installation shop that can receive an order in
// place of the buyer's home address.
type Workshop struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Commune  string `json:"commune"`
	Region   string `json:"region"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
}
