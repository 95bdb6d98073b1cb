package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"unique;not null" json:"name"`
	Products []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
}

type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	PartNumber  string `gorm:"index" json:"part_number"`
	Description string `json:"description"`
	Image       string `json:"image"`

	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsSale    bool            `json:"is_sale"`
	SalePrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price"`

	// Stock is the local warehouse count; StockInternational is what can
	// be sourced from the overseas supplier when local stock runs out.
	Stock              int `json:"stock"`
	StockInternational int `json:"stock_international"`

	WeightKg   decimal.Decimal `gorm:"type:decimal(10,3)" json:"weight_kg"`
	Motor      string          `json:"motor"`
	TariffCode string          `json:"tariff_code"`

	Categories []Category `gorm:"many2many:product_categories" json:"categories,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UnitPrice is the price a buyer pays right now: the sale price while the
// product is on sale, the regular price otherwise. Cart totals and order
// line prices must both come from here, never from cached values.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.IsSale {
		return p.SalePrice
	}
	return p.Price
}

// IsInternationalPurchase reports whether buying this product right now
// ships from international stock: local stock exhausted, overseas available.
func (p *Product) IsInternationalPurchase() bool {
	return p.Stock <= 0 && p.StockInternational > 0
}

// Purchasable reports whether the product can be bought from any origin.
func (p *Product) Purchasable() bool {
	return p.Stock > 0 || p.StockInternational > 0
}

// MaxOrderQuantity caps how many units a single cart line may hold,
// bounded by the stock of whichever origin would fulfill it.
func (p *Product) MaxOrderQuantity(limit int) int {
	available := p.Stock
	if p.IsInternationalPurchase() {
		available = p.StockInternational
	}
	if available < limit {
		return available
	}
	return limit
}
