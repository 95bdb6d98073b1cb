package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUnitPrice(t *testing.T) {
	p := Product{
		Price:     decimal.NewFromInt(1000),
		SalePrice: decimal.NewFromInt(800),
	}

	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(1000)))

	p.IsSale = true
	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(800)))
}

func TestIsInternationalPurchase(t *testing.T) {
	cases := []struct {
		name          string
		stock         int
		international int
		want          bool
	}{
		{"local stock available", 5, 10, false},
		{"local exhausted, overseas available", 0, 10, true},
		{"negative local, overseas available", -1, 3, true},
		{"nothing anywhere", 0, 0, false},
		{"only local", 1, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Stock: tc.stock, StockInternational: tc.international}
			assert.Equal(t, tc.want, p.IsInternationalPurchase())
		})
	}
}

func TestPurchasable(t *testing.T) {
	assert.True(t, (&Product{Stock: 1}).Purchasable())
	assert.True(t, (&Product{StockInternational: 1}).Purchasable())
	assert.False(t, (&Product{}).Purchasable())
}

func TestMaxOrderQuantity(t *testing.T) {
	// Local fulfillment caps at local stock.
	p := Product{Stock: 3, StockInternational: 50}
	assert.Equal(t, 3, p.MaxOrderQuantity(10))

	// International fulfillment caps at overseas stock.
	p = Product{Stock: 0, StockInternational: 4}
	assert.Equal(t, 4, p.MaxOrderQuantity(10))

	// Plenty of stock: the line limit wins.
	p = Product{Stock: 100}
	assert.Equal(t, 10, p.MaxOrderQuantity(10))
}
