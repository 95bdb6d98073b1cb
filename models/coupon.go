package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ErrCouponExhausted is returned by ConsumeCoupon when the usage counter
// reached max_uses between validation and consumption.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

type Coupon struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null" json:"code"`
	DiscountType  DiscountType    `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_value"`

	// Either bound may be nil, meaning unbounded on that side.
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	MinimumAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"minimum_amount"`

	// MaxUses nil means unlimited. TimesUsed only ever grows, and only
	// through ConsumeCoupon.
	MaxUses   *int `json:"max_uses"`
	TimesUsed int  `json:"times_used"`

	IsActive  bool `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CouponUsage records one redemption by one finalized order. Rows are
// written exactly once and never updated or deleted.
type CouponUsage struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CouponID uint      `gorm:"index;not null" json:"coupon_id"`
	UserID   *string   `json:"user_id"`
	OrderID  uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}

// CanUse reports whether the coupon may reduce an order of the given amount
// at the given instant. It never mutates the coupon; the reason string is
// user-facing and empty when usable.
func (c *Coupon) CanUse(now time.Time, orderAmount decimal.Decimal) (bool, string) {
	if !c.IsActive {
		return false, "invalid coupon"
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false, "coupon is not valid yet"
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false, "coupon has expired"
	}
	if c.MaxUses != nil && c.TimesUsed >= *c.MaxUses {
		return false, "coupon usage limit reached"
	}
	if c.MinimumAmount.IsPositive() && orderAmount.LessThan(c.MinimumAmount) {
		return false, fmt.Sprintf("minimum order amount of %s not met", c.MinimumAmount.StringFixed(2))
	}
	return true, ""
}

// CalculateDiscount returns the discount for the given order amount,
// clamped to [0, orderAmount] so a total can never go negative.
func (c *Coupon) CalculateDiscount(orderAmount decimal.Decimal) decimal.Decimal {
	if !orderAmount.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderAmount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(orderAmount) {
		return orderAmount
	}
	return discount
}

// ConsumeCoupon records one redemption: a CouponUsage row plus an atomic
// increment of times_used, re-checked under a row lock so two concurrent
// checkouts cannot both slip past max_uses. Must run inside the order
// transaction and exactly once per finalized order.
func ConsumeCoupon(tx *gorm.DB, couponID uint, userID *string, orderID uint) error {
	var cpn Coupon
	if err := WithRowLock(tx).First(&cpn, couponID).Error; err != nil {
		return err
	}
	if cpn.MaxUses != nil && cpn.TimesUsed >= *cpn.MaxUses {
		return ErrCouponExhausted
	}
	if err := tx.Model(&Coupon{}).Where("id = ?", couponID).
		UpdateColumn("times_used", gorm.Expr("times_used + 1")).Error; err != nil {
		return err
	}
	usage := CouponUsage{
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
		UsedAt:   time.Now(),
	}
	return tx.Create(&usage).Error
}

// WithRowLock adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite has a single writer and no row locks, so the clause is skipped
// there.
func WithRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
