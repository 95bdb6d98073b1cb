package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func intPtr(i int) *int { return &i }

func TestCanUse(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	amount := decimal.NewFromInt(5000)

	t.Run("active and unbounded", func(t *testing.T) {
		c := Coupon{IsActive: true}
		ok, reason := c.CanUse(now, amount)
		assert.True(t, ok)
		assert.Empty(t, reason)
	})

	t.Run("inactive", func(t *testing.T) {
		c := Coupon{IsActive: false}
		ok, reason := c.CanUse(now, amount)
		assert.False(t, ok)
		assert.Equal(t, "invalid coupon", reason)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := Coupon{IsActive: true, ValidFrom: &future}
		ok, reason := c.CanUse(now, amount)
		assert.False(t, ok)
		assert.Equal(t, "coupon is not valid yet", reason)
	})

	t.Run("expired", func(t *testing.T) {
		c := Coupon{IsActive: true, ValidUntil: &past}
		ok, reason := c.CanUse(now, amount)
		assert.False(t, ok)
		assert.Equal(t, "coupon has expired", reason)
	})

	t.Run("exhausted", func(t *testing.T) {
		c := Coupon{IsActive: true, MaxUses: intPtr(3), TimesUsed: 3}
		ok, reason := c.CanUse(now, amount)
		assert.False(t, ok)
		assert.Equal(t, "coupon usage limit reached", reason)
	})

	t.Run("below minimum amount", func(t *testing.T) {
		c := Coupon{IsActive: true, MinimumAmount: decimal.NewFromInt(10000)}
		ok, reason := c.CanUse(now, amount)
		assert.False(t, ok)
		assert.Contains(t, reason, "minimum order amount")
	})

	t.Run("at minimum amount", func(t *testing.T) {
		c := Coupon{IsActive: true, MinimumAmount: amount}
		ok, _ := c.CanUse(now, amount)
		assert.True(t, ok)
	})
}

func TestCalculateDiscount(t *testing.T) {
	amount := decimal.NewFromInt(2000)

	t.Run("percentage", func(t *testing.T) {
		c := Coupon{DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(10)}
		assert.True(t, c.CalculateDiscount(amount).Equal(decimal.NewFromInt(200)))
	})

	t.Run("fixed", func(t *testing.T) {
		c := Coupon{DiscountType: DiscountFixed, DiscountValue: decimal.NewFromInt(500)}
		assert.True(t, c.CalculateDiscount(amount).Equal(decimal.NewFromInt(500)))
	})

	t.Run("fixed clamped to order amount", func(t *testing.T) {
		c := Coupon{DiscountType: DiscountFixed, DiscountValue: decimal.NewFromInt(5000)}
		assert.True(t, c.CalculateDiscount(amount).Equal(amount))
	})

	t.Run("zero order amount", func(t *testing.T) {
		c := Coupon{DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(10)}
		assert.True(t, c.CalculateDiscount(decimal.Zero).IsZero())
	})

	t.Run("unknown type", func(t *testing.T) {
		c := Coupon{DiscountType: "bogus", DiscountValue: decimal.NewFromInt(10)}
		assert.True(t, c.CalculateDiscount(amount).IsZero())
	})
}

func newCouponTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:coupon_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Coupon{}, &CouponUsage{}))
	return db
}

func TestConsumeCoupon(t *testing.T) {
	db := newCouponTestDB(t)

	cpn := Coupon{
		Code:          "SAVE10",
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MaxUses:       intPtr(2),
		IsActive:      true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	userID := "user-1"

	// First two redemptions succeed and bump the counter.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return ConsumeCoupon(tx, cpn.ID, &userID, 101)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return ConsumeCoupon(tx, cpn.ID, &userID, 102)
	}))

	var reloaded Coupon
	require.NoError(t, db.First(&reloaded, cpn.ID).Error)
	assert.Equal(t, 2, reloaded.TimesUsed)

	// Third hits the cap.
	err := db.Transaction(func(tx *gorm.DB) error {
		return ConsumeCoupon(tx, cpn.ID, &userID, 103)
	})
	assert.ErrorIs(t, err, ErrCouponExhausted)

	// The failed redemption left no usage row and no counter bump.
	var usages int64
	db.Model(&CouponUsage{}).Where("coupon_id = ?", cpn.ID).Count(&usages)
	assert.EqualValues(t, 2, usages)
	require.NoError(t, db.First(&reloaded, cpn.ID).Error)
	assert.Equal(t, 2, reloaded.TimesUsed)
}

func TestConsumeCouponSingleUseRace(t *testing.T) {
	db := newCouponTestDB(t)

	cpn := Coupon{
		Code:          "ONCE",
		DiscountType:  DiscountFixed,
		DiscountValue: decimal.NewFromInt(1000),
		MaxUses:       intPtr(1),
		IsActive:      true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	// Two checkouts racing for the last use: the in-transaction re-check
	// lets exactly one through.
	results := make([]error, 2)
	for i := range results {
		orderID := uint(200 + i)
		results[i] = db.Transaction(func(tx *gorm.DB) error {
			return ConsumeCoupon(tx, cpn.ID, nil, orderID)
		})
	}

	var succeeded, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrCouponExhausted):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	var usages int64
	db.Model(&CouponUsage{}).Where("coupon_id = ?", cpn.ID).Count(&usages)
	assert.EqualValues(t, 1, usages)

	var reloaded Coupon
	require.NoError(t, db.First(&reloaded, cpn.ID).Error)
	assert.Equal(t, 1, reloaded.TimesUsed)
}
