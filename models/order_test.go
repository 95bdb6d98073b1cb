package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCancelled))

	assert.False(t, OrderStatusPaid.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusPaid.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusPaid))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusPending))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Paid")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestNewBuyOrder(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := NewBuyOrder(now)

	assert.True(t, strings.HasPrefix(ref, "ORD-20250901-"))
	suffix := strings.TrimPrefix(ref, "ORD-20250901-")
	assert.Len(t, suffix, 8)
	assert.Equal(t, strings.ToUpper(suffix), suffix)

	// References must not repeat.
	assert.NotEqual(t, ref, NewBuyOrder(now))
}

func TestSetShipped(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:order_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Workshop{}, &Coupon{}, &Product{}, &Order{}, &OrderItem{}))

	order := Order{BuyOrder: NewBuyOrder(time.Now()), FullName: "Test Buyer", Status: OrderStatusPaid}
	require.NoError(t, db.Create(&order).Error)

	// false → true stamps the date.
	require.NoError(t, SetShipped(db, order.ID, true))
	var reloaded Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.True(t, reloaded.Shipped)
	require.NotNil(t, reloaded.DateShipped)
	firstStamp := *reloaded.DateShipped

	// Repeating the same state never re-stamps.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, SetShipped(db, order.ID, true))
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	require.NotNil(t, reloaded.DateShipped)
	assert.True(t, reloaded.DateShipped.Equal(firstStamp))

	// true → false clears the date.
	require.NoError(t, SetShipped(db, order.ID, false))
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.False(t, reloaded.Shipped)
	assert.Nil(t, reloaded.DateShipped)
}
