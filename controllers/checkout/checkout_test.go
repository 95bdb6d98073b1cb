package checkoutControllers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

func newCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Category{},
		&models.Workshop{}, &models.Coupon{}, &models.CouponUsage{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

func intPtr(i int) *int { return &i }

func validInput() CheckoutInput {
	return CheckoutInput{
		Contact: Contact{
			FullName: "Rodrigo Perez",
			Email:    "rodrigo@example.com",
			Phone:    "+56 9 1234 5678",
		},
		Address: &ShippingAddress{
			Address1: "Av. Providencia 123",
			City:     "Santiago",
			Country:  "Chile",
		},
		PaymentMethod: "transfer",
	}
}

func seedCart(t *testing.T, db *gorm.DB, store cart.Store, key string, user *models.User) (*cart.Cart, models.Product, models.Product) {
	t.Helper()
	local := models.Product{
		Name: "Brake pad set", Price: decimal.NewFromInt(300), Stock: 10,
	}
	imported := models.Product{
		Name:  "Snorkel kit",
		Price: decimal.NewFromInt(900), IsSale: true, SalePrice: decimal.NewFromInt(750),
		Stock: 0, StockInternational: 4,
	}
	require.NoError(t, db.Create(&local).Error)
	require.NoError(t, db.Create(&imported).Error)

	crt := cart.New(db, store, key, user)
	crt.AddOrSet(&local, 2)
	crt.AddOrSet(&imported, 1)
	return crt, local, imported
}

func TestAssembleHappyPath(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)

	user := models.User{ID: "buyer-1", Email: "rodrigo@example.com"}
	require.NoError(t, db.Create(&user).Error)

	crt, local, imported := seedCart(t, db, store, user.ID, &user)

	order, warnings, err := Assemble(db, crt, &user, validInput(), models.OrderStatusPending)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// 2×300 + 1×750 (sale price), no discount.
	assert.True(t, order.AmountBeforeDiscount.Equal(decimal.NewFromInt(1350)))
	assert.True(t, order.CouponDiscount.IsZero())
	assert.True(t, order.AmountPay.Equal(order.AmountBeforeDiscount))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.HasInternationalItems)
	assert.NotEmpty(t, order.BuyOrder)

	// Item snapshot: frozen unit prices summing to the pre-discount amount.
	require.Len(t, order.Items, 2)
	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Total())
		switch item.ProductID {
		case local.ID:
			assert.False(t, item.IsInternational)
			assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(300)))
		case imported.ID:
			assert.True(t, item.IsInternational)
			assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(750)))
		}
	}
	assert.True(t, sum.Equal(order.AmountBeforeDiscount))

	// Cart and mirror are gone after commit.
	assert.Equal(t, 0, crt.Len())
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Empty(t, reloaded.OldCart)
}

func TestAssembleWithCoupon(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)

	user := models.User{ID: "buyer-2", Email: "b2@example.com"}
	require.NoError(t, db.Create(&user).Error)
	crt, _, _ := seedCart(t, db, store, user.ID, &user)

	cpn := models.Coupon{
		Code: "SAVE10", DiscountType: models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10), MaxUses: intPtr(1), IsActive: true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	in := validInput()
	in.CouponCode = "SAVE10"

	order, warnings, err := Assemble(db, crt, &user, in, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// 10% of 1350.
	assert.True(t, order.CouponDiscount.Equal(decimal.NewFromInt(135)))
	assert.True(t, order.AmountPay.Equal(decimal.NewFromInt(1215)))
	require.NotNil(t, order.CouponID)

	// Consumed exactly once.
	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, cpn.ID).Error)
	assert.Equal(t, 1, reloaded.TimesUsed)
	var usages int64
	db.Model(&models.CouponUsage{}).Where("order_id = ?", order.ID).Count(&usages)
	assert.EqualValues(t, 1, usages)
}

func TestAssembleStaleCouponDropsDiscount(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)

	user := models.User{ID: "buyer-3", Email: "b3@example.com"}
	require.NoError(t, db.Create(&user).Error)
	crt, _, _ := seedCart(t, db, store, user.ID, &user)

	// Already exhausted by the time this checkout runs.
	cpn := models.Coupon{
		Code: "GONE", DiscountType: models.DiscountFixed,
		DiscountValue: decimal.NewFromInt(500),
		MaxUses:       intPtr(1), TimesUsed: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	in := validInput()
	in.CouponCode = "GONE"

	order, warnings, err := Assemble(db, crt, &user, in, models.OrderStatusPending)
	require.NoError(t, err)

	// Checkout proceeds at full price with a warning.
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "full price applied")
	assert.True(t, order.CouponDiscount.IsZero())
	assert.True(t, order.AmountPay.Equal(order.AmountBeforeDiscount))
	assert.Nil(t, order.CouponID)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, cpn.ID).Error)
	assert.Equal(t, 1, reloaded.TimesUsed)
}

func TestAssembleUnknownCouponWarns(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)
	crt, _, _ := seedCart(t, db, store, "guest-1", nil)

	in := validInput()
	in.CouponCode = "NOPE"

	order, warnings, err := Assemble(db, crt, nil, in, models.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "invalid coupon")
	assert.True(t, order.CouponDiscount.IsZero())
}

func TestAssembleEmptyCartRejected(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)
	crt := cart.New(db, store, "guest-2", nil)

	_, _, err := Assemble(db, crt, nil, validInput(), models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestAssembleShippingValidation(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)
	crt, _, _ := seedCart(t, db, store, "guest-3", nil)

	// Neither address nor workshop.
	in := validInput()
	in.Address = nil
	_, _, err := Assemble(db, crt, nil, in, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrNoShippingInfo)

	// Both at once.
	in = validInput()
	workshopID := uint(1)
	in.WorkshopID = &workshopID
	_, _, err = Assemble(db, crt, nil, in, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrNoShippingInfo)

	// Unknown workshop.
	in = validInput()
	in.Address = nil
	missing := uint(9999)
	in.WorkshopID = &missing
	_, _, err = Assemble(db, crt, nil, in, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrNoShippingInfo)

	// Failed checkouts leave the cart alone.
	assert.Equal(t, 2, crt.Len())
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestAssembleWorkshopDestination(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)
	crt, _, _ := seedCart(t, db, store, "guest-4", nil)

	workshop := models.Workshop{
		Name: "Taller Andes", Address1: "Calle Falsa 123", City: "Temuco", Country: "Chile",
	}
	require.NoError(t, db.Create(&workshop).Error)

	in := validInput()
	in.Address = nil
	in.WorkshopID = &workshop.ID

	order, _, err := Assemble(db, crt, nil, in, models.OrderStatusPending)
	require.NoError(t, err)
	require.NotNil(t, order.WorkshopID)
	assert.Equal(t, workshop.ID, *order.WorkshopID)
	assert.Contains(t, order.ShippingAddress, "Taller Andes")
	assert.Contains(t, order.ShippingAddress, "Temuco")
}

func TestAssemblePresetBuyOrder(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)
	crt, _, _ := seedCart(t, db, store, "guest-5", nil)

	in := validInput()
	in.BuyOrder = "ORD-20250901-DEADBEEF"

	order, _, err := Assemble(db, crt, nil, in, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250901-DEADBEEF", order.BuyOrder)
}

func TestAssembleFixedCouponFloorsAtZero(t *testing.T) {
	db := newCheckoutTestDB(t)
	store := cart.NewMemoryStore(time.Hour)

	p := models.Product{Name: "Sticker", Price: decimal.NewFromInt(100), Stock: 5}
	require.NoError(t, db.Create(&p).Error)
	crt := cart.New(db, store, "guest-6", nil)
	crt.AddOrSet(&p, 1)

	cpn := models.Coupon{
		Code: "BIG", DiscountType: models.DiscountFixed,
		DiscountValue: decimal.NewFromInt(100000), IsActive: true,
	}
	require.NoError(t, db.Create(&cpn).Error)

	in := validInput()
	in.CouponCode = "BIG"

	order, _, err := Assemble(db, crt, nil, in, models.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, order.AmountPay.IsNegative())
	assert.True(t, order.AmountPay.IsZero())
}
