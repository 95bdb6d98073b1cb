// Package checkoutControllers materializes finalized orders from cart
// contents, shipping context and an optional coupon. Assemble is the only
// writer of Order, OrderItem and CouponUsage rows.
package checkoutControllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNoShippingInfo = errors.New("no shipping information")
)

// Contact identifies the buyer; always required.
type Contact struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	IDNumber string `json:"id_number"`
}

// ShippingAddress is a home delivery destination.
type ShippingAddress struct {
	Address1 string `json:"address1" binding:"required"`
	Address2 string `json:"address2"`
	Commune  string `json:"commune"`
	City     string `json:"city" binding:"required"`
	Region   string `json:"region"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
	Notes    string `json:"notes"`
}

// Text flattens the address into the free-text form stored on the order.
func (a ShippingAddress) Text() string {
	return joinLines(a.Address1, a.Address2, a.Commune, a.City, a.Region, a.Zipcode, a.Country, a.Notes)
}

// CheckoutInput is everything Assemble needs besides the cart itself.
// Exactly one of Address or WorkshopID must be set.
type CheckoutInput struct {
	Contact       Contact          `json:"contact"`
	Address       *ShippingAddress `json:"address"`
	WorkshopID    *uint            `json:"workshop_id"`
	CouponCode    string           `json:"coupon_code"`
	PaymentMethod string           `json:"payment_method"`

	// BuyOrder carries a reference already registered with the payment
	// gateway. Empty for non-gateway checkouts; Assemble generates one.
	BuyOrder string `json:"-"`
}

// Assemble builds the order snapshot in one transaction:
//
//  1. re-resolve cart products (never trust cached cart totals),
//  2. compute the authoritative pre-discount amount,
//  3. re-validate the coupon under a row lock, dropping it with a warning
//     if it went stale since cart preview,
//  4. compute discount and the floor-0 payable amount,
//  5. OR the international flags,
//  6. create the order with its frozen buy-order reference,
//  7. create one item per line with quantity > 0,
//  8. consume the coupon exactly once,
//  9. clear the session cart and its mirror.
//
// Either all database writes happen or none do; the cart is cleared only
// after the transaction commits. Coupon staleness never blocks checkout —
// it only removes the discount, reported through the returned warnings.
func Assemble(db *gorm.DB, crt *cart.Cart, user *models.User, in CheckoutInput, status models.OrderStatus) (*models.Order, []string, error) {
	if (in.Address == nil) == (in.WorkshopID == nil) {
		return nil, nil, ErrNoShippingInfo
	}
	if in.Contact.FullName == "" {
		return nil, nil, ErrNoShippingInfo
	}

	quantities := crt.Quantities()

	var warnings []string
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		// Shipping destination.
		var workshopID *uint
		var addressText string
		if in.WorkshopID != nil {
			var workshop models.Workshop
			if err := tx.First(&workshop, *in.WorkshopID).Error; err != nil {
				return ErrNoShippingInfo
			}
			workshopID = &workshop.ID
			addressText = joinLines(workshop.Name, workshop.Address1, workshop.Address2,
				workshop.Commune, workshop.City, workshop.Region, workshop.Zipcode, workshop.Country)
		} else {
			addressText = in.Address.Text()
		}

		// Fresh product state for prices and origin flags.
		ids := make([]string, 0, len(quantities))
		for id := range quantities {
			ids = append(ids, id)
		}
		var products []models.Product
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
				return err
			}
		}
		if len(products) == 0 {
			return ErrEmptyCart
		}

		amountBefore := decimal.Zero
		hasInternational := false
		items := make([]models.OrderItem, 0, len(products))
		for i := range products {
			product := &products[i]
			quantity := quantities[cart.ProductKey(product.ID)]
			if quantity <= 0 {
				continue
			}
			unitPrice := product.UnitPrice()
			international := product.IsInternationalPurchase()
			amountBefore = amountBefore.Add(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
			hasInternational = hasInternational || international
			items = append(items, models.OrderItem{
				ProductID:       product.ID,
				Quantity:        quantity,
				UnitPrice:       unitPrice,
				IsInternational: international,
			})
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// Coupon re-validation against the authoritative amount, under a
		// row lock held until commit so the usage check stays true.
		var appliedCoupon *models.Coupon
		discount := decimal.Zero
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			var cpn models.Coupon
			err := models.WithRowLock(tx).
				Where("code = ?", code).First(&cpn).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				warnings = append(warnings, "invalid coupon, full price applied")
			case err != nil:
				return err
			default:
				if ok, reason := cpn.CanUse(time.Now(), amountBefore); !ok {
					warnings = append(warnings, "coupon no longer valid ("+reason+"), full price applied")
				} else {
					appliedCoupon = &cpn
					discount = cpn.CalculateDiscount(amountBefore)
				}
			}
		}

		amountPay := amountBefore.Sub(discount)
		if amountPay.IsNegative() {
			amountPay = decimal.Zero
		}

		var userID *string
		if user != nil {
			userID = &user.ID
		}

		buyOrder := in.BuyOrder
		if buyOrder == "" {
			buyOrder = models.NewBuyOrder(time.Now())
		}

		order = models.Order{
			BuyOrder:              buyOrder,
			UserID:                userID,
			FullName:              in.Contact.FullName,
			Email:                 in.Contact.Email,
			Phone:                 in.Contact.Phone,
			IDNumber:              in.Contact.IDNumber,
			ShippingAddress:       addressText,
			WorkshopID:            workshopID,
			AmountBeforeDiscount:  amountBefore,
			CouponDiscount:        discount,
			AmountPay:             amountPay,
			PaymentMethod:         in.PaymentMethod,
			Status:                status,
			HasInternationalItems: hasInternational,
			Items:                 items,
		}
		if appliedCoupon != nil {
			order.CouponID = &appliedCoupon.ID
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if appliedCoupon != nil {
			if err := models.ConsumeCoupon(tx, appliedCoupon.ID, userID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}

	crt.Clear()
	log.Printf("✅ Order %s created (%s)", order.BuyOrder, order.AmountPay.StringFixed(2))
	return &order, warnings, nil
}

// PlaceOrderHandler finalizes a checkout paid outside the gateway (bank
// transfer). The order starts pending and is confirmed by staff.
func PlaceOrderHandler(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in CheckoutInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		crt, user := SessionCart(c, db, store)
		order, warnings, err := Assemble(db, crt, user, in, models.OrderStatusPending)
		if err != nil {
			status := http.StatusInternalServerError
			message := "Could not complete your order, your cart is preserved"
			if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrNoShippingInfo) {
				status = http.StatusBadRequest
				message = err.Error()
			}
			c.JSON(status, gin.H{"error": message})
			return
		}

		NotifyOrderCreated(db, order)
		c.JSON(http.StatusCreated, gin.H{"order": order, "warnings": warnings})
	}
}

// SessionCart builds the request's cart from the authenticated subject:
// the JWT subject keys the session store, and a matching User row (absent
// for guests) enables the profile mirror.
func SessionCart(c *gin.Context, db *gorm.DB, store cart.Store) (*cart.Cart, *models.User) {
	key := c.GetString("user_id")
	var user models.User
	if err := db.First(&user, "id = ?", key).Error; err != nil {
		return cart.New(db, store, key, nil), nil
	}
	return cart.New(db, store, key, &user), &user
}

func joinLines(parts ...string) string {
	filled := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filled = append(filled, part)
		}
	}
	return strings.Join(filled, "\n")
}
