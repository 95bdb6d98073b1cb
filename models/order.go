package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // awaiting payment confirmation
	OrderStatusPaid      OrderStatus = "paid"      // payment authorized
	OrderStatusCancelled OrderStatus = "cancelled" // terminal, reachable from pending only
)

// ParseOrderStatus maps a request string onto a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusPaid:
		return OrderStatusPaid, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// CanTransition reports whether the status machine allows the move.
// Legal edges: pending→paid, pending→cancelled.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return s == OrderStatusPending && (to == OrderStatusPaid || to == OrderStatusCancelled)
}

// Order is the immutable checkout snapshot. Everything except Status,
// Shipped/DateShipped and the gateway metadata is frozen at creation;
// the order assembler is the only writer.
type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// BuyOrder is the human-readable reference, generated once at
	// creation and never regenerated.
	BuyOrder string `gorm:"uniqueIndex;size:50" json:"buy_order"`

	UserID *string `gorm:"index" json:"user_id"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	FullName string `gorm:"not null" json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IDNumber string `json:"id_number"`

	// Shipping destination: a free-text home address, or a partner
	// workshop. ShippingAddress holds the workshop address text when
	// WorkshopID is set.
	ShippingAddress string    `gorm:"type:text" json:"shipping_address"`
	WorkshopID      *uint     `json:"workshop_id"`
	Workshop        *Workshop `gorm:"foreignKey:WorkshopID;constraint:OnDelete:SET NULL" json:"workshop,omitempty"`

	AmountBeforeDiscount decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount_before_discount"`
	CouponID             *uint           `json:"coupon_id"`
	Coupon               *Coupon         `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	CouponDiscount       decimal.Decimal `gorm:"type:decimal(10,2)" json:"coupon_discount"`
	AmountPay            decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount_pay"`

	PaymentMethod string      `json:"payment_method"`
	Status        OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`

	Shipped     bool       `json:"shipped"`
	DateShipped *time.Time `json:"date_shipped"`

	HasInternationalItems bool `json:"has_international_items"`

	// Gateway authorization metadata, filled in after commit.
	TransactionDate    *time.Time `json:"transaction_date"`
	AuthorizationCode  string     `json:"authorization_code"`
	PaymentTypeCode    string     `json:"payment_type_code"`
	InstallmentsNumber int        `json:"installments_number"`
	CardNumber         string     `json:"card_number"` // last 4 digits only
	SessionID          string     `json:"session_id"`
	AccountingDate     string     `json:"accounting_date"`
	TransactionStatus  string     `json:"transaction_status"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderItem carries the unit price and fulfillment origin resolved at
// order time, independent of later product changes. Never mutated.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"index" json:"order_id"`
	ProductID uint     `json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	IsInternational bool            `json:"is_international"`
}

// Total is quantity times the frozen unit price.
func (i *OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewBuyOrder generates the order reference, e.g. ORD-20250901-3F2A9C41.
func NewBuyOrder(now time.Time) string {
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// SetShipped flips the shipped flag. The timestamp is stamped exactly on
// the false→true edge and cleared on the way back; repeating the current
// state is a no-op so the date is never backdated.
func SetShipped(db *gorm.DB, orderID uint, shipped bool) error {
	var order Order
	if err := db.First(&order, orderID).Error; err != nil {
		return err
	}
	if order.Shipped == shipped {
		return nil
	}
	updates := map[string]interface{}{"shipped": shipped}
	if shipped {
		now := time.Now()
		updates["date_shipped"] = &now
	} else {
		updates["date_shipped"] = nil
	}
	return db.Model(&order).Updates(updates).Error
}
