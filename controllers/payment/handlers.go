package paymentControllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	checkoutControllers "github.com/andesmotors/storefront-api/controllers/checkout"
	"github.com/andesmotors/storefront-api/models"
)

var pendings = newPendingStore()

// POST /payment/start — opens a gateway transaction for the session's
// cart and returns the redirect URL. No order exists yet.
func StartPaymentHandler(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input checkoutControllers.CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}
		if (input.Address == nil) == (input.WorkshopID == nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": checkoutControllers.ErrNoShippingInfo.Error()})
			return
		}
		input.PaymentMethod = "webpay"

		crt, _ := checkoutControllers.SessionCart(c, db, store)
		if crt.Len() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": checkoutControllers.ErrEmptyCart.Error()})
			return
		}

		// Charge the previewed amount; the assembler recomputes after
		// authorization and any residual coupon race is logged there.
		amount := crt.Subtotal()
		if input.CouponCode != "" {
			var cpn models.Coupon
			if err := db.Where("code = ?", input.CouponCode).First(&cpn).Error; err == nil {
				if ok, _ := cpn.CanUse(time.Now(), amount); ok {
					amount = amount.Sub(cpn.CalculateDiscount(amount))
				}
			}
		}

		gateway, err := NewWebpayClientFromEnv()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		sessionKey := c.GetString("user_id")
		buyOrder := models.NewBuyOrder(time.Now())

		token, redirectURL, err := gateway.Create(buyOrder, sessionKey, amount)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		input.BuyOrder = buyOrder
		pendings.Put(token, pendingCheckout{
			SessionKey: sessionKey,
			BuyOrder:   buyOrder,
			Input:      input,
		})

		c.JSON(http.StatusOK, gin.H{
			"payment_url": redirectURL,
			"token":       token,
			"buy_order":   buyOrder,
			"amount":      amount,
		})
	}
}

// PaymentReturnHandler receives the buyer back from the gateway. Aborts
// and declines leave no order and keep the cart; only AUTHORIZED commits
// assemble the order, as paid.
func PaymentReturnHandler(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Abort flow: the gateway sends TBK_* fields instead of a token.
		if aborted := firstParam(c, "TBK_TOKEN"); aborted != "" {
			pendings.Take(aborted)
			c.JSON(http.StatusOK, gin.H{
				"status":  "cancelled",
				"message": "Payment cancelled. Your cart is preserved.",
			})
			return
		}

		token := firstParam(c, "token_ws")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing token_ws"})
			return
		}

		gateway, err := NewWebpayClientFromEnv()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		result, err := gateway.Commit(token)
		if err != nil {
			// Nothing was created; the cart survives for a retry.
			pendings.Take(token)
			c.JSON(http.StatusBadGateway, gin.H{
				"status":  "error",
				"message": "Could not confirm your payment. Your cart is preserved.",
			})
			return
		}

		pending, ok := pendings.Take(token)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "no pending checkout for this payment"})
			return
		}

		if !result.Authorized() {
			c.JSON(http.StatusOK, gin.H{
				"status":  "rejected",
				"message": "Your payment was rejected. Your cart is preserved.",
				"detail":  result.Status,
			})
			return
		}

		crt, user := sessionCartByKey(db, store, pending.SessionKey)
		order, warnings, err := checkoutControllers.Assemble(db, crt, user, pending.Input, models.OrderStatusPaid)
		if err != nil {
			log.Printf("❌ Payment %s authorized but order assembly failed: %v", pending.BuyOrder, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Could not complete your order, your cart is preserved",
			})
			return
		}

		applyTransaction(db, order, result, pending.SessionKey)
		checkoutControllers.NotifyOrderCreated(db, order)

		c.JSON(http.StatusOK, gin.H{
			"status":   "authorized",
			"order":    order,
			"warnings": warnings,
		})
	}
}

// applyTransaction copies the gateway authorization metadata onto the
// freshly created order.
func applyTransaction(db *gorm.DB, order *models.Order, result *WebpayCommitResponse, sessionKey string) {
	updates := map[string]interface{}{
		"authorization_code":  result.AuthorizationCode,
		"payment_type_code":   result.PaymentTypeCode,
		"installments_number": result.InstallmentsNum,
		"card_number":         result.CardDetail.CardNumber,
		"session_id":          sessionKey,
		"accounting_date":     result.AccountingDate,
		"transaction_status":  result.Status,
	}
	if parsed, err := time.Parse("2006-01-02T15:04:05", trimTransactionDate(result.TransactionDate)); err == nil {
		updates["transaction_date"] = &parsed
	} else {
		now := time.Now()
		updates["transaction_date"] = &now
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(updates).Error; err != nil {
		log.Printf("❌ Failed to store transaction metadata for order %s: %v", order.BuyOrder, err)
	}
}

func trimTransactionDate(s string) string {
	if len(s) > 19 {
		return s[:19]
	}
	return s
}

func sessionCartByKey(db *gorm.DB, store cart.Store, key string) (*cart.Cart, *models.User) {
	var user models.User
	if err := db.First(&user, "id = ?", key).Error; err != nil {
		return cart.New(db, store, key, nil), nil
	}
	return cart.New(db, store, key, &user), &user
}

func firstParam(c *gin.Context, name string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.PostForm(name)
}
