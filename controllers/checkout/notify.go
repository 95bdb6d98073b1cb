package checkoutControllers

import (
	"log"

	"gorm.io/gorm"

	orderControllers "github.com/andesmotors/storefront-api/controllers/order"
	"github.com/andesmotors/storefront-api/emails"
	"github.com/andesmotors/storefront-api/models"
)

// NotifyOrderCreated pushes the new order to the dashboard feed and, once
// paid, mails the confirmation. Both are fire-and-forget; a failure here
// never unwinds the order.
func NotifyOrderCreated(db *gorm.DB, order *models.Order) {
	var full models.Order
	if err := db.Preload("Items").Preload("Items.Product").First(&full, order.ID).Error; err != nil {
		log.Printf("❌ Failed to load order %d for notification: %v", order.ID, err)
		return
	}

	orderControllers.BroadcastNewOrder(full)

	if full.Status == models.OrderStatusPaid {
		emails.SendOrderConfirmationAsync(&full)
	}
}
