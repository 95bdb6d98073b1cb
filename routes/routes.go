package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
)

// SetupRoutes wires up the Auth, User, Admin, Order and Payment route
// groups. The shared cart.Store backs every session cart in the process.
func SetupRoutes(r *gin.Engine, db *gorm.DB, store cart.Store) {
	// 1️⃣ Public Auth routes (no middleware)
	SetupAuthRoutes(r, db, store)

	// 2️⃣ User routes (JWT-protected)
	SetupUserRoutes(r, db, store)

	// 3️⃣ Admin routes (API-Key-protected)
	SetupAdminRoutes(r, db, store)

	// Order management + dashboard feed
	SetupOrderRoutes(r, db, store)

	// Webpay payment sequencing
	SetupPaymentRoutes(r, db, store)
}
