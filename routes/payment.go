package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	paymentControllers "github.com/andesmotors/storefront-api/controllers/payment"
	"github.com/andesmotors/storefront-api/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, store cart.Store) {
	payment := r.Group("/payment")
	{
		// Opens the gateway transaction for the session's cart
		payment.POST("/start", middleware.ValidateToken, paymentControllers.StartPaymentHandler(db, store))

		// Gateway redirects the buyer here after the payment attempt;
		// no JWT, the gateway token identifies the pending checkout.
		payment.GET("/return", paymentControllers.PaymentReturnHandler(db, store))
		payment.POST("/return", paymentControllers.PaymentReturnHandler(db, store))
	}
}
