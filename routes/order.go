package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	orderControllers "github.com/andesmotors/storefront-api/controllers/order"
	"github.com/andesmotors/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, store cart.Store) {
	orders := r.Group("/orders")
	{
		// Dashboard feed: pushes every new order as it is created
		orders.GET("/ws/orders", orderControllers.OrderWebSocketHandler)

		// Authenticated buyer: own order history
		orders.GET("/mine", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(db))

		// Staff endpoints
		staff := orders.Group("")
		staff.Use(middleware.ValidateAPIKey)
		{
			staff.GET("/", orderControllers.GetAllOrdersHandler(db))
			staff.GET("/user/:userID", orderControllers.GetUserOrdersHandler(db))
			staff.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
			staff.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
			staff.PUT("/:orderID/shipped", orderControllers.UpdateShippedHandler(db))
			staff.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db))
		}
	}
}
