package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	cartControllers "github.com/andesmotors/storefront-api/controllers/cart"
	checkoutControllers "github.com/andesmotors/storefront-api/controllers/checkout"
	couponControllers "github.com/andesmotors/storefront-api/controllers/coupon"
	productControllers "github.com/andesmotors/storefront-api/controllers/product"
	userControllers "github.com/andesmotors/storefront-api/controllers/user"
	workshopControllers "github.com/andesmotors/storefront-api/controllers/workshop"
	"github.com/andesmotors/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, store cart.Store) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(db))    // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(db)) // PUT /user/

		// ──────────────── Session Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCartSummary(db, store))               // GET /user/cart
			cartGroup.POST("/", cartControllers.AddCartItem(db, store))                 // POST /user/cart
			cartGroup.PUT("/:product_id", cartControllers.UpdateCartItem(db, store))    // PUT /user/cart/:product_id
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(db, store)) // DELETE /user/cart/:product_id
			cartGroup.DELETE("/", cartControllers.ClearCart(db, store))                 // DELETE /user/cart
		}

		// ──────────────── Coupon Preview ────────────────
		userGroup.POST("/coupon/validate", couponControllers.ValidateCoupon(db, store))

		// ──────────────── Checkout (bank transfer) ────────────────
		userGroup.POST("/checkout", checkoutControllers.PlaceOrderHandler(db, store))

		// ──────────────── Browse Catalog ────────────────
		userGroup.GET("/products", productControllers.GetProducts(db))          // GET /user/products
		userGroup.GET("/products/:id", productControllers.GetProductByID(db))   // GET /user/products/:id
		userGroup.GET("/categories", productControllers.GetAllCategories(db))   // GET /user/categories
		userGroup.GET("/categories/:id", productControllers.GetCategoryByID(db))

		// ──────────────── Workshops ────────────────
		userGroup.GET("/workshops", workshopControllers.GetAllWorkshops(db))
	}
}
