package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	adminController "github.com/andesmotors/storefront-api/controllers/admin"
	cartControllers "github.com/andesmotors/storefront-api/controllers/cart"
	couponControllers "github.com/andesmotors/storefront-api/controllers/coupon"
	productcontroller "github.com/andesmotors/storefront-api/controllers/product"
	userControllers "github.com/andesmotors/storefront-api/controllers/user"
	workshopControllers "github.com/andesmotors/storefront-api/controllers/workshop"
	"github.com/andesmotors/storefront-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, store cart.Store) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(db))
		adminGroup.POST("/admins/approve", adminController.ApproveAdmin(db))
		adminGroup.POST("/admins/remove", adminController.RemoveAdmin(db))
		adminGroup.GET("/users", userControllers.GetAllUsers(db))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(db))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(db))
			productAdmin.GET("", productcontroller.GetProducts(db))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(db))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(db))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(db))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(db))
			categoryAdmin.GET("", productcontroller.GetAllCategories(db))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(db))
		}

		// ─────────── Coupon Management ───────────
		couponAdmin := adminGroup.Group("/coupons")
		{
			couponAdmin.POST("", couponControllers.CreateCoupon(db))
			couponAdmin.GET("", couponControllers.GetAllCoupons(db))
			couponAdmin.GET("/:id/usages", couponControllers.GetCouponUsages(db))
			couponAdmin.DELETE("/:id", couponControllers.DeactivateCoupon(db))
		}

		// ─────────── Workshop Management ───────────
		workshopAdmin := adminGroup.Group("/workshops")
		{
			workshopAdmin.POST("", workshopControllers.CreateWorkshop(db))
			workshopAdmin.GET("", workshopControllers.GetAllWorkshops(db))
			workshopAdmin.PUT("/:id", workshopControllers.UpdateWorkshop(db))
			workshopAdmin.DELETE("/:id", workshopControllers.DeleteWorkshop(db))
		}

		// ─────────── Support: inspect a user's live cart ───────────
		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", cartControllers.GetAdminUserCart(db, store))
		}
	}
}
