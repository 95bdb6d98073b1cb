package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

// MaxQuantityPerProduct caps a single cart line, on top of whatever the
// fulfilling origin has in stock.
const MaxQuantityPerProduct = 10

type cartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func sessionCart(c *gin.Context, db *gorm.DB, store cart.Store) *cart.Cart {
	key := c.GetString("user_id")
	var user models.User
	if err := db.First(&user, "id = ?", key).Error; err != nil {
		return cart.New(db, store, key, nil)
	}
	return cart.New(db, store, key, &user)
}

type summaryLine struct {
	Product         models.Product `json:"product"`
	Quantity        int            `json:"quantity"`
	IsInternational bool           `json:"is_international"`
	MaxQuantity     int            `json:"max_quantity"`
}

// GET /user/cart
func GetCartSummary(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt := sessionCart(c, db, store)

		quantities := crt.Quantities()
		flags := crt.InternationalFlags()

		lines := []summaryLine{}
		for _, product := range crt.Products() {
			key := cart.ProductKey(product.ID)
			lines = append(lines, summaryLine{
				Product:         product,
				Quantity:        quantities[key],
				IsInternational: flags[key],
				MaxQuantity:     product.MaxOrderQuantity(MaxQuantityPerProduct),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"lines":             lines,
			"line_count":        crt.Len(),
			"has_international": crt.HasInternationalItems(),
			"subtotal":          crt.Subtotal(),
		})
	}
}

// POST /user/cart
func AddCartItem(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input cartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			status := http.StatusInternalServerError
			message := "Failed to validate product"
			if err == gorm.ErrRecordNotFound {
				status = http.StatusBadRequest
				message = "Product does not exist"
			}
			c.JSON(status, gin.H{"error": message})
			return
		}

		if !product.Purchasable() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
			return
		}

		quantity := input.Quantity
		if max := product.MaxOrderQuantity(MaxQuantityPerProduct); quantity > max {
			quantity = max
		}

		crt := sessionCart(c, db, store)
		crt.AddOrSet(&product, quantity)

		c.JSON(http.StatusOK, gin.H{"quantity": crt.Len()})
	}
}

// PUT /user/cart/:product_id
func UpdateCartItem(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("product_id")
		quantity, err := strconv.Atoi(c.Query("quantity"))
		if err != nil || quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
			return
		}
		if quantity > MaxQuantityPerProduct {
			quantity = MaxQuantityPerProduct
		}

		crt := sessionCart(c, db, store)
		crt.Update(productID, quantity)

		c.JSON(http.StatusOK, gin.H{"product_id": productID, "quantity": quantity})
	}
}

// DELETE /user/cart/:product_id
func DeleteCartItem(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("product_id")

		crt := sessionCart(c, db, store)
		crt.Remove(productID)

		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearCart(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt := sessionCart(c, db, store)
		crt.Clear()
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /admin/user-cart/:user_id
func GetAdminUserCart(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		crt := cart.New(db, store, userID, &user)
		c.JSON(http.StatusOK, gin.H{
			"quantities": crt.Quantities(),
			"subtotal":   crt.Subtotal(),
		})
	}
}
