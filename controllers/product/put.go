package productcontroller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

const uploadDir = "/var/www/storefront/uploads/products"

// UpdateProduct updates an existing product by ID.
// Accepts the same fields as CreateProduct and an optional "image" file.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Preload("Categories").First(&product, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		parseDecimal := func(val string) *decimal.Decimal {
			if val == "" {
				return nil
			}
			if d, err := decimal.NewFromString(val); err == nil {
				return &d
			}
			return nil
		}
		parseInt := func(val string) *int {
			if val == "" {
				return nil
			}
			if i, err := strconv.Atoi(val); err == nil {
				return &i
			}
			return nil
		}

		if v := c.PostForm("name"); v != "" {
			product.Name = v
		}
		if v := c.PostForm("part_number"); v != "" {
			product.PartNumber = v
		}
		if v := c.PostForm("description"); v != "" {
			product.Description = v
		}
		if v := c.PostForm("motor"); v != "" {
			product.Motor = v
		}
		if v := c.PostForm("tariff_code"); v != "" {
			product.TariffCode = v
		}
		if v := parseDecimal(c.PostForm("price")); v != nil {
			product.Price = *v
		}
		if v := parseDecimal(c.PostForm("sale_price")); v != nil {
			product.SalePrice = *v
		}
		if v := parseDecimal(c.PostForm("weight_kg")); v != nil {
			product.WeightKg = *v
		}
		if v := c.PostForm("is_sale"); v != "" {
			product.IsSale = v == "true"
		}
		if v := parseInt(c.PostForm("stock")); v != nil {
			product.Stock = *v
		}
		if v := parseInt(c.PostForm("stock_international")); v != nil {
			product.StockInternational = *v
		}

		if categories, err := resolveCategories(db, c.PostForm("category_ids")); err == nil && categories != nil {
			product.Categories = categories
			if err := db.Model(&product).Association("Categories").Replace(categories); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update categories"})
				return
			}
		}

		// Optional image replacement with a unique filename.
		if file, err := c.FormFile("image"); err == nil {
			if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload folder"})
				return
			}
			ext := filepath.Ext(file.Filename)
			base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
			base = strings.ReplaceAll(base, " ", "_")
			filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
			savePath := filepath.Join(uploadDir, filename)

			if err := c.SaveUploadedFile(file, savePath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
				return
			}
			product.Image = fmt.Sprintf("/uploads/products/%s", filename)
		}

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
