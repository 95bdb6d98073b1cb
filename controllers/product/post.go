package productcontroller

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

// CreateProduct creates a new product with categories + image upload.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		priceStr := c.PostForm("price")
		if name == "" || priceStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}

		salePrice := decimal.Zero
		if v := c.PostForm("sale_price"); v != "" {
			if salePrice, err = decimal.NewFromString(v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale_price"})
				return
			}
		}
		weight := decimal.Zero
		if v := c.PostForm("weight_kg"); v != "" {
			if weight, err = decimal.NewFromString(v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight_kg"})
				return
			}
		}

		isSale := c.PostForm("is_sale") == "true"
		stock, _ := strconv.Atoi(c.PostForm("stock"))
		stockInternational, _ := strconv.Atoi(c.PostForm("stock_international"))

		categories, err := resolveCategories(db, c.PostForm("category_ids"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Image upload
		var imageURL string
		if file, err := c.FormFile("image"); err == nil {
			imageURL, err = saveProductImage(c, file)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to save image: %v", err)})
				return
			}
		}

		newProduct := models.Product{
			Name:               name,
			PartNumber:         c.PostForm("part_number"),
			Description:        c.PostForm("description"),
			Price:              price,
			IsSale:             isSale,
			SalePrice:          salePrice,
			Stock:              stock,
			StockInternational: stockInternational,
			WeightKg:           weight,
			Motor:              c.PostForm("motor"),
			TariffCode:         c.PostForm("tariff_code"),
			Image:              imageURL,
			Categories:         categories,
		}

		if err := db.Create(&newProduct).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, newProduct)
	}
}

func resolveCategories(db *gorm.DB, idsStr string) ([]models.Category, error) {
	if idsStr == "" {
		return nil, nil
	}
	var parsedIDs []uint
	for _, tok := range strings.Split(idsStr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id64, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("Invalid category_ids format")
		}
		parsedIDs = append(parsedIDs, uint(id64))
	}
	if len(parsedIDs) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := db.Where("id IN ?", parsedIDs).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch categories")
	}
	return categories, nil
}

func saveProductImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		return "", err
	}
	filename := strings.ReplaceAll(file.Filename, " ", "_")
	savePath := filepath.Join(uploadDir, filename)
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		return "", err
	}
	return fmt.Sprintf("/uploads/products/%s", filename), nil
}
