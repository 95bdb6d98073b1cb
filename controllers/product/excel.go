package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

// ImportProductsFromExcel bulk-creates or updates products from a
// spreadsheet. Column order matches the export: ID, Name, PartNumber,
// Description, Price, IsSale, SalePrice, Stock, StockInternational,
// WeightKg, Motor, TariffCode, Image, CategoryIDs.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			partNumber := get(2)
			description := get(3)
			price, err1 := decimal.NewFromString(get(4))
			isSale := get(5) == "true" || get(5) == "1"
			salePrice, _ := decimal.NewFromString(get(6))
			stock, _ := strconv.Atoi(get(7))
			stockInternational, _ := strconv.Atoi(get(8))
			weight, _ := decimal.NewFromString(get(9))
			motor := get(10)
			tariffCode := get(11)
			image := get(12)
			categoryIDStr := get(13)

			if name == "" || err1 != nil {
				skippedCount++
				continue
			}

			var categories []models.Category
			for _, part := range strings.Split(categoryIDStr, ",") {
				if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
					categories = append(categories, models.Category{ID: uint(id)})
				}
			}

			product := models.Product{
				Name:               name,
				PartNumber:         partNumber,
				Description:        description,
				Price:              price,
				IsSale:             isSale,
				SalePrice:          salePrice,
				Stock:              stock,
				StockInternational: stockInternational,
				WeightKg:           weight,
				Motor:              motor,
				TariffCode:         tariffCode,
				Image:              image,
				Categories:         categories,
			}

			if idStr != "" {
				if id, err := strconv.Atoi(idStr); err == nil {
					var existing models.Product
					if err := db.Preload("Categories").First(&existing, id).Error; err == nil {
						existing.Name = product.Name
						existing.PartNumber = product.PartNumber
						existing.Description = product.Description
						existing.Price = product.Price
						existing.IsSale = product.IsSale
						existing.SalePrice = product.SalePrice
						existing.Stock = product.Stock
						existing.StockInternational = product.StockInternational
						existing.WeightKg = product.WeightKg
						existing.Motor = product.Motor
						existing.TariffCode = product.TariffCode
						existing.Image = product.Image

						if err := db.Model(&existing).Association("Categories").Replace(categories); err != nil {
							skippedCount++
							continue
						}
						if err := db.Save(&existing).Error; err == nil {
							updatedCount++
							continue
						}
					}
				}
			}

			if err := db.Create(&product).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
