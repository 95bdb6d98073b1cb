// Package workshopControllers manages the partner workshops that can be
// picked as an order's shipping destination instead of a home address.
package workshopControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

type workshopInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address1 string `json:"address1" binding:"required"`
	Address2 string `json:"address2"`
	City     string `json:"city" binding:"required"`
	Commune  string `json:"commune"`
	Region   string `json:"region"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
}

// GET /workshops — public list for the checkout destination picker.
func GetAllWorkshops(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var workshops []models.Workshop
		if err := db.Order("name").Find(&workshops).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workshops"})
			return
		}
		c.JSON(http.StatusOK, workshops)
	}
}

// POST /admin/workshops
func CreateWorkshop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input workshopInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		workshop := models.Workshop{
			Name:     input.Name,
			Phone:    input.Phone,
			Email:    input.Email,
			Address1: input.Address1,
			Address2: input.Address2,
			City:     input.City,
			Commune:  input.Commune,
			Region:   input.Region,
			Zipcode:  input.Zipcode,
			Country:  input.Country,
		}
		if err := db.Create(&workshop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workshop"})
			return
		}
		c.JSON(http.StatusCreated, workshop)
	}
}

// PUT /admin/workshops/:id
func UpdateWorkshop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var workshop models.Workshop
		if err := db.First(&workshop, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
			return
		}

		var input workshopInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		workshop.Name = input.Name
		workshop.Phone = input.Phone
		workshop.Email = input.Email
		workshop.Address1 = input.Address1
		workshop.Address2 = input.Address2
		workshop.City = input.City
		workshop.Commune = input.Commune
		workshop.Region = input.Region
		workshop.Zipcode = input.Zipcode
		workshop.Country = input.Country

		if err := db.Save(&workshop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workshop"})
			return
		}
		c.JSON(http.StatusOK, workshop)
	}
}

// DELETE /admin/workshops/:id — existing orders keep their snapshot of
// the workshop address, so deletion is safe for history.
func DeleteWorkshop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.Workshop{}, c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workshop"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Workshop deleted"})
	}
}
