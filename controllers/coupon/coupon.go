// Package couponControllers exposes coupon preview and admin CRUD.
// Validation here is read-only; consumption happens only inside the order
// assembler's transaction.
package couponControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

type validateCouponInput struct {
	Code string `json:"code" binding:"required"`
}

// POST /user/coupon/validate — previews a coupon against the current cart
// subtotal. Never mutates the coupon.
func ValidateCoupon(db *gorm.DB, store cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input validateCouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		key := c.GetString("user_id")
		var user *models.User
		var u models.User
		if err := db.First(&u, "id = ?", key).Error; err == nil {
			user = &u
		}
		subtotal := cart.New(db, store, key, user).Subtotal()

		var cpn models.Coupon
		err := db.Where("code = ?", strings.TrimSpace(input.Code)).First(&cpn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "invalid coupon"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up coupon"})
			return
		}

		ok, reason := cpn.CanUse(time.Now(), subtotal)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"valid": false, "reason": reason})
			return
		}

		discount := cpn.CalculateDiscount(subtotal)
		c.JSON(http.StatusOK, gin.H{
			"valid":    true,
			"code":     cpn.Code,
			"discount": discount,
			"total":    subtotal.Sub(discount),
		})
	}
}

// ---- Admin CRUD ----

type couponInput struct {
	Code          string     `json:"code" binding:"required"`
	DiscountType  string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue string     `json:"discount_value" binding:"required"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	MinimumAmount string     `json:"minimum_amount"`
	MaxUses       *int       `json:"max_uses"`
	IsActive      *bool      `json:"is_active"`
}

// POST /admin/coupons
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input couponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cpn, err := couponFromInput(input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := db.Create(cpn).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
			return
		}
		c.JSON(http.StatusCreated, cpn)
	}
}

// GET /admin/coupons
func GetAllCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// GET /admin/coupons/:id/usages
func GetCouponUsages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var usages []models.CouponUsage
		if err := db.Where("coupon_id = ?", c.Param("id")).
			Order("used_at DESC").Find(&usages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupon usages"})
			return
		}
		c.JSON(http.StatusOK, usages)
	}
}

// DELETE /admin/coupons/:id — deactivates; usage history stays.
func DeactivateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Model(&models.Coupon{}).Where("id = ?", c.Param("id")).
			Update("is_active", false)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate coupon"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
	}
}

func couponFromInput(input couponInput) (*models.Coupon, error) {
	value, err := decimalField(input.DiscountValue)
	if err != nil {
		return nil, errors.New("discount_value must be a decimal number")
	}
	minimum, err := decimalField(input.MinimumAmount)
	if err != nil {
		return nil, errors.New("minimum_amount must be a decimal number")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	return &models.Coupon{
		Code:          strings.TrimSpace(input.Code),
		DiscountType:  models.DiscountType(input.DiscountType),
		DiscountValue: value,
		ValidFrom:     input.ValidFrom,
		ValidUntil:    input.ValidUntil,
		MinimumAmount: minimum,
		MaxUses:       input.MaxUses,
		IsActive:      active,
	}, nil
}
