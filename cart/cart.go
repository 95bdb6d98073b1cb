// Package cart implements the per-session shopping cart: a keyed set of
// product lines persisted in a Store, mirrored best-effort into the
// authenticated user's profile for cross-session recovery.
package cart

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

// Cart binds one session's lines to the product catalog. All mutations
// write through to the Store and refresh the profile mirror when the
// session belongs to an authenticated user.
type Cart struct {
	db    *gorm.DB
	store Store
	key   string
	user  *models.User // nil for guests
}

func New(db *gorm.DB, store Store, key string, user *models.User) *Cart {
	return &Cart{db: db, store: store, key: key, user: user}
}

// AddOrSet upserts the line for a product, overwriting (not incrementing)
// the stored quantity. The fulfillment origin is re-resolved from current
// stock at write time.
func (c *Cart) AddOrSet(product *models.Product, quantity int) {
	lines := c.store.Lines(c.key)
	lines[ProductKey(product.ID)] = NewLine(quantity, product.IsInternationalPurchase())
	c.store.Save(c.key, lines)
	c.snapshot(lines)
}

// Update overwrites the quantity of an existing line, preserving its
// stored origin flag. Unknown product ids are ignored.
func (c *Cart) Update(productID string, quantity int) {
	lines := c.store.Lines(c.key)
	line, ok := lines[productID]
	if !ok {
		return
	}
	line.Quantity = quantity
	lines[productID] = line
	c.store.Save(c.key, lines)
	c.snapshot(lines)
}

// Remove deletes the line if present. Idempotent.
func (c *Cart) Remove(productID string) {
	lines := c.store.Lines(c.key)
	if _, ok := lines[productID]; ok {
		delete(lines, productID)
	}
	c.store.Save(c.key, lines)
	c.snapshot(lines)
}

// Len is the number of distinct product lines, not total units.
func (c *Cart) Len() int {
	return len(c.store.Lines(c.key))
}

// Products resolves the cart's product ids against the catalog. Lines
// referencing deleted products are silently excluded from the result but
// deliberately not removed from the cart.
func (c *Cart) Products() []models.Product {
	lines := c.store.Lines(c.key)
	if len(lines) == 0 {
		return nil
	}
	ids := make([]string, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	var products []models.Product
	if err := c.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		log.Printf("❌ Failed to resolve cart products: %v", err)
		return nil
	}
	return products
}

// Quantities returns product id → quantity for every line, legacy and
// current encodings alike.
func (c *Cart) Quantities() map[string]int {
	lines := c.store.Lines(c.key)
	quantities := make(map[string]int, len(lines))
	for id, line := range lines {
		quantities[id] = line.Quantity
	}
	return quantities
}

// InternationalFlags returns product id → origin flag. Legacy lines carry
// no stored flag, so theirs is re-resolved from current stock; unresolvable
// products count as local.
func (c *Cart) InternationalFlags() map[string]bool {
	lines := c.store.Lines(c.key)
	flags := make(map[string]bool, len(lines))
	for id, line := range lines {
		if line.FlagKnown() {
			flags[id] = line.IsInternational
			continue
		}
		var product models.Product
		if err := c.db.First(&product, "id = ?", id).Error; err != nil {
			flags[id] = false
			continue
		}
		flags[id] = product.IsInternationalPurchase()
	}
	return flags
}

// HasInternationalItems reports whether any line ships internationally.
func (c *Cart) HasInternationalItems() bool {
	for _, international := range c.InternationalFlags() {
		if international {
			return true
		}
	}
	return false
}

// Subtotal sums unit price (sale-aware) times quantity across all lines,
// skipping lines whose product no longer resolves.
func (c *Cart) Subtotal() decimal.Decimal {
	quantities := c.Quantities()
	total := decimal.Zero
	for _, product := range c.Products() {
		quantity, ok := quantities[ProductKey(product.ID)]
		if !ok {
			continue
		}
		total = total.Add(product.UnitPrice().Mul(decimal.NewFromInt(int64(quantity))))
	}
	return total
}

// Clear empties the session cart and its persisted mirror.
func (c *Cart) Clear() {
	c.store.Delete(c.key)
	if c.user != nil {
		if err := c.db.Model(&models.User{}).Where("id = ?", c.user.ID).
			Update("old_cart", "").Error; err != nil {
			log.Printf("❌ Failed to clear cart mirror for user %s: %v", c.user.ID, err)
		}
	}
}

// RestoreSaved replays the profile mirror into the session cart at login.
// Quantities only; origin flags are re-resolved fresh. Malformed mirrors
// are treated as empty and cleared, never surfaced as a failure.
func (c *Cart) RestoreSaved() {
	if c.user == nil || c.user.OldCart == "" {
		return
	}
	var saved map[string]int
	if err := json.Unmarshal([]byte(c.user.OldCart), &saved); err != nil {
		log.Printf("⚠️ Corrupt cart mirror for user %s, discarding", c.user.ID)
		if err := c.db.Model(&models.User{}).Where("id = ?", c.user.ID).
			Update("old_cart", "").Error; err != nil {
			log.Printf("❌ Failed to clear corrupt cart mirror: %v", err)
		}
		return
	}
	for id, quantity := range saved {
		if quantity < 1 {
			continue
		}
		var product models.Product
		if err := c.db.First(&product, "id = ?", id).Error; err != nil {
			continue
		}
		c.AddOrSet(&product, quantity)
	}
}

// snapshot mirrors the cart into the user's profile as
// {"product_id": quantity} JSON. Best-effort; cart correctness never
// depends on it.
func (c *Cart) snapshot(lines map[string]Line) {
	if c.user == nil {
		return
	}
	quantities := make(map[string]int, len(lines))
	for id, line := range lines {
		quantities[id] = line.Quantity
	}
	mirror, err := json.Marshal(quantities)
	if err != nil {
		return
	}
	if err := c.db.Model(&models.User{}).Where("id = ?", c.user.ID).
		Update("old_cart", string(mirror)).Error; err != nil {
		log.Printf("❌ Failed to mirror cart for user %s: %v", c.user.ID, err)
	}
}

// ProductKey formats a product id the way cart lines are keyed.
func ProductKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
