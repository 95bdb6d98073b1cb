package cart

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/models"
)

func newCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Category{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddUpdateRemove(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	local := seedProduct(t, db, models.Product{
		Name: "Brake pad set", Price: decimal.NewFromInt(300), Stock: 10,
	})
	overseas := seedProduct(t, db, models.Product{
		Name: "Snorkel kit", Price: decimal.NewFromInt(900), Stock: 0, StockInternational: 5,
	})

	crt := New(db, store, "session-1", nil)

	crt.AddOrSet(&local, 2)
	crt.AddOrSet(&overseas, 1)
	assert.Equal(t, 2, crt.Len())

	// AddOrSet overwrites, never increments.
	crt.AddOrSet(&local, 5)
	assert.Equal(t, 5, crt.Quantities()[ProductKey(local.ID)])

	// Update only touches existing lines.
	crt.Update(ProductKey(local.ID), 3)
	assert.Equal(t, 3, crt.Quantities()[ProductKey(local.ID)])
	crt.Update("9999", 7)
	assert.Equal(t, 2, crt.Len())

	// Remove is idempotent.
	crt.Remove(ProductKey(overseas.ID))
	crt.Remove(ProductKey(overseas.ID))
	assert.Equal(t, 1, crt.Len())
}

func TestSubtotalAndFlags(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	onSale := seedProduct(t, db, models.Product{
		Name:  "Shock absorber",
		Price: decimal.NewFromInt(500), IsSale: true, SalePrice: decimal.NewFromInt(450),
		Stock: 10,
	})
	imported := seedProduct(t, db, models.Product{
		Name:  "Diff lock",
		Price: decimal.NewFromInt(1200),
		Stock: 0, StockInternational: 2,
	})

	crt := New(db, store, "session-2", nil)
	crt.AddOrSet(&onSale, 2)
	crt.AddOrSet(&imported, 1)

	// 2×450 + 1×1200, sale price wins while on sale.
	assert.True(t, crt.Subtotal().Equal(decimal.NewFromInt(2100)))

	flags := crt.InternationalFlags()
	assert.False(t, flags[ProductKey(onSale.ID)])
	assert.True(t, flags[ProductKey(imported.ID)])
	assert.True(t, crt.HasInternationalItems())
}

func TestDeletedProductSkippedNotPurged(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	p := seedProduct(t, db, models.Product{
		Name: "Winch", Price: decimal.NewFromInt(700), Stock: 3,
	})

	crt := New(db, store, "session-3", nil)
	crt.AddOrSet(&p, 1)

	require.NoError(t, db.Delete(&models.Product{}, p.ID).Error)

	// The line stays, but resolution and totals skip it.
	assert.Equal(t, 1, crt.Len())
	assert.Empty(t, crt.Products())
	assert.True(t, crt.Subtotal().IsZero())
}

func TestLegacyLineDecoding(t *testing.T) {
	var line Line
	require.NoError(t, json.Unmarshal([]byte(`4`), &line))
	assert.Equal(t, 4, line.Quantity)
	assert.False(t, line.FlagKnown())

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":2,"is_international":true}`), &line))
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.IsInternational)
	assert.True(t, line.FlagKnown())

	// Lines always serialize in the structured form.
	out, err := json.Marshal(NewLine(3, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":3,"is_international":false}`, string(out))
}

func TestMirrorSnapshotAndRestore(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	user := models.User{ID: "user-1", Email: "buyer@example.com"}
	require.NoError(t, db.Create(&user).Error)

	p := seedProduct(t, db, models.Product{
		Name: "Roof rack", Price: decimal.NewFromInt(250), Stock: 8,
	})

	crt := New(db, store, user.ID, &user)
	crt.AddOrSet(&p, 3)

	// Every mutation refreshes the profile mirror.
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	var mirror map[string]int
	require.NoError(t, json.Unmarshal([]byte(reloaded.OldCart), &mirror))
	assert.Equal(t, map[string]int{ProductKey(p.ID): 3}, mirror)

	// Simulate a fresh session: empty store, replay from the mirror.
	fresh := NewMemoryStore(time.Hour)
	restored := New(db, fresh, user.ID, &reloaded)
	restored.RestoreSaved()
	assert.Equal(t, 3, restored.Quantities()[ProductKey(p.ID)])
}

func TestRestoreSavedDiscardsCorruptMirror(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	user := models.User{ID: "user-2", Email: "other@example.com", OldCart: "{not json"}
	require.NoError(t, db.Create(&user).Error)

	crt := New(db, store, user.ID, &user)
	crt.RestoreSaved()

	assert.Equal(t, 0, crt.Len())
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Empty(t, reloaded.OldCart)
}

func TestClearEmptiesStoreAndMirror(t *testing.T) {
	db := newCartTestDB(t)
	store := NewMemoryStore(time.Hour)

	user := models.User{ID: "user-3", Email: "third@example.com"}
	require.NoError(t, db.Create(&user).Error)
	p := seedProduct(t, db, models.Product{
		Name: "Light bar", Price: decimal.NewFromInt(150), Stock: 2,
	})

	crt := New(db, store, user.ID, &user)
	crt.AddOrSet(&p, 1)
	crt.Clear()

	assert.Equal(t, 0, crt.Len())
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Empty(t, reloaded.OldCart)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	store.Save("k", map[string]Line{"1": NewLine(1, false)})
	assert.Len(t, store.Lines("k"), 1)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, store.Lines("k"))
}
