package cartControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, cart.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Category{}))

	store := cart.NewMemoryStore(time.Hour)

	r := gin.New()
	// Stands in for the JWT middleware.
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "session-test")
	})
	r.GET("/cart", GetCartSummary(db, store))
	r.POST("/cart", AddCartItem(db, store))
	r.PUT("/cart/:product_id", UpdateCartItem(db, store))
	r.DELETE("/cart/:product_id", DeleteCartItem(db, store))
	r.DELETE("/cart", ClearCart(db, store))
	return r, db, store
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddCartItemClampsQuantity(t *testing.T) {
	r, db, store := newTestRouter(t)

	p := models.Product{Name: "Brake pad set", Price: decimal.NewFromInt(300), Stock: 100}
	require.NoError(t, db.Create(&p).Error)

	w := postJSON(r, "/cart", gin.H{"product_id": p.ID, "quantity": 25})
	assert.Equal(t, http.StatusOK, w.Code)

	crt := cart.New(db, store, "session-test", nil)
	assert.Equal(t, MaxQuantityPerProduct, crt.Quantities()[cart.ProductKey(p.ID)])
}

func TestAddCartItemRejectsUnknownAndOutOfStock(t *testing.T) {
	r, db, _ := newTestRouter(t)

	w := postJSON(r, "/cart", gin.H{"product_id": 9999, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	dead := models.Product{Name: "Discontinued", Price: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&dead).Error)
	w = postJSON(r, "/cart", gin.H{"product_id": dead.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartSummaryRoundTrip(t *testing.T) {
	r, db, _ := newTestRouter(t)

	p := models.Product{
		Name:  "Snorkel kit",
		Price: decimal.NewFromInt(900),
		Stock: 0, StockInternational: 5,
	}
	require.NoError(t, db.Create(&p).Error)

	require.Equal(t, http.StatusOK, postJSON(r, "/cart", gin.H{"product_id": p.ID, "quantity": 2}).Code)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		LineCount        int             `json:"line_count"`
		HasInternational bool            `json:"has_international"`
		Subtotal         decimal.Decimal `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.LineCount)
	assert.True(t, resp.HasInternational)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(1800)))
}

func TestUpdateDeleteClear(t *testing.T) {
	r, db, store := newTestRouter(t)

	p := models.Product{Name: "Roof rack", Price: decimal.NewFromInt(250), Stock: 9}
	require.NoError(t, db.Create(&p).Error)
	key := cart.ProductKey(p.ID)

	require.Equal(t, http.StatusOK, postJSON(r, "/cart", gin.H{"product_id": p.ID, "quantity": 2}).Code)

	// Update quantity via PUT.
	req := httptest.NewRequest(http.MethodPut, "/cart/"+key+"?quantity=4", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	crt := cart.New(db, store, "session-test", nil)
	assert.Equal(t, 4, crt.Quantities()[key])

	// Delete the line.
	req = httptest.NewRequest(http.MethodDelete, "/cart/"+key, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, crt.Len())

	// Clearing an already empty cart is fine.
	req = httptest.NewRequest(http.MethodDelete, "/cart", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
