package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/andesmotors/storefront-api/cart"
	"github.com/andesmotors/storefront-api/models"
)

var errAudienceMismatch = errors.New("token audience mismatch")

// GoogleUserLoginHandler verifies a Firebase ID token, upserts the user
// and rebuilds their session cart: the saved profile mirror is replayed
// first, then any guest-session lines are merged on top.
func GoogleUserLoginHandler(w http.ResponseWriter, r *http.Request, db *gorm.DB, store cart.Store) {
	var req struct {
		IDToken string `json:"idToken"`
		GuestID string `json:"guest_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	token, err := verifyIDToken(ctx, req.IDToken)
	if err != nil {
		http.Error(w, "Invalid Firebase ID token", http.StatusUnauthorized)
		return
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	firebaseUserID := token.UID

	var user models.User
	err = db.Where("id = ?", firebaseUserID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			ID:       firebaseUserID,
			Email:    email,
			Name:     name,
			Picture:  picture,
			Provider: "google",
		}
		if err := db.Create(&user).Error; err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
	} else if err == nil {
		db.Model(&user).Updates(models.User{Name: name, Picture: picture})
	} else {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Rebuild the session cart. The saved mirror only fills an empty
	// session so a live session is never clobbered by stale state.
	crt := cart.New(db, store, user.ID, &user)
	if crt.Len() == 0 {
		crt.RestoreSaved()
	}

	mergeStatus := "no-guest-cart"
	if req.GuestID != "" {
		merged, err := mergeGuestCart(db, store, crt, req.GuestID)
		switch {
		case err != nil:
			mergeStatus = "merge-failed"
		case merged:
			mergeStatus = "merged-success"
		default:
			mergeStatus = "guest-cart-empty"
		}
	}

	resp := map[string]interface{}{
		"message":      "Login successful",
		"merge_status": mergeStatus,
		"user":         user,
		"cart_lines":   crt.Len(),
		"token":        issueJWT(email, "user", firebaseUserID, name, picture),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// mergeGuestCart folds a guest session's lines into the user's cart,
// summing quantities, then retires the guest session.
func mergeGuestCart(db *gorm.DB, store cart.Store, crt *cart.Cart, guestID string) (bool, error) {
	var guest models.GuestUser
	if err := db.First(&guest, "id = ?", guestID).Error; err != nil {
		return false, nil
	}
	if guest.Expired(time.Now()) {
		store.Delete(guestID)
		db.Delete(&guest)
		return false, nil
	}

	guestQuantities := cart.New(db, store, guestID, nil).Quantities()
	if len(guestQuantities) == 0 {
		return false, nil
	}

	existing := crt.Quantities()
	for key, quantity := range guestQuantities {
		if _, err := strconv.ParseUint(key, 10, 64); err != nil {
			continue
		}
		var product models.Product
		if err := db.First(&product, "id = ?", key).Error; err != nil {
			continue
		}
		crt.AddOrSet(&product, existing[key]+quantity)
	}

	store.Delete(guestID)
	db.Where("id = ?", guestID).Delete(&models.GuestUser{})
	return true, nil
}

// issueJWT signs the session token carrying the cart key as user_id.
func issueJWT(email, role, userID, name, picture string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"name":    name,
		"picture": picture,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return ""
	}
	return signedToken
}
