package paymentControllers

import (
	"sync"
	"time"

	checkoutControllers "github.com/andesmotors/storefront-api/controllers/checkout"
)

// pendingCheckout parks a checkout between transaction create and commit.
// Nothing is written to the database until the gateway authorizes; an
// abandoned payment simply ages out.
type pendingCheckout struct {
	SessionKey string
	BuyOrder   string
	Input      checkoutControllers.CheckoutInput
	CreatedAt  time.Time
}

const pendingTTL = 30 * time.Minute

type pendingStore struct {
	mu      sync.Mutex
	byToken map[string]pendingCheckout
}

func newPendingStore() *pendingStore {
	return &pendingStore{byToken: make(map[string]pendingCheckout)}
}

func (s *pendingStore) Put(token string, p pendingCheckout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = time.Now()
	s.byToken[token] = p
	for t, pending := range s.byToken {
		if time.Since(pending.CreatedAt) > pendingTTL {
			delete(s.byToken, t)
		}
	}
}

// Take removes and returns the pending checkout for a token, if any.
func (s *pendingStore) Take(token string) (pendingCheckout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byToken[token]
	if ok {
		delete(s.byToken, token)
	}
	if ok && time.Since(p.CreatedAt) > pendingTTL {
		return pendingCheckout{}, false
	}
	return p, ok
}
