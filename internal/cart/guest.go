package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// GuestOwnerPrefix marks cart owners that are anonymous sessions rather than
// user ids.
const GuestOwnerPrefix = "guest:"

// GuestStore keeps guest carts in process memory only. Carts are keyed by
// session id and are lost on restart, matching the anonymous-session model.
type GuestStore struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewGuestStore() *GuestStore {
	return &GuestStore{carts: make(map[string]Cart)}
}

// Load returns the cart for the session, creating an empty one on first
// access.
func (s *GuestStore) Load(sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[sessionID]; ok {
		return c
	}

	c := New(uuid.NewString(), GuestOwnerPrefix+sessionID, time.Now())
	s.carts[sessionID] = c
	return c
}

// Save replaces the stored cart for the session.
func (s *GuestStore) Save(sessionID string, c Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = c
}

// Drop removes the session's cart, e.g. after it was merged into a user cart.
func (s *GuestStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
