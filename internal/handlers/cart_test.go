package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"phonestore/internal/cart"
)

func newCartTestRouter(guests *cart.GuestStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cart", GetCart(nil, guests))
	r.PUT("/cart/items/:itemId", UpdateCartItem(nil, guests))
	r.DELETE("/cart/items/:itemId", RemoveFromCart(nil, guests))
	r.DELETE("/cart", ClearCart(nil, guests))
	return r
}

func seedGuestCart(t *testing.T, guests *cart.GuestStore, sessionID string, items ...cart.Item) cart.Cart {
	t.Helper()
	state := guests.Load(sessionID)
	for _, item := range items {
		state = cart.AddItem(state, item, time.Now())
	}
	guests.Save(sessionID, state)
	return state
}

func decodeCartResponse(t *testing.T, w *httptest.ResponseRecorder) cart.Cart {
	t.Helper()
	var state cart.Cart
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("could not decode cart response: %v (body: %s)", err, w.Body.String())
	}
	return state
}

func TestGetCartRequiresSessionOrToken(t *testing.T) {
	r := newCartTestRouter(cart.NewGuestStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header, got %d", w.Code)
	}
}

func TestGetCartCreatesEmptyGuestCart(t *testing.T) {
	r := newCartTestRouter(cart.NewGuestStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(SessionHeader, "session-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	state := decodeCartResponse(t, w)
	if state.ID == "" {
		t.Fatal("expected a generated cart id")
	}
	if len(state.Items) != 0 || state.Total != 0 || state.ItemCount != 0 {
		t.Fatalf("expected an empty cart, got %+v", state)
	}
}

func TestUpdateCartItemSetsQuantity(t *testing.T) {
	guests := cart.NewGuestStore()
	item := cart.Item{
		ID:        cart.VariantKey("p1", "black", "256gb"),
		ProductID: "p1",
		Name:      "iPhone 15",
		UnitPrice: 19990000,
		Quantity:  2,
	}
	seedGuestCart(t, guests, "session-1", item)

	r := newCartTestRouter(guests)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/"+item.ID, strings.NewReader(`{"quantity":5}`))
	req.Header.Set(SessionHeader, "session-1")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	state := decodeCartResponse(t, w)
	if len(state.Items) != 1 || state.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity set to 5, got %+v", state.Items)
	}
	if state.Total != 5*19990000 || state.ItemCount != 5 {
		t.Fatalf("expected recomputed totals, got total=%v itemCount=%d", state.Total, state.ItemCount)
	}
}

func TestUpdateCartItemZeroQuantityRemovesLine(t *testing.T) {
	guests := cart.NewGuestStore()
	item := cart.Item{
		ID:        cart.VariantKey("p1", "", ""),
		ProductID: "p1",
		Name:      "Galaxy S24",
		UnitPrice: 22990000,
		Quantity:  1,
	}
	seedGuestCart(t, guests, "session-1", item)

	r := newCartTestRouter(guests)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/"+item.ID, strings.NewReader(`{"quantity":0}`))
	req.Header.Set(SessionHeader, "session-1")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	state := decodeCartResponse(t, w)
	if len(state.Items) != 0 {
		t.Fatalf("expected line removed at quantity 0, got %+v", state.Items)
	}
}

func TestUpdateCartItemUnknownIDReturns404(t *testing.T) {
	guests := cart.NewGuestStore()
	seedGuestCart(t, guests, "session-1")

	r := newCartTestRouter(guests)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/nope", strings.NewReader(`{"quantity":3}`))
	req.Header.Set(SessionHeader, "session-1")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown item, got %d", w.Code)
	}
}

func TestRemoveFromCartDeletesSingleLine(t *testing.T) {
	guests := cart.NewGuestStore()
	keep := cart.Item{ID: cart.VariantKey("p1", "", ""), ProductID: "p1", UnitPrice: 19990000, Quantity: 1}
	drop := cart.Item{ID: cart.VariantKey("p2", "", ""), ProductID: "p2", UnitPrice: 22990000, Quantity: 2}
	seedGuestCart(t, guests, "session-1", keep, drop)

	r := newCartTestRouter(guests)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/"+drop.ID, nil)
	req.Header.Set(SessionHeader, "session-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	state := decodeCartResponse(t, w)
	if len(state.Items) != 1 || state.Items[0].ID != keep.ID {
		t.Fatalf("expected only %s to remain, got %+v", keep.ID, state.Items)
	}
	if state.Total != 19990000 || state.ItemCount != 1 {
		t.Fatalf("expected recomputed totals, got total=%v itemCount=%d", state.Total, state.ItemCount)
	}
}

func TestClearCartKeepsIdentity(t *testing.T) {
	guests := cart.NewGuestStore()
	item := cart.Item{ID: cart.VariantKey("p1", "", ""), ProductID: "p1", UnitPrice: 19990000, Quantity: 3}
	before := seedGuestCart(t, guests, "session-1", item)

	r := newCartTestRouter(guests)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	req.Header.Set(SessionHeader, "session-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	state := decodeCartResponse(t, w)
	if state.ID != before.ID {
		t.Fatalf("expected cart id %s to survive clear, got %s", before.ID, state.ID)
	}
	if len(state.Items) != 0 || state.Total != 0 || state.ItemCount != 0 {
		t.Fatalf("expected emptied cart, got %+v", state)
	}
}
