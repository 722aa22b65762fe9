package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"phonestore/internal/cart"
	"phonestore/internal/models"
)

// SessionHeader carries the anonymous session id for guest carts.
const SessionHeader = "X-Session-Id"

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Storage   string `json:"storage"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// cartAccess resolves the caller to either the remote user cart or the
// in-memory guest cart. The two paths share the pure cart operations and
// differ only in load/save.
type cartAccess struct {
	load func(ctx context.Context) (cart.Cart, error)
	save func(ctx context.Context, c cart.Cart) error
}

func resolveCartAccess(c *gin.Context, store *cart.Store, guests *cart.GuestStore) (cartAccess, bool) {
	if userIDValue, ok := c.Get("userId"); ok {
		userID := userIDValue.(primitive.ObjectID)
		ownerID := userID.Hex()
		return cartAccess{
			load: func(ctx context.Context) (cart.Cart, error) {
				return store.Load(ctx, ownerID)
			},
			save: func(ctx context.Context, state cart.Cart) error {
				return store.Save(ctx, state)
			},
		}, true
	}

	sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session: provide a bearer token or " + SessionHeader})
		return cartAccess{}, false
	}

	return cartAccess{
		load: func(ctx context.Context) (cart.Cart, error) {
			return guests.Load(sessionID), nil
		},
		save: func(ctx context.Context, state cart.Cart) error {
			guests.Save(sessionID, state)
			return nil
		},
	}, true
}

/*
GET /cart
*/
func GetCart(store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		c.JSON(http.StatusOK, state)
	}
}

/*
POST /cart/items
- merges by variant key; quantity increments on repeat, price captured now
*/
func AddToCart(db *mongo.Database, store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be greater than zero")
			return
		}

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isActive":  bson.M{"$ne": false},
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		state = cart.AddItem(state, cartItemFromProduct(product, quantity, req.Color, req.Storage), time.Now())

		if err := access.save(ctx, state); err != nil {
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not save cart")
			return
		}

		log.Printf("[%s] cart %s now has %d items", route, state.ID, state.ItemCount)
		c.JSON(http.StatusOK, state)
	}
}

/*
PUT /cart/items/:itemId
- sets (not increments) the quantity; zero or less removes the line
*/
func UpdateCartItem(store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:itemId"
		defer handlePanic(c, route)

		itemID := strings.TrimSpace(c.Param("itemId"))
		if itemID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		if _, found := cart.FindItem(state, itemID); !found {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		state = cart.SetQuantity(state, itemID, *req.Quantity, time.Now())

		if err := access.save(ctx, state); err != nil {
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not save cart")
			return
		}

		c.JSON(http.StatusOK, state)
	}
}

/*
DELETE /cart/items/:itemId
*/
func RemoveFromCart(store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:itemId"
		defer handlePanic(c, route)

		itemID := strings.TrimSpace(c.Param("itemId"))
		if itemID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid item id")
			return
		}

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		if _, found := cart.FindItem(state, itemID); !found {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		state = cart.RemoveItem(state, itemID, time.Now())

		if err := access.save(ctx, state); err != nil {
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not save cart")
			return
		}

		c.JSON(http.StatusOK, state)
	}
}

/*
DELETE /cart
- empties the cart; id and owner are preserved
*/
func ClearCart(store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		state = cart.Clear(state, time.Now())

		if err := access.save(ctx, state); err != nil {
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not save cart")
			return
		}

		c.JSON(http.StatusOK, state)
	}
}

/*
POST /cart/merge
- folds the guest session cart into the authenticated user's cart, then
  drops the guest copy; requires both a bearer token and the session header
*/
func MergeCart(store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/merge"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sessionID == "" {
			respondWithError(c, http.StatusBadRequest, route, "missing "+SessionHeader)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userCart, err := store.Load(ctx, userID.Hex())
		if err != nil {
			log.Printf("[%s] load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		guestCart := guests.Load(sessionID)
		merged := cart.Merge(userCart, guestCart, time.Now())

		if err := store.Save(ctx, merged); err != nil {
			log.Printf("[%s] save failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not save cart")
			return
		}

		guests.Drop(sessionID)

		log.Printf("[%s] merged %d guest items into cart %s", route, guestCart.ItemCount, merged.ID)
		c.JSON(http.StatusOK, merged)
	}
}

// cartItemFromProduct builds a cart line from the product at its current
// effective price. The price is captured here, at add time, and not re-read
// on later cart mutations.
func cartItemFromProduct(p models.Product, quantity int, color, storage string) cart.Item {
	color = strings.TrimSpace(color)
	storage = strings.TrimSpace(storage)

	return cart.Item{
		ID:                cart.VariantKey(p.ID.Hex(), color, storage),
		ProductID:         p.ID.Hex(),
		Name:              p.Name,
		Brand:             p.Brand,
		Thumbnail:         p.Thumbnail,
		UnitPrice:         effectiveProductPrice(p.Price, p.SaleEnabled, p.SalePrice),
		OriginalUnitPrice: p.Price,
		Quantity:          quantity,
		SelectedColor:     color,
		SelectedStorage:   storage,
	}
}
