package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"phonestore/internal/cart"
	"phonestore/internal/models"
)

type checkoutAddressRequest struct {
	Title  string `json:"title" binding:"required"`
	Detail string `json:"detail" binding:"required"`
	Note   string `json:"note"`
}

type checkoutRequest struct {
	Address       checkoutAddressRequest `json:"address" binding:"required"`
	PaymentMethod string                 `json:"paymentMethod" binding:"required"`
}

/*
POST /checkout
- freezes the caller's cart into an order inside a transaction, decrementing
  stock with a guarded update, then clears the cart. Payment is simulated:
  a reference is generated, nothing is charged.
*/
func Checkout(db *mongo.Database, store *cart.Store, guests *cart.GuestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.PaymentMethod != "cod" && req.PaymentMethod != "card" {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		var ownerID *primitive.ObjectID
		if userIDValue, ok := c.Get("userId"); ok {
			userID := userIDValue.(primitive.ObjectID)
			ownerID = &userID
		}

		access, ok := resolveCartAccess(c, store, guests)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		state, err := access.load(ctx)
		if err != nil {
			log.Printf("[%s] cart load failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not load cart")
			return
		}

		if len(state.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}

		now := time.Now()
		order := models.Order{
			OwnerID: ownerID,
			Address: models.OrderAddress{
				Title:  strings.TrimSpace(req.Address.Title),
				Detail: strings.TrimSpace(req.Address.Detail),
				Note:   strings.TrimSpace(req.Address.Note),
			},
			PaymentMethod: req.PaymentMethod,
			PaymentRef:    "PAY-" + uuid.NewString(),
			Status:        models.OrderStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			frozenItems := make([]models.OrderItem, 0, len(state.Items))
			frozenTotal := 0.0
			frozenCount := 0

			for _, line := range state.Items {
				productID, err := primitive.ObjectIDFromHex(line.ProductID)
				if err != nil {
					return nil, productNotFoundError{ProductID: primitive.NilObjectID}
				}

				var product models.Product
				err = db.Collection("products").FindOne(
					sessCtx,
					bson.M{
						"_id":       productID,
						"isDeleted": bson.M{"$ne": true},
					},
				).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: productID}
				}
				if err != nil {
					return nil, err
				}

				if product.Stock < line.Quantity {
					return nil, outOfStockError{
						ProductID: productID,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}

				unitPrice := effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice)
				frozenItems = append(frozenItems, models.OrderItem{
					ItemID:            line.ID,
					ProductID:         productID,
					Name:              product.Name,
					Brand:             product.Brand,
					Thumbnail:         product.Thumbnail,
					UnitPrice:         unitPrice,
					OriginalUnitPrice: product.Price,
					Quantity:          line.Quantity,
					SelectedColor:     line.SelectedColor,
					SelectedStorage:   line.SelectedStorage,
				})
				frozenTotal += unitPrice * float64(line.Quantity)
				frozenCount += line.Quantity

				filter := bson.M{
					"_id":       productID,
					"isDeleted": bson.M{"$ne": true},
					"stock":     bson.M{"$gte": line.Quantity},
				}
				update := bson.M{"$inc": bson.M{"stock": -line.Quantity}}

				res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: productID,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}
			}

			order.Items = frozenItems
			order.Total = frozenTotal
			order.ItemCount = frozenCount

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "insufficient stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !orderID.IsZero() {
			order.ID = orderID
		}

		// Cart is cleared after the order committed; a failure here leaves a
		// stale cart but never a lost order.
		cleared := cart.Clear(state, time.Now())
		if err := access.save(ctx, cleared); err != nil {
			log.Printf("[%s] cart clear failed after order %s: %v", route, order.ID.Hex(), err)
		}

		if ownerID != nil {
			log.Println("[ORDER] [INFO] order created for user:", ownerID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId":    order.ID.Hex(),
			"paymentRef": order.PaymentRef,
			"status":     order.Status,
			"total":      order.Total,
			"message":    "order created",
		})
	}
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}
