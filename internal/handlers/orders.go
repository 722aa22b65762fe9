package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonestore/internal/models"
)

/*
GET /orders
- the caller's own orders, newest first
*/
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"ownerId": userID}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d orders", route, len(orders))
		c.JSON(http.StatusOK, orders)
	}
}

/*
GET /orders/:id
- owner-checked order detail
*/
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{
			"_id":     orderID,
			"ownerId": userID,
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
