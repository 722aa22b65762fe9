package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonestore/internal/assist"
	"phonestore/internal/models"
)

const assistMatchLimit = 5

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// catalogFinder satisfies assist.ProductFinder with a substring match over
// name and brand, newest products first.
type catalogFinder struct {
	db *mongo.Database
}

func (f catalogFinder) FindProducts(ctx context.Context, query string) ([]models.Product, error) {
	filter := bson.M{
		"isActive":  bson.M{"$ne": false},
		"isDeleted": bson.M{"$ne": true},
		"$or": []bson.M{
			{"name": bson.M{"$regex": query, "$options": "i"}},
			{"brand": bson.M{"$regex": query, "$options": "i"}},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(assistMatchLimit)

	cursor, err := f.db.Collection("products").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeProducts(ctx, cursor)
}

/*
POST /assist/chat
- maps one free-text message to exactly one action + reply
*/
func Chat(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /assist/chat"
		defer handlePanic(c, route)

		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := assist.Parse(ctx, catalogFinder{db: db}, req.Message)
		if err != nil {
			log.Printf("[%s] parse failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] action=%s query=%q", route, result.Action, result.Query)
		c.JSON(http.StatusOK, result)
	}
}
